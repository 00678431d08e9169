package models

import (
	"github.com/google/uuid"
)

// DefaultResourceType is assumed when a create request omits resource_type.
const DefaultResourceType = "dummy_node"

// Offer is an owner-published availability of a resource for a time window.
// An offer is not consumed by claiming; any number of non-overlapping leases
// may be carved out of it until its own window elapses.
type Offer struct {
	UUID         string     `json:"uuid"`
	ResourceType string     `json:"resource_type"`
	ResourceUUID string     `json:"resource_uuid"`
	Name         string     `json:"name"`
	ProjectID    string     `json:"project_id"`
	LesseeID     *string    `json:"lessee_id,omitempty"`
	Status       Status     `json:"status"`
	StartTime    BrokerTime `json:"start_time"`
	EndTime      BrokerTime `json:"end_time"`

	// ParentLeaseUUID is set when the offering project holds the resource
	// only through a lease of its own (sub-leasing). Leases claimed from
	// this offer inherit the reference for authorization chaining.
	ParentLeaseUUID *string `json:"parent_lease_uuid"`

	// Availabilities are the free sub-windows remaining in the offer
	// window. Populated on read, never stored.
	Availabilities []Window `json:"availabilities,omitempty"`

	CreatedAt BrokerTime `json:"created_at"`
	UpdatedAt BrokerTime `json:"updated_at"`
}

// TimeWindow returns the offer's window as a Window value.
func (o *Offer) TimeWindow() Window {
	return Window{Start: o.StartTime, End: o.EndTime}
}

// CreateOfferRequest is the payload for publishing a new offer.
type CreateOfferRequest struct {
	ResourceType    string     `json:"resource_type"`
	ResourceUUID    string     `json:"resource_uuid"`
	Name            string     `json:"name"`
	StartTime       BrokerTime `json:"start_time"`
	EndTime         BrokerTime `json:"end_time"`
	LesseeID        *string    `json:"lessee_id,omitempty"`
	ParentLeaseUUID *string    `json:"parent_lease_uuid,omitempty"`
}

// Validate checks required fields and the window invariant, filling in the
// default resource type.
func (r *CreateOfferRequest) Validate() error {
	if r.ResourceUUID == "" {
		return ErrMissingResource
	}

	if len(r.ResourceUUID) > 255 {
		return ErrFieldTooLong("resource_uuid", 255)
	}

	if r.ResourceType == "" {
		r.ResourceType = DefaultResourceType
	}

	if len(r.ResourceType) > 100 {
		return ErrFieldTooLong("resource_type", 100)
	}

	if len(r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	return (Window{Start: r.StartTime, End: r.EndTime}).Validate()
}

// ClaimRequest is the payload for claiming an offer into a new lease.
type ClaimRequest struct {
	Name      string     `json:"name"`
	StartTime BrokerTime `json:"start_time"`
	EndTime   BrokerTime `json:"end_time"`
}

// Validate checks the claim window invariant.
func (r *ClaimRequest) Validate() error {
	if len(r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	return (Window{Start: r.StartTime, End: r.EndTime}).Validate()
}

// Window returns the requested claim window.
func (r *ClaimRequest) Window() Window {
	return Window{Start: r.StartTime, End: r.EndTime}
}

// NewOfferUUID generates an identity for a new offer.
func NewOfferUUID() string {
	return uuid.New().String()
}
