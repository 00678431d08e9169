package models

import "github.com/google/uuid"

// Lease is an exclusive grant of a resource to a lessee for a time window.
// It results from claiming an offer, or from direct creation by an owner or
// administrator.
type Lease struct {
	UUID         string     `json:"uuid"`
	Name         string     `json:"name"`
	ResourceType string     `json:"resource_type"`
	ResourceUUID string     `json:"resource_uuid"`
	ProjectID    string     `json:"project_id"`
	OwnerID      string     `json:"owner_id"`
	Status       Status     `json:"status"`
	StartTime    BrokerTime `json:"start_time"`
	EndTime      BrokerTime `json:"end_time"`

	// OfferUUID references the originating offer; nil for leases created
	// directly by an administrator or owner.
	OfferUUID *string `json:"offer_uuid,omitempty"`

	// ParentLeaseUUID is carried over from a sub-lease offer for
	// authorization and audit chaining.
	ParentLeaseUUID *string `json:"parent_lease_uuid,omitempty"`

	CreatedAt BrokerTime `json:"created_at"`
	UpdatedAt BrokerTime `json:"updated_at"`
}

// TimeWindow returns the lease's window as a Window value.
func (l *Lease) TimeWindow() Window {
	return Window{Start: l.StartTime, End: l.EndTime}
}

// CreateLeaseRequest is the payload for creating a lease directly, without
// going through an offer.
type CreateLeaseRequest struct {
	ResourceType string     `json:"resource_type"`
	ResourceUUID string     `json:"resource_uuid"`
	Name         string     `json:"name"`
	ProjectID    string     `json:"project_id"`
	StartTime    BrokerTime `json:"start_time"`
	EndTime      BrokerTime `json:"end_time"`
}

// Validate checks required fields and the window invariant, filling in the
// default resource type.
func (r *CreateLeaseRequest) Validate() error {
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

	if r.ProjectID == "" {
		return ErrMissingProject
	}

	if len(r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	return (Window{Start: r.StartTime, End: r.EndTime}).Validate()
}

// NewLeaseUUID generates an identity for a new lease.
func NewLeaseUUID() string {
	return uuid.New().String()
}
