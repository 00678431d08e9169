package models

import "github.com/google/uuid"

// OwnerChange is a scheduled transfer of a resource's owning project from
// one tenant to another over a time window, independent of offers and
// leases. When it becomes active the resource's recorded owner flips to the
// destination project.
type OwnerChange struct {
	UUID          string     `json:"uuid"`
	ResourceType  string     `json:"resource_type"`
	ResourceUUID  string     `json:"resource_uuid"`
	FromProjectID string     `json:"from_project_id"`
	ToProjectID   string     `json:"to_project_id"`
	Status        Status     `json:"status"`
	StartTime     BrokerTime `json:"start_time"`
	EndTime       BrokerTime `json:"end_time"`
	CreatedAt     BrokerTime `json:"created_at"`
	UpdatedAt     BrokerTime `json:"updated_at"`
}

// TimeWindow returns the owner change's window as a Window value.
func (c *OwnerChange) TimeWindow() Window {
	return Window{Start: c.StartTime, End: c.EndTime}
}

// CreateOwnerChangeRequest is the payload for scheduling an ownership
// transfer.
type CreateOwnerChangeRequest struct {
	ResourceType  string     `json:"resource_type"`
	ResourceUUID  string     `json:"resource_uuid"`
	FromProjectID string     `json:"from_project_id"`
	ToProjectID   string     `json:"to_project_id"`
	StartTime     BrokerTime `json:"start_time"`
	EndTime       BrokerTime `json:"end_time"`
}

// Validate checks required fields and the window invariant.
func (r *CreateOwnerChangeRequest) Validate() error {
	if r.ResourceUUID == "" {
		return ErrMissingResource
	}

	if r.ResourceType == "" {
		r.ResourceType = DefaultResourceType
	}

	if r.FromProjectID == "" || r.ToProjectID == "" {
		return ErrMissingProject
	}

	return (Window{Start: r.StartTime, End: r.EndTime}).Validate()
}

// NewOwnerChangeUUID generates an identity for a new owner change.
func NewOwnerChangeUUID() string {
	return uuid.New().String()
}
