package models

// Resource is a catalog record for a leasable physical resource, tracking
// its type tag and the project currently recorded as its owner.
type Resource struct {
	ResourceType string     `json:"resource_type"`
	ResourceUUID string     `json:"resource_uuid"`
	ProjectID    string     `json:"project_id"`
	CreatedAt    BrokerTime `json:"created_at"`
	UpdatedAt    BrokerTime `json:"updated_at"`
}

// ListFilter narrows entity list queries. Zero-valued fields are ignored.
type ListFilter struct {
	Statuses     []Status
	ResourceType string
	ResourceUUID string
	ProjectID    string
	LesseeID     string
	OwnerID      string
}
