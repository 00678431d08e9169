package store

import (
	"github.com/metalbroker/metalbroker/internal/models"
)

// offerColumns lists the columns selected for offer queries.
const offerColumns = `uuid, resource_type, resource_uuid, name, project_id,
	lessee_id, parent_lease_uuid, status, start_time, end_time,
	created_at, updated_at`

// leaseColumns lists the columns selected for lease queries.
const leaseColumns = `uuid, name, resource_type, resource_uuid, project_id,
	owner_id, offer_uuid, parent_lease_uuid, status, start_time, end_time,
	created_at, updated_at`

// ownerChangeColumns lists the columns selected for owner change queries.
const ownerChangeColumns = `uuid, resource_type, resource_uuid,
	from_project_id, to_project_id, status, start_time, end_time,
	created_at, updated_at`

// scanOffer scans a single row into a models.Offer.
func scanOffer(scan func(dest ...any) error) (*models.Offer, error) {
	var o models.Offer
	var status string

	err := scan(
		&o.UUID,
		&o.ResourceType,
		&o.ResourceUUID,
		&o.Name,
		&o.ProjectID,
		&o.LesseeID,
		&o.ParentLeaseUUID,
		&status,
		&o.StartTime,
		&o.EndTime,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = models.Status(status)

	return &o, nil
}

// scanLease scans a single row into a models.Lease.
func scanLease(scan func(dest ...any) error) (*models.Lease, error) {
	var l models.Lease
	var status string

	err := scan(
		&l.UUID,
		&l.Name,
		&l.ResourceType,
		&l.ResourceUUID,
		&l.ProjectID,
		&l.OwnerID,
		&l.OfferUUID,
		&l.ParentLeaseUUID,
		&status,
		&l.StartTime,
		&l.EndTime,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = models.Status(status)

	return &l, nil
}

// scanOwnerChange scans a single row into a models.OwnerChange.
func scanOwnerChange(scan func(dest ...any) error) (*models.OwnerChange, error) {
	var c models.OwnerChange
	var status string

	err := scan(
		&c.UUID,
		&c.ResourceType,
		&c.ResourceUUID,
		&c.FromProjectID,
		&c.ToProjectID,
		&status,
		&c.StartTime,
		&c.EndTime,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = models.Status(status)

	return &c, nil
}
