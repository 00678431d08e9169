package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metalbroker/metalbroker/internal/models"
)

// ResourceStore is the resource catalog: which project currently owns each
// leasable resource. Offers, leases, and owner changes register resources
// here on creation, and owner-change fulfillment rewrites the owner.
type ResourceStore struct {
	Base
}

// NewResourceStore creates a new ResourceStore.
func NewResourceStore(base Base) *ResourceStore {
	return &ResourceStore{Base: base}
}

// Get returns the catalog record for a resource.
func (s *ResourceStore) Get(ctx context.Context, resourceType, resourceUUID string) (*models.Resource, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT resource_type, resource_uuid, project_id, created_at, updated_at
		 FROM resources WHERE resource_type = $1 AND resource_uuid = $2`,
		resourceType, resourceUUID)

	var r models.Resource

	err := row.Scan(&r.ResourceType, &r.ResourceUUID, &r.ProjectID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrResourceNotFound
		}

		return nil, fmt.Errorf("scanning resource: %w", err)
	}

	return &r, nil
}

// Owner returns the project currently recorded as the resource's owner.
func (s *ResourceStore) Owner(ctx context.Context, resourceType, resourceUUID string) (string, error) {
	r, err := s.Get(ctx, resourceType, resourceUUID)
	if err != nil {
		return "", err
	}

	return r.ProjectID, nil
}
