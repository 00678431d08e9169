package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/domain"
	"github.com/metalbroker/metalbroker/internal/models"
)

// Compile-time check: *LeaseService must satisfy domain.LeaseService.
var _ domain.LeaseService = (*LeaseService)(nil)

// LeaseStore is the data-access interface LeaseService depends on.
type LeaseStore interface {
	Create(ctx context.Context, l *models.Lease) (*models.Lease, error)
	Get(ctx context.Context, leaseUUID string) (*models.Lease, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.Lease, error)
	UpdateStatus(ctx context.Context, leaseUUID string, expected, next models.Status) (bool, error)
}

// LeaseService wraps LeaseStore with authorization and ownership checks.
type LeaseService struct {
	store     LeaseStore
	resources ResourceOwnerReader
	enforcer  *auth.Enforcer
	log       *logrus.Logger
}

// NewLeaseService creates a LeaseService.
func NewLeaseService(st LeaseStore, resources ResourceOwnerReader, enforcer *auth.Enforcer, log *logrus.Logger) *LeaseService {
	return &LeaseService{store: st, resources: resources, enforcer: enforcer, log: log}
}

// CreateLease creates a lease directly, bypassing the offer marketplace.
// Only admins and resource owners may do this; the store rejects windows
// conflicting with existing leases.
func (s *LeaseService) CreateLease(ctx context.Context, identity auth.Identity, req models.CreateLeaseRequest) (*models.Lease, error) {
	if err := s.enforcer.Authorize(auth.RuleLeaseCreate, identity); err != nil {
		return nil, err
	}

	ownerID := identity.ProjectID

	owner, err := s.resources.Owner(ctx, req.ResourceType, req.ResourceUUID)

	switch {
	case errors.Is(err, models.ErrResourceNotFound):
		// Unknown resource: the creating project becomes its owner.
	case err != nil:
		return nil, err
	default:
		if !identity.IsAdmin() && owner != identity.ProjectID {
			return nil, auth.ErrForbidden
		}

		ownerID = owner
	}

	lease := &models.Lease{
		UUID:         models.NewLeaseUUID(),
		Name:         req.Name,
		ResourceType: req.ResourceType,
		ResourceUUID: req.ResourceUUID,
		ProjectID:    req.ProjectID,
		OwnerID:      ownerID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}

	created, err := s.store.Create(ctx, lease)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"action":        "lease.create",
		"lease_uuid":    created.UUID,
		"resource_uuid": created.ResourceUUID,
		"project_id":    created.ProjectID,
		"owner_id":      created.OwnerID,
	}).Info("lease created")

	return created, nil
}

// GetLease returns a single lease. Non-admins must be a party to it.
func (s *LeaseService) GetLease(ctx context.Context, identity auth.Identity, leaseUUID string) (*models.Lease, error) {
	if err := s.enforcer.Authorize(auth.RuleLeaseGet, identity); err != nil {
		return nil, err
	}

	lease, err := s.store.Get(ctx, leaseUUID)
	if err != nil {
		return nil, err
	}

	if !s.party(identity, lease) {
		return nil, auth.ErrForbidden
	}

	return lease, nil
}

// ListLeases returns leases visible to the caller. Non-admins without an
// explicit view are scoped to leases they hold as lessee.
func (s *LeaseService) ListLeases(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Lease, error) {
	if err := s.enforcer.Authorize(auth.RuleLeaseGet, identity); err != nil {
		return nil, err
	}

	if !identity.IsAdmin() {
		if filter.OwnerID != "" {
			filter.OwnerID = identity.ProjectID
		} else {
			filter.ProjectID = identity.ProjectID
		}
	}

	return s.store.List(ctx, filter)
}

// DeleteLease cancels a lease before or during its window. Admins, the
// lessee, and the resource owner may cancel.
func (s *LeaseService) DeleteLease(ctx context.Context, identity auth.Identity, leaseUUID string) error {
	if err := s.enforcer.Authorize(auth.RuleLeaseDelete, identity); err != nil {
		return err
	}

	lease, err := s.store.Get(ctx, leaseUUID)
	if err != nil {
		return err
	}

	if !s.party(identity, lease) {
		return auth.ErrForbidden
	}

	if !models.ValidTransition(models.KindLease, lease.Status, models.StatusDeleted) {
		return models.ErrInvalidTransition
	}

	ok, err := s.store.UpdateStatus(ctx, leaseUUID, lease.Status, models.StatusDeleted)
	if err != nil {
		return err
	}

	if !ok {
		return models.ErrInvalidTransition
	}

	s.log.WithFields(logrus.Fields{
		"action":     "lease.delete",
		"lease_uuid": leaseUUID,
		"project_id": identity.ProjectID,
	}).Info("lease cancelled")

	return nil
}

// party reports whether the identity is an admin, the lessee, or the
// resource owner of the lease.
func (s *LeaseService) party(identity auth.Identity, lease *models.Lease) bool {
	return identity.IsAdmin() ||
		identity.ProjectID == lease.ProjectID ||
		identity.ProjectID == lease.OwnerID
}
