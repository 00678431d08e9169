package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/domain"
	"github.com/metalbroker/metalbroker/internal/models"
)

// Compile-time check: *OwnerChangeService must satisfy
// domain.OwnerChangeService.
var _ domain.OwnerChangeService = (*OwnerChangeService)(nil)

// OwnerChangeStore is the data-access interface OwnerChangeService depends
// on.
type OwnerChangeStore interface {
	Create(ctx context.Context, c *models.OwnerChange) (*models.OwnerChange, error)
	Get(ctx context.Context, changeUUID string) (*models.OwnerChange, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.OwnerChange, error)
	UpdateStatus(ctx context.Context, changeUUID string, expected, next models.Status) (bool, error)
}

// OwnerChangeService wraps OwnerChangeStore with authorization. Scheduling
// and cancelling transfers is admin-only; the projects on either side may
// read them.
type OwnerChangeService struct {
	store    OwnerChangeStore
	enforcer *auth.Enforcer
	log      *logrus.Logger
}

// NewOwnerChangeService creates an OwnerChangeService.
func NewOwnerChangeService(st OwnerChangeStore, enforcer *auth.Enforcer, log *logrus.Logger) *OwnerChangeService {
	return &OwnerChangeService{store: st, enforcer: enforcer, log: log}
}

// CreateOwnerChange schedules an ownership transfer.
func (s *OwnerChangeService) CreateOwnerChange(ctx context.Context, identity auth.Identity, req models.CreateOwnerChangeRequest) (*models.OwnerChange, error) {
	if err := s.enforcer.Authorize(auth.RuleOwnerChangeCreate, identity); err != nil {
		return nil, err
	}

	change := &models.OwnerChange{
		UUID:          models.NewOwnerChangeUUID(),
		ResourceType:  req.ResourceType,
		ResourceUUID:  req.ResourceUUID,
		FromProjectID: req.FromProjectID,
		ToProjectID:   req.ToProjectID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	}

	created, err := s.store.Create(ctx, change)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"action":        "owner_change.create",
		"change_uuid":   created.UUID,
		"resource_uuid": created.ResourceUUID,
		"from_project":  created.FromProjectID,
		"to_project":    created.ToProjectID,
	}).Info("owner change scheduled")

	return created, nil
}

// GetOwnerChange returns a single owner change. Non-admins must be on one
// side of the transfer.
func (s *OwnerChangeService) GetOwnerChange(ctx context.Context, identity auth.Identity, changeUUID string) (*models.OwnerChange, error) {
	if err := s.enforcer.Authorize(auth.RuleOwnerChangeGet, identity); err != nil {
		return nil, err
	}

	change, err := s.store.Get(ctx, changeUUID)
	if err != nil {
		return nil, err
	}

	if !identity.IsAdmin() &&
		identity.ProjectID != change.FromProjectID &&
		identity.ProjectID != change.ToProjectID {
		return nil, auth.ErrForbidden
	}

	return change, nil
}

// ListOwnerChanges returns owner changes visible to the caller. Non-admins
// are scoped to transfers involving their own project.
func (s *OwnerChangeService) ListOwnerChanges(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.OwnerChange, error) {
	if err := s.enforcer.Authorize(auth.RuleOwnerChangeGet, identity); err != nil {
		return nil, err
	}

	if !identity.IsAdmin() {
		filter.ProjectID = identity.ProjectID
	}

	return s.store.List(ctx, filter)
}

// DeleteOwnerChange cancels a scheduled or active transfer.
func (s *OwnerChangeService) DeleteOwnerChange(ctx context.Context, identity auth.Identity, changeUUID string) error {
	if err := s.enforcer.Authorize(auth.RuleOwnerChangeDelete, identity); err != nil {
		return err
	}

	change, err := s.store.Get(ctx, changeUUID)
	if err != nil {
		return err
	}

	if !models.ValidTransition(models.KindOwnerChange, change.Status, models.StatusDeleted) {
		return models.ErrInvalidTransition
	}

	ok, err := s.store.UpdateStatus(ctx, changeUUID, change.Status, models.StatusDeleted)
	if err != nil {
		return err
	}

	if !ok {
		return models.ErrInvalidTransition
	}

	s.log.WithFields(logrus.Fields{
		"action":      "owner_change.delete",
		"change_uuid": changeUUID,
		"project_id":  identity.ProjectID,
	}).Info("owner change cancelled")

	return nil
}
