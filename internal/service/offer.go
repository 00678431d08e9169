// Package service provides business logic between API handlers and data
// stores: policy checks, ownership checks, and the orchestration of the
// claim transaction.
package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/availability"
	"github.com/metalbroker/metalbroker/internal/domain"
	"github.com/metalbroker/metalbroker/internal/metrics"
	"github.com/metalbroker/metalbroker/internal/models"
	"github.com/metalbroker/metalbroker/internal/store"
)

// Compile-time check: *OfferService must satisfy domain.OfferService.
var _ domain.OfferService = (*OfferService)(nil)

// OfferStore is the data-access interface OfferService depends on.
type OfferStore interface {
	Create(ctx context.Context, o *models.Offer) (*models.Offer, error)
	Get(ctx context.Context, offerUUID string) (*models.Offer, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, offerUUID string, expected, next models.Status) (bool, error)
	LeasesForResource(ctx context.Context, resourceType, resourceUUID string) ([]models.Lease, error)
	Claim(ctx context.Context, offerUUID string, spec store.ClaimSpec) (*models.Lease, error)
}

// LeaseReader resolves leases referenced by offers (parent lease chaining).
type LeaseReader interface {
	Get(ctx context.Context, leaseUUID string) (*models.Lease, error)
}

// ResourceOwnerReader resolves the recorded owner of a catalog resource.
type ResourceOwnerReader interface {
	Owner(ctx context.Context, resourceType, resourceUUID string) (string, error)
}

// OfferService wraps OfferStore with authorization and the claim
// orchestration.
type OfferService struct {
	store     OfferStore
	leases    LeaseReader
	resources ResourceOwnerReader
	enforcer  *auth.Enforcer
	log       *logrus.Logger
}

// NewOfferService creates an OfferService.
func NewOfferService(st OfferStore, leases LeaseReader, resources ResourceOwnerReader, enforcer *auth.Enforcer, log *logrus.Logger) *OfferService {
	return &OfferService{store: st, leases: leases, resources: resources, enforcer: enforcer, log: log}
}

// CreateOffer publishes a new offer. Non-admin callers must own the
// resource, or hold it through a lease and reference that lease as the
// offer's parent; sub-lease offers must fit inside the parent window.
func (s *OfferService) CreateOffer(ctx context.Context, identity auth.Identity, req models.CreateOfferRequest) (*models.Offer, error) {
	if err := s.enforcer.Authorize(auth.RuleOfferCreate, identity); err != nil {
		return nil, err
	}

	if req.ParentLeaseUUID != nil {
		if err := s.checkParentLease(ctx, identity, &req); err != nil {
			return nil, err
		}
	} else if err := s.checkResourceOwner(ctx, identity, req.ResourceType, req.ResourceUUID); err != nil {
		return nil, err
	}

	offer := &models.Offer{
		UUID:            models.NewOfferUUID(),
		ResourceType:    req.ResourceType,
		ResourceUUID:    req.ResourceUUID,
		Name:            req.Name,
		ProjectID:       identity.ProjectID,
		LesseeID:        req.LesseeID,
		ParentLeaseUUID: req.ParentLeaseUUID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
	}

	created, err := s.store.Create(ctx, offer)
	if err != nil {
		return nil, err
	}

	created.Availabilities = []models.Window{created.TimeWindow()}

	s.log.WithFields(logrus.Fields{
		"action":        "offer.create",
		"offer_uuid":    created.UUID,
		"resource_uuid": created.ResourceUUID,
		"project_id":    created.ProjectID,
	}).Info("offer published")

	return created, nil
}

// checkParentLease validates a sub-lease offer: the parent lease must be
// live, held by the caller, on the same resource, and enclose the offer
// window.
func (s *OfferService) checkParentLease(ctx context.Context, identity auth.Identity, req *models.CreateOfferRequest) error {
	parent, err := s.leases.Get(ctx, *req.ParentLeaseUUID)
	if err != nil {
		return err
	}

	if parent.Status.Terminal() {
		return models.ErrInvalidTransition
	}

	if !identity.IsAdmin() && identity.ProjectID != parent.ProjectID {
		return auth.ErrForbidden
	}

	if parent.ResourceType != req.ResourceType || parent.ResourceUUID != req.ResourceUUID {
		return models.ErrWindowOutsideOffer
	}

	if !parent.TimeWindow().Contains(models.Window{Start: req.StartTime, End: req.EndTime}) {
		return models.ErrWindowOutsideOffer
	}

	return nil
}

// checkResourceOwner requires the caller to be the recorded owner of the
// resource. Unknown resources are allowed through: the offer registers them
// under the offering project.
func (s *OfferService) checkResourceOwner(ctx context.Context, identity auth.Identity, resourceType, resourceUUID string) error {
	if identity.IsAdmin() {
		return nil
	}

	owner, err := s.resources.Owner(ctx, resourceType, resourceUUID)
	if errors.Is(err, models.ErrResourceNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if owner != identity.ProjectID {
		return auth.ErrForbidden
	}

	return nil
}

// GetOffer returns a single offer with its remaining availabilities.
func (s *OfferService) GetOffer(ctx context.Context, identity auth.Identity, offerUUID string) (*models.Offer, error) {
	if err := s.enforcer.Authorize(auth.RuleOfferGet, identity); err != nil {
		return nil, err
	}

	offer, err := s.store.Get(ctx, offerUUID)
	if err != nil {
		return nil, err
	}

	if err := s.attachAvailabilities(ctx, offer); err != nil {
		return nil, err
	}

	return offer, nil
}

// ListOffers returns offers matching the caller's filter.
func (s *OfferService) ListOffers(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Offer, error) {
	if err := s.enforcer.Authorize(auth.RuleOfferGet, identity); err != nil {
		return nil, err
	}

	return s.store.List(ctx, filter)
}

// DeleteOffer cancels an available offer. Only the offering project or an
// admin may cancel; the offer moves to deleted, never out of the store.
func (s *OfferService) DeleteOffer(ctx context.Context, identity auth.Identity, offerUUID string) error {
	if err := s.enforcer.Authorize(auth.RuleOfferDelete, identity); err != nil {
		return err
	}

	offer, err := s.store.Get(ctx, offerUUID)
	if err != nil {
		return err
	}

	if !identity.IsAdmin() && identity.ProjectID != offer.ProjectID {
		return auth.ErrForbidden
	}

	if !models.ValidTransition(models.KindOffer, offer.Status, models.StatusDeleted) {
		return models.ErrInvalidTransition
	}

	ok, err := s.store.UpdateStatus(ctx, offerUUID, offer.Status, models.StatusDeleted)
	if err != nil {
		return err
	}

	if !ok {
		return models.ErrInvalidTransition
	}

	s.log.WithFields(logrus.Fields{
		"action":     "offer.delete",
		"offer_uuid": offerUUID,
		"project_id": identity.ProjectID,
	}).Info("offer cancelled")

	return nil
}

// Claim converts an available offer into a new lease for the caller.
//
// Authorization passes either directly (claim role plus any lessee
// restriction on the offer) or, failing that, through lease-admin rights on
// the offer's parent lease. The heavy lifting — the row lock, the
// availability check, and the lease insert — happens atomically in the
// store's claim transaction.
func (s *OfferService) Claim(ctx context.Context, identity auth.Identity, offerUUID string, req models.ClaimRequest) (*models.Lease, error) {
	offer, err := s.store.Get(ctx, offerUUID)
	if err != nil {
		return nil, err
	}

	if offer.Status != models.StatusAvailable {
		return nil, models.ErrOfferNotFound
	}

	viaParent, err := s.authorizeClaim(ctx, identity, offer)
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("forbidden").Inc()

		return nil, err
	}

	window := req.Window()
	if !offer.TimeWindow().Contains(window) {
		metrics.ClaimsTotal.WithLabelValues("rejected").Inc()

		return nil, models.ErrWindowOutsideOffer
	}

	lease, err := s.store.Claim(ctx, offerUUID, store.ClaimSpec{
		Name:            req.Name,
		Window:          window,
		LesseeProjectID: identity.ProjectID,
	})
	if err != nil {
		if errors.Is(err, models.ErrWindowConflict) || errors.Is(err, models.ErrWindowOutsideOffer) {
			metrics.ClaimsTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.ClaimsTotal.WithLabelValues("error").Inc()
		}

		return nil, err
	}

	metrics.ClaimsTotal.WithLabelValues("ok").Inc()

	s.log.WithFields(logrus.Fields{
		"action":           "offer.claim",
		"offer_uuid":       offerUUID,
		"lease_uuid":       lease.UUID,
		"project_id":       identity.ProjectID,
		"via_parent_lease": viaParent,
	}).Info("offer claimed")

	return lease, nil
}

// authorizeClaim decides whether the caller may claim the offer, returning
// whether authorization succeeded via the parent lease rather than
// directly.
func (s *OfferService) authorizeClaim(ctx context.Context, identity auth.Identity, offer *models.Offer) (bool, error) {
	direct := s.enforcer.Authorize(auth.RuleOfferClaim, identity) == nil

	if direct && offer.LesseeID != nil && !identity.IsAdmin() && identity.ProjectID != *offer.LesseeID {
		direct = false
	}

	if direct {
		return false, nil
	}

	if offer.ParentLeaseUUID == nil {
		return false, auth.ErrForbidden
	}

	parent, err := s.leases.Get(ctx, *offer.ParentLeaseUUID)
	if err != nil {
		return false, auth.ErrForbidden
	}

	if !identity.IsAdmin() && identity.ProjectID != parent.ProjectID {
		return false, auth.ErrForbidden
	}

	return true, nil
}

// attachAvailabilities computes the free sub-windows of the offer window
// from its resource's live leases. The lease descended from a sub-lease
// offer's parent covers the whole window and is not a consumer of it.
func (s *OfferService) attachAvailabilities(ctx context.Context, offer *models.Offer) error {
	leases, err := s.store.LeasesForResource(ctx, offer.ResourceType, offer.ResourceUUID)
	if err != nil {
		return err
	}

	if offer.ParentLeaseUUID != nil {
		filtered := leases[:0]

		for _, l := range leases {
			if l.UUID != *offer.ParentLeaseUUID {
				filtered = append(filtered, l)
			}
		}

		leases = filtered
	}

	offer.Availabilities = availability.FreeWindows(offer.TimeWindow(), leases)

	return nil
}
