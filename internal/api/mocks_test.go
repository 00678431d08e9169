package api_test

import (
	"context"

	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/models"
)

// mockOfferRepo implements api.OfferRepository with overridable functions.
type mockOfferRepo struct {
	listFn   func(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Offer, error)
	getFn    func(ctx context.Context, identity auth.Identity, offerUUID string) (*models.Offer, error)
	createFn func(ctx context.Context, identity auth.Identity, req models.CreateOfferRequest) (*models.Offer, error)
	deleteFn func(ctx context.Context, identity auth.Identity, offerUUID string) error
	claimFn  func(ctx context.Context, identity auth.Identity, offerUUID string, req models.ClaimRequest) (*models.Lease, error)
}

func (m *mockOfferRepo) ListOffers(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Offer, error) {
	return m.listFn(ctx, identity, filter)
}

func (m *mockOfferRepo) GetOffer(ctx context.Context, identity auth.Identity, offerUUID string) (*models.Offer, error) {
	return m.getFn(ctx, identity, offerUUID)
}

func (m *mockOfferRepo) CreateOffer(ctx context.Context, identity auth.Identity, req models.CreateOfferRequest) (*models.Offer, error) {
	return m.createFn(ctx, identity, req)
}

func (m *mockOfferRepo) DeleteOffer(ctx context.Context, identity auth.Identity, offerUUID string) error {
	return m.deleteFn(ctx, identity, offerUUID)
}

func (m *mockOfferRepo) Claim(ctx context.Context, identity auth.Identity, offerUUID string, req models.ClaimRequest) (*models.Lease, error) {
	return m.claimFn(ctx, identity, offerUUID, req)
}

// mockLeaseRepo implements api.LeaseRepository with overridable functions.
type mockLeaseRepo struct {
	listFn   func(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Lease, error)
	getFn    func(ctx context.Context, identity auth.Identity, leaseUUID string) (*models.Lease, error)
	createFn func(ctx context.Context, identity auth.Identity, req models.CreateLeaseRequest) (*models.Lease, error)
	deleteFn func(ctx context.Context, identity auth.Identity, leaseUUID string) error
}

func (m *mockLeaseRepo) ListLeases(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Lease, error) {
	return m.listFn(ctx, identity, filter)
}

func (m *mockLeaseRepo) GetLease(ctx context.Context, identity auth.Identity, leaseUUID string) (*models.Lease, error) {
	return m.getFn(ctx, identity, leaseUUID)
}

func (m *mockLeaseRepo) CreateLease(ctx context.Context, identity auth.Identity, req models.CreateLeaseRequest) (*models.Lease, error) {
	return m.createFn(ctx, identity, req)
}

func (m *mockLeaseRepo) DeleteLease(ctx context.Context, identity auth.Identity, leaseUUID string) error {
	return m.deleteFn(ctx, identity, leaseUUID)
}

// mockOwnerChangeRepo implements api.OwnerChangeRepository with overridable functions.
type mockOwnerChangeRepo struct {
	listFn   func(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.OwnerChange, error)
	getFn    func(ctx context.Context, identity auth.Identity, changeUUID string) (*models.OwnerChange, error)
	createFn func(ctx context.Context, identity auth.Identity, req models.CreateOwnerChangeRequest) (*models.OwnerChange, error)
	deleteFn func(ctx context.Context, identity auth.Identity, changeUUID string) error
}

func (m *mockOwnerChangeRepo) ListOwnerChanges(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.OwnerChange, error) {
	return m.listFn(ctx, identity, filter)
}

func (m *mockOwnerChangeRepo) GetOwnerChange(ctx context.Context, identity auth.Identity, changeUUID string) (*models.OwnerChange, error) {
	return m.getFn(ctx, identity, changeUUID)
}

func (m *mockOwnerChangeRepo) CreateOwnerChange(ctx context.Context, identity auth.Identity, req models.CreateOwnerChangeRequest) (*models.OwnerChange, error) {
	return m.createFn(ctx, identity, req)
}

func (m *mockOwnerChangeRepo) DeleteOwnerChange(ctx context.Context, identity auth.Identity, changeUUID string) error {
	return m.deleteFn(ctx, identity, changeUUID)
}
