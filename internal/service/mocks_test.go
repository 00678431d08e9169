package service

import (
	"context"
	"sync"

	"github.com/metalbroker/metalbroker/internal/models"
	"github.com/metalbroker/metalbroker/internal/store"
)

// mockOfferStore records calls and returns configured responses.
type mockOfferStore struct {
	mu    sync.Mutex
	calls []string

	create            func(ctx context.Context, o *models.Offer) (*models.Offer, error)
	get               func(ctx context.Context, offerUUID string) (*models.Offer, error)
	list              func(ctx context.Context, filter models.ListFilter) ([]models.Offer, error)
	updateStatus      func(ctx context.Context, offerUUID string, expected, next models.Status) (bool, error)
	leasesForResource func(ctx context.Context, resourceType, resourceUUID string) ([]models.Lease, error)
	claim             func(ctx context.Context, offerUUID string, spec store.ClaimSpec) (*models.Lease, error)
}

func (m *mockOfferStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockOfferStore) Create(ctx context.Context, o *models.Offer) (*models.Offer, error) {
	m.record("Create")
	return m.create(ctx, o)
}

func (m *mockOfferStore) Get(ctx context.Context, offerUUID string) (*models.Offer, error) {
	m.record("Get")
	return m.get(ctx, offerUUID)
}

func (m *mockOfferStore) List(ctx context.Context, filter models.ListFilter) ([]models.Offer, error) {
	m.record("List")
	return m.list(ctx, filter)
}

func (m *mockOfferStore) UpdateStatus(ctx context.Context, offerUUID string, expected, next models.Status) (bool, error) {
	m.record("UpdateStatus")
	return m.updateStatus(ctx, offerUUID, expected, next)
}

func (m *mockOfferStore) LeasesForResource(ctx context.Context, resourceType, resourceUUID string) ([]models.Lease, error) {
	m.record("LeasesForResource")
	return m.leasesForResource(ctx, resourceType, resourceUUID)
}

func (m *mockOfferStore) Claim(ctx context.Context, offerUUID string, spec store.ClaimSpec) (*models.Lease, error) {
	m.record("Claim")
	return m.claim(ctx, offerUUID, spec)
}

// mockLeaseStore records calls and returns configured responses.
type mockLeaseStore struct {
	mu    sync.Mutex
	calls []string

	create       func(ctx context.Context, l *models.Lease) (*models.Lease, error)
	get          func(ctx context.Context, leaseUUID string) (*models.Lease, error)
	list         func(ctx context.Context, filter models.ListFilter) ([]models.Lease, error)
	updateStatus func(ctx context.Context, leaseUUID string, expected, next models.Status) (bool, error)
}

func (m *mockLeaseStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockLeaseStore) Create(ctx context.Context, l *models.Lease) (*models.Lease, error) {
	m.record("Create")
	return m.create(ctx, l)
}

func (m *mockLeaseStore) Get(ctx context.Context, leaseUUID string) (*models.Lease, error) {
	m.record("Get")
	return m.get(ctx, leaseUUID)
}

func (m *mockLeaseStore) List(ctx context.Context, filter models.ListFilter) ([]models.Lease, error) {
	m.record("List")
	return m.list(ctx, filter)
}

func (m *mockLeaseStore) UpdateStatus(ctx context.Context, leaseUUID string, expected, next models.Status) (bool, error) {
	m.record("UpdateStatus")
	return m.updateStatus(ctx, leaseUUID, expected, next)
}

// mockOwnerChangeStore records calls and returns configured responses.
type mockOwnerChangeStore struct {
	mu    sync.Mutex
	calls []string

	create       func(ctx context.Context, c *models.OwnerChange) (*models.OwnerChange, error)
	get          func(ctx context.Context, changeUUID string) (*models.OwnerChange, error)
	list         func(ctx context.Context, filter models.ListFilter) ([]models.OwnerChange, error)
	updateStatus func(ctx context.Context, changeUUID string, expected, next models.Status) (bool, error)
	fulfill      func(ctx context.Context, changeUUID string) (bool, error)
}

func (m *mockOwnerChangeStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockOwnerChangeStore) Create(ctx context.Context, c *models.OwnerChange) (*models.OwnerChange, error) {
	m.record("Create")
	return m.create(ctx, c)
}

func (m *mockOwnerChangeStore) Get(ctx context.Context, changeUUID string) (*models.OwnerChange, error) {
	m.record("Get")
	return m.get(ctx, changeUUID)
}

func (m *mockOwnerChangeStore) List(ctx context.Context, filter models.ListFilter) ([]models.OwnerChange, error) {
	m.record("List")
	return m.list(ctx, filter)
}

func (m *mockOwnerChangeStore) UpdateStatus(ctx context.Context, changeUUID string, expected, next models.Status) (bool, error) {
	m.record("UpdateStatus")
	return m.updateStatus(ctx, changeUUID, expected, next)
}

func (m *mockOwnerChangeStore) Fulfill(ctx context.Context, changeUUID string) (bool, error) {
	m.record("Fulfill")
	return m.fulfill(ctx, changeUUID)
}

// mockResources resolves catalog owners from a fixed map.
type mockResources struct {
	owners map[string]string
}

func (m *mockResources) Owner(_ context.Context, _, resourceUUID string) (string, error) {
	owner, ok := m.owners[resourceUUID]
	if !ok {
		return "", models.ErrResourceNotFound
	}

	return owner, nil
}
