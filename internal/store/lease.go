package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/metalbroker/metalbroker/internal/availability"
	"github.com/metalbroker/metalbroker/internal/models"
)

// LeaseStore handles lease persistence outside the claim path.
type LeaseStore struct {
	Base
}

// NewLeaseStore creates a new LeaseStore.
func NewLeaseStore(base Base) *LeaseStore {
	return &LeaseStore{Base: base}
}

// Create inserts a lease directly, without an originating offer. The
// resource catalog row is locked for the duration so the conflict check
// serializes against concurrent claims on the same resource.
func (s *LeaseStore) Create(ctx context.Context, l *models.Lease) (*models.Lease, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating lease: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	_, err = tx.Exec(ctx,
		`INSERT INTO resources (resource_type, resource_uuid, project_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (resource_type, resource_uuid) DO NOTHING`,
		l.ResourceType, l.ResourceUUID, l.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("registering resource: %w", err)
	}

	if err := lockResource(ctx, tx, l.ResourceType, l.ResourceUUID); err != nil {
		return nil, err
	}

	existing, err := leasesForResourceTx(ctx, tx, l.ResourceType, l.ResourceUUID)
	if err != nil {
		return nil, err
	}

	if availability.Conflicts(l.TimeWindow(), existing, "") {
		return nil, models.ErrWindowConflict
	}

	query := `INSERT INTO leases
		(uuid, name, resource_type, resource_uuid, project_id, owner_id,
		 offer_uuid, parent_lease_uuid, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + leaseColumns

	row := tx.QueryRow(ctx, query,
		l.UUID, l.Name, l.ResourceType, l.ResourceUUID,
		l.ProjectID, l.OwnerID, l.OfferUUID, l.ParentLeaseUUID,
		string(models.StatusCreated), l.StartTime, l.EndTime)

	created, err := scanLease(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning created lease: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create lease: %w", err)
	}

	return created, nil
}

// Get returns a single lease by UUID.
func (s *LeaseStore) Get(ctx context.Context, leaseUUID string) (*models.Lease, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+leaseColumns+" FROM leases WHERE uuid = $1", leaseUUID)

	l, err := scanLease(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrLeaseNotFound
		}

		return nil, fmt.Errorf("scanning lease: %w", err)
	}

	return l, nil
}

// List returns leases matching the filter, newest first.
func (s *LeaseStore) List(ctx context.Context, filter models.ListFilter) ([]models.Lease, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args := buildListFilter(filter)

	rows, err := s.Pool.Query(ctx,
		"SELECT "+leaseColumns+" FROM leases"+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("listing leases: %w", err)
	}
	defer rows.Close()

	return collectLeases(rows)
}

// UpdateStatus transitions a lease from expected to next status. Returns
// false when the lease was no longer in the expected status (lost race).
func (s *LeaseStore) UpdateStatus(ctx context.Context, leaseUUID string, expected, next models.Status) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE leases SET status = $1, updated_at = $2
		 WHERE uuid = $3 AND status = $4`,
		string(next), utcNow(), leaseUUID, string(expected))
	if err != nil {
		return false, fmt.Errorf("updating lease status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
