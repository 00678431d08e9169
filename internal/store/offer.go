package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/metalbroker/metalbroker/internal/models"
)

// OfferStore handles offer persistence and the claim transaction.
type OfferStore struct {
	Base
}

// NewOfferStore creates a new OfferStore.
func NewOfferStore(base Base) *OfferStore {
	return &OfferStore{Base: base}
}

// Create inserts a new offer in available status and registers the resource
// in the catalog if it is not yet known, crediting the offering project as
// its owner.
func (s *OfferStore) Create(ctx context.Context, o *models.Offer) (*models.Offer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating offer: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	_, err = tx.Exec(ctx,
		`INSERT INTO resources (resource_type, resource_uuid, project_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (resource_type, resource_uuid) DO NOTHING`,
		o.ResourceType, o.ResourceUUID, o.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("registering resource: %w", err)
	}

	query := `INSERT INTO offers
		(uuid, resource_type, resource_uuid, name, project_id, lessee_id,
		 parent_lease_uuid, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + offerColumns

	row := tx.QueryRow(ctx, query,
		o.UUID, o.ResourceType, o.ResourceUUID, o.Name, o.ProjectID,
		o.LesseeID, o.ParentLeaseUUID, string(models.StatusAvailable),
		o.StartTime, o.EndTime)

	created, err := scanOffer(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning created offer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create offer: %w", err)
	}

	return created, nil
}

// Get returns a single offer by UUID.
func (s *OfferStore) Get(ctx context.Context, offerUUID string) (*models.Offer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+offerColumns+" FROM offers WHERE uuid = $1", offerUUID)

	o, err := scanOffer(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOfferNotFound
		}

		return nil, fmt.Errorf("scanning offer: %w", err)
	}

	return o, nil
}

// List returns offers matching the filter, newest first.
func (s *OfferStore) List(ctx context.Context, filter models.ListFilter) ([]models.Offer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args := buildListFilter(filter)

	rows, err := s.Pool.Query(ctx,
		"SELECT "+offerColumns+" FROM offers"+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	defer rows.Close()

	offers := make([]models.Offer, 0)

	for rows.Next() {
		o, err := scanOffer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning offer row: %w", err)
		}

		offers = append(offers, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating offers: %w", err)
	}

	return offers, nil
}

// UpdateStatus transitions an offer from expected to next status. Returns
// false when the offer was no longer in the expected status (lost race).
func (s *OfferStore) UpdateStatus(ctx context.Context, offerUUID string, expected, next models.Status) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE offers SET status = $1, updated_at = $2
		 WHERE uuid = $3 AND status = $4`,
		string(next), utcNow(), offerUUID, string(expected))
	if err != nil {
		return false, fmt.Errorf("updating offer status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// LeasesForResource returns all leases in the given statuses for the
// offer's resource, for availability computation on reads. Claim-path
// conflict checks use the transactional variant in claim.go instead.
func (s *OfferStore) LeasesForResource(ctx context.Context, resourceType, resourceUUID string) ([]models.Lease, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+leaseColumns+` FROM leases
		 WHERE resource_type = $1 AND resource_uuid = $2 AND status IN ($3, $4)`,
		resourceType, resourceUUID,
		string(models.StatusCreated), string(models.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("listing leases for resource: %w", err)
	}
	defer rows.Close()

	return collectLeases(rows)
}

// collectLeases drains a lease result set.
func collectLeases(rows pgx.Rows) ([]models.Lease, error) {
	leases := make([]models.Lease, 0)

	for rows.Next() {
		l, err := scanLease(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning lease row: %w", err)
		}

		leases = append(leases, *l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leases: %w", err)
	}

	return leases, nil
}
