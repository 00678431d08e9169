package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metalbroker/metalbroker/internal/availability"
	"github.com/metalbroker/metalbroker/internal/models"
)

// ClaimSpec carries the lessee's side of a claim into the transaction. The
// service layer has already authorized the caller and decided whether the
// resulting lease chains to a parent lease.
type ClaimSpec struct {
	Name            string
	Window          models.Window
	LesseeProjectID string
}

// Claim atomically converts an available offer into a new lease.
//
// The offer row is taken FOR UPDATE so concurrent claims on the same offer
// serialize, then the resource catalog row is locked so claims and direct
// lease creation on the same resource serialize too. The conflict check
// runs inside that locking scope, which is what makes overlapping leases
// impossible rather than merely unlikely.
//
// The offer itself is never mutated here: only its own time-driven expiry
// retires it, and non-overlapping claims may keep carving leases out of it.
func (s *OfferStore) Claim(ctx context.Context, offerUUID string, spec ClaimSpec) (*models.Lease, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// Read committed is sufficient: correctness comes from the offer and
	// resource row locks, not from snapshot isolation.
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("claiming offer: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	row := tx.QueryRow(ctx,
		"SELECT "+offerColumns+" FROM offers WHERE uuid = $1 FOR UPDATE", offerUUID)

	offer, err := scanOffer(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOfferNotFound
		}

		return nil, fmt.Errorf("scanning offer for claim: %w", err)
	}

	// Re-verify under the lock: a concurrent expiry or cancellation may
	// have retired the offer since the caller last saw it.
	if offer.Status != models.StatusAvailable {
		return nil, models.ErrOfferNotFound
	}

	if !offer.TimeWindow().Contains(spec.Window) {
		return nil, models.ErrWindowOutsideOffer
	}

	if err := lockResource(ctx, tx, offer.ResourceType, offer.ResourceUUID); err != nil {
		return nil, err
	}

	leases, err := leasesForResourceTx(ctx, tx, offer.ResourceType, offer.ResourceUUID)
	if err != nil {
		return nil, err
	}

	var exclude string
	if offer.ParentLeaseUUID != nil {
		exclude = *offer.ParentLeaseUUID
	}

	if availability.Conflicts(spec.Window, leases, exclude) {
		return nil, models.ErrWindowConflict
	}

	query := `INSERT INTO leases
		(uuid, name, resource_type, resource_uuid, project_id, owner_id,
		 offer_uuid, parent_lease_uuid, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + leaseColumns

	leaseRow := tx.QueryRow(ctx, query,
		models.NewLeaseUUID(), spec.Name,
		offer.ResourceType, offer.ResourceUUID,
		spec.LesseeProjectID, offer.ProjectID,
		offer.UUID, offer.ParentLeaseUUID,
		string(models.StatusCreated),
		spec.Window.Start, spec.Window.End)

	lease, err := scanLease(leaseRow.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning claimed lease: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	return lease, nil
}

// leasesForResourceTx fetches created/active leases for a resource within
// the claim transaction, so the availability check sees a locked snapshot.
func leasesForResourceTx(ctx context.Context, tx pgx.Tx, resourceType, resourceUUID string) ([]models.Lease, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+leaseColumns+` FROM leases
		 WHERE resource_type = $1 AND resource_uuid = $2 AND status IN ($3, $4)`,
		resourceType, resourceUUID,
		string(models.StatusCreated), string(models.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("listing leases in claim transaction: %w", err)
	}
	defer rows.Close()

	return collectLeases(rows)
}
