package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/metalbroker/metalbroker/internal/models"
)

// OwnerChangeStore handles owner change persistence, including the coupled
// status-plus-catalog update when a transfer becomes active.
type OwnerChangeStore struct {
	Base
}

// NewOwnerChangeStore creates a new OwnerChangeStore.
func NewOwnerChangeStore(base Base) *OwnerChangeStore {
	return &OwnerChangeStore{Base: base}
}

// Create inserts a new owner change in created status, registering the
// resource under the source project if the catalog does not know it yet.
func (s *OwnerChangeStore) Create(ctx context.Context, c *models.OwnerChange) (*models.OwnerChange, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating owner change: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	_, err = tx.Exec(ctx,
		`INSERT INTO resources (resource_type, resource_uuid, project_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (resource_type, resource_uuid) DO NOTHING`,
		c.ResourceType, c.ResourceUUID, c.FromProjectID)
	if err != nil {
		return nil, fmt.Errorf("registering resource: %w", err)
	}

	query := `INSERT INTO owner_changes
		(uuid, resource_type, resource_uuid, from_project_id, to_project_id,
		 status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + ownerChangeColumns

	row := tx.QueryRow(ctx, query,
		c.UUID, c.ResourceType, c.ResourceUUID,
		c.FromProjectID, c.ToProjectID,
		string(models.StatusCreated), c.StartTime, c.EndTime)

	created, err := scanOwnerChange(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning created owner change: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create owner change: %w", err)
	}

	return created, nil
}

// Get returns a single owner change by UUID.
func (s *OwnerChangeStore) Get(ctx context.Context, changeUUID string) (*models.OwnerChange, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+ownerChangeColumns+" FROM owner_changes WHERE uuid = $1", changeUUID)

	c, err := scanOwnerChange(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOwnerChangeNotFound
		}

		return nil, fmt.Errorf("scanning owner change: %w", err)
	}

	return c, nil
}

// List returns owner changes matching the filter, newest first. ProjectID
// matches either side of the transfer.
func (s *OwnerChangeStore) List(ctx context.Context, filter models.ListFilter) ([]models.OwnerChange, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	project := filter.ProjectID
	filter.ProjectID = ""

	where, args := buildListFilter(filter)

	if project != "" {
		clause := fmt.Sprintf("(from_project_id = $%d OR to_project_id = $%d)", len(args)+1, len(args)+2)
		args = append(args, project, project)

		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	rows, err := s.Pool.Query(ctx,
		"SELECT "+ownerChangeColumns+" FROM owner_changes"+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("listing owner changes: %w", err)
	}
	defer rows.Close()

	changes := make([]models.OwnerChange, 0)

	for rows.Next() {
		c, err := scanOwnerChange(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning owner change row: %w", err)
		}

		changes = append(changes, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating owner changes: %w", err)
	}

	return changes, nil
}

// UpdateStatus transitions an owner change from expected to next status.
// Returns false when the row was no longer in the expected status.
func (s *OwnerChangeStore) UpdateStatus(ctx context.Context, changeUUID string, expected, next models.Status) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE owner_changes SET status = $1, updated_at = $2
		 WHERE uuid = $3 AND status = $4`,
		string(next), utcNow(), changeUUID, string(expected))
	if err != nil {
		return false, fmt.Errorf("updating owner change status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Fulfill activates a created owner change and flips the resource's
// recorded owner to the destination project, atomically. Returns false
// when the change was no longer in created status.
func (s *OwnerChangeStore) Fulfill(ctx context.Context, changeUUID string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("fulfilling owner change: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	row := tx.QueryRow(ctx,
		`UPDATE owner_changes SET status = $1, updated_at = $2
		 WHERE uuid = $3 AND status = $4
		 RETURNING resource_type, resource_uuid, to_project_id`,
		string(models.StatusActive), utcNow(), changeUUID, string(models.StatusCreated))

	var resourceType, resourceUUID, toProject string
	if err := row.Scan(&resourceType, &resourceUUID, &toProject); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("activating owner change: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE resources SET project_id = $1, updated_at = $2
		 WHERE resource_type = $3 AND resource_uuid = $4`,
		toProject, utcNow(), resourceType, resourceUUID)
	if err != nil {
		return false, fmt.Errorf("updating resource owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing owner change fulfill: %w", err)
	}

	return true, nil
}
