// Package store provides focused, single-concern data access stores for the
// leasing broker.
//
// Each store owns one entity kind (offers, leases, owner changes, the
// resource catalog) and embeds shared helpers (Pool, logger) via the Base
// struct. Stores never import each other — shared logic lives in this file
// or in dedicated helper files (scan.go, claim.go).
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/dbpool"
	"github.com/metalbroker/metalbroker/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// utcNow returns the current naive-UTC instant, truncated to whole seconds
// to match the stored timestamp precision.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// lockResource takes the resource catalog row lock inside tx. All lease
// inserts for a resource serialize on this lock, whether they come from a
// claim or from direct creation.
func lockResource(ctx context.Context, tx pgx.Tx, resourceType, resourceUUID string) error {
	_, err := tx.Exec(ctx,
		"SELECT 1 FROM resources WHERE resource_type = $1 AND resource_uuid = $2 FOR UPDATE",
		resourceType, resourceUUID)
	if err != nil {
		return fmt.Errorf("locking resource row: %w", err)
	}

	return nil
}

// buildListFilter constructs WHERE clauses and arguments from a ListFilter.
// Column names are fixed strings; only values travel as parameters.
func buildListFilter(f models.ListFilter) (where string, args []any) {
	clauses := make([]string, 0, 4)
	argIdx := 1

	if len(f.Statuses) > 0 {
		placeholders := make([]string, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argIdx))
			args = append(args, string(st))
			argIdx++
		}

		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if f.ResourceUUID != "" {
		clauses = append(clauses, fmt.Sprintf("resource_type = $%d AND resource_uuid = $%d", argIdx, argIdx+1))
		args = append(args, f.ResourceType, f.ResourceUUID)
		argIdx += 2
	}

	if f.ProjectID != "" {
		clauses = append(clauses, fmt.Sprintf("project_id = $%d", argIdx))
		args = append(args, f.ProjectID)
		argIdx++
	}

	if f.LesseeID != "" {
		clauses = append(clauses, fmt.Sprintf("lessee_id = $%d", argIdx))
		args = append(args, f.LesseeID)
		argIdx++
	}

	if f.OwnerID != "" {
		clauses = append(clauses, fmt.Sprintf("owner_id = $%d", argIdx))
		args = append(args, f.OwnerID)
		argIdx++
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
