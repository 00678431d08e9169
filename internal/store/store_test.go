package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/db"
	"github.com/metalbroker/metalbroker/internal/db/migrations"
	"github.com/metalbroker/metalbroker/internal/dbpool"
	"github.com/metalbroker/metalbroker/internal/models"
	"github.com/metalbroker/metalbroker/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base plus a fresh resource UUID so tests never
// collide, with its rows cleaned up after the test.
func setupTestBase(t *testing.T) (_ store.Base, resourceUUID string) {
	t.Helper()

	env := getTestEnv(t)
	resourceUUID = "node-" + uuid.New().String()

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// Delete in dependency order: leases reference offers.
		env.pool.Exec(cleanCtx, "DELETE FROM leases WHERE resource_uuid = $1", resourceUUID)        //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM offers WHERE resource_uuid = $1", resourceUUID)        //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM owner_changes WHERE resource_uuid = $1", resourceUUID) //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM resources WHERE resource_uuid = $1", resourceUUID)     //nolint:errcheck // best-effort cleanup
	})

	return store.Base{Pool: env.pool, Log: env.log}, resourceUUID
}

func bt(t *testing.T, s string) models.BrokerTime {
	t.Helper()

	parsed, err := time.Parse(models.TimeLayout, s)
	if err != nil {
		t.Fatalf("parsing test time %q: %v", s, err)
	}

	return models.NewBrokerTime(parsed)
}

// newTestOffer builds an offer covering all of 2030 for the given resource.
func newTestOffer(t *testing.T, resourceUUID string) *models.Offer {
	t.Helper()

	return &models.Offer{
		UUID:         models.NewOfferUUID(),
		ResourceType: models.DefaultResourceType,
		ResourceUUID: resourceUUID,
		Name:         "test-offer",
		ProjectID:    "p-owner",
		StartTime:    bt(t, "2030-01-01T00:00:00"),
		EndTime:      bt(t, "2031-01-01T00:00:00"),
	}
}
