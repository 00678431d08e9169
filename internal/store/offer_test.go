package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/metalbroker/metalbroker/internal/models"
	"github.com/metalbroker/metalbroker/internal/store"
)

func TestOfferStore_CreateAndGet(t *testing.T) {
	base, resourceUUID := setupTestBase(t)
	offers := store.NewOfferStore(base)
	resources := store.NewResourceStore(base)
	ctx := context.Background()

	created, err := offers.Create(ctx, newTestOffer(t, resourceUUID))
	if err != nil {
		t.Fatalf("creating offer: %v", err)
	}

	if created.Status != models.StatusAvailable {
		t.Errorf("created offer status = %s, want available", created.Status)
	}

	got, err := offers.Get(ctx, created.UUID)
	if err != nil {
		t.Fatalf("getting offer: %v", err)
	}
	if got.ResourceUUID != resourceUUID || got.ProjectID != "p-owner" {
		t.Errorf("round-tripped offer = %+v", got)
	}

	// Creating the offer registered its resource under the offering project.
	owner, err := resources.Owner(ctx, models.DefaultResourceType, resourceUUID)
	if err != nil {
		t.Fatalf("resolving resource owner: %v", err)
	}
	if owner != "p-owner" {
		t.Errorf("resource owner = %q, want p-owner", owner)
	}
}

func TestOfferStore_CreateDuplicateUUID(t *testing.T) {
	base, resourceUUID := setupTestBase(t)
	offers := store.NewOfferStore(base)
	ctx := context.Background()

	offer := newTestOffer(t, resourceUUID)
	if _, err := offers.Create(ctx, offer); err != nil {
		t.Fatalf("creating offer: %v", err)
	}

	if _, err := offers.Create(ctx, offer); !errors.Is(err, models.ErrDuplicateKey) {
		t.Fatalf("duplicate create: got %v, want ErrDuplicateKey", err)
	}
}

func TestOfferStore_GetNotFound(t *testing.T) {
	base, _ := setupTestBase(t)
	offers := store.NewOfferStore(base)

	if _, err := offers.Get(context.Background(), "no-such-offer"); !errors.Is(err, models.ErrOfferNotFound) {
		t.Fatalf("get missing offer: got %v, want ErrOfferNotFound", err)
	}
}

func TestOfferStore_UpdateStatusLostRace(t *testing.T) {
	base, resourceUUID := setupTestBase(t)
	offers := store.NewOfferStore(base)
	ctx := context.Background()

	offer, err := offers.Create(ctx, newTestOffer(t, resourceUUID))
	if err != nil {
		t.Fatalf("creating offer: %v", err)
	}

	ok, err := offers.UpdateStatus(ctx, offer.UUID, models.StatusAvailable, models.StatusExpired)
	if err != nil || !ok {
		t.Fatalf("first transition: ok=%v err=%v", ok, err)
	}

	// Second identical transition finds the row already moved on.
	ok, err = offers.UpdateStatus(ctx, offer.UUID, models.StatusAvailable, models.StatusExpired)
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}
	if ok {
		t.Error("second transition reported success, want lost race")
	}
}

func TestOfferStore_ListFilters(t *testing.T) {
	base, resourceUUID := setupTestBase(t)
	offers := store.NewOfferStore(base)
	ctx := context.Background()

	offer, err := offers.Create(ctx, newTestOffer(t, resourceUUID))
	if err != nil {
		t.Fatalf("creating offer: %v", err)
	}

	if _, err := offers.UpdateStatus(ctx, offer.UUID, models.StatusAvailable, models.StatusExpired); err != nil {
		t.Fatalf("expiring offer: %v", err)
	}

	available, err := offers.List(ctx, models.ListFilter{
		Statuses:     []models.Status{models.StatusAvailable},
		ResourceType: models.DefaultResourceType,
		ResourceUUID: resourceUUID,
	})
	if err != nil {
		t.Fatalf("listing available: %v", err)
	}
	if len(available) != 0 {
		t.Errorf("available offers = %d, want 0", len(available))
	}

	expired, err := offers.List(ctx, models.ListFilter{
		Statuses:     []models.Status{models.StatusExpired},
		ResourceType: models.DefaultResourceType,
		ResourceUUID: resourceUUID,
	})
	if err != nil {
		t.Fatalf("listing expired: %v", err)
	}
	if len(expired) != 1 || expired[0].UUID != offer.UUID {
		t.Errorf("expired offers = %+v, want the one offer", expired)
	}
}
