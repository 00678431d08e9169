// Package domain defines the canonical service interfaces shared across the
// API layer and tests. Consumers should depend on these interfaces rather
// than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/models"
)

// OfferService defines all offer operations, including the claim
// transaction.
type OfferService interface {
	ListOffers(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Offer, error)
	GetOffer(ctx context.Context, identity auth.Identity, offerUUID string) (*models.Offer, error)
	CreateOffer(ctx context.Context, identity auth.Identity, req models.CreateOfferRequest) (*models.Offer, error)
	DeleteOffer(ctx context.Context, identity auth.Identity, offerUUID string) error
	Claim(ctx context.Context, identity auth.Identity, offerUUID string, req models.ClaimRequest) (*models.Lease, error)
}

// LeaseService defines all lease operations outside the claim path.
type LeaseService interface {
	ListLeases(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.Lease, error)
	GetLease(ctx context.Context, identity auth.Identity, leaseUUID string) (*models.Lease, error)
	CreateLease(ctx context.Context, identity auth.Identity, req models.CreateLeaseRequest) (*models.Lease, error)
	DeleteLease(ctx context.Context, identity auth.Identity, leaseUUID string) error
}

// OwnerChangeService defines all owner change operations.
type OwnerChangeService interface {
	ListOwnerChanges(ctx context.Context, identity auth.Identity, filter models.ListFilter) ([]models.OwnerChange, error)
	GetOwnerChange(ctx context.Context, identity auth.Identity, changeUUID string) (*models.OwnerChange, error)
	CreateOwnerChange(ctx context.Context, identity auth.Identity, req models.CreateOwnerChangeRequest) (*models.OwnerChange, error)
	DeleteOwnerChange(ctx context.Context, identity auth.Identity, changeUUID string) error
}
