package api

import (
	"github.com/metalbroker/metalbroker/internal/domain"
)

// Handler-facing service surfaces. These alias the canonical domain
// interfaces so handlers and their mocks share one definition.
type (
	// OfferRepository defines offer operations used by OfferHandler.
	OfferRepository = domain.OfferService

	// LeaseRepository defines lease operations used by LeaseHandler.
	LeaseRepository = domain.LeaseService

	// OwnerChangeRepository defines owner change operations used by
	// OwnerChangeHandler.
	OwnerChangeRepository = domain.OwnerChangeService
)
