package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for entity lookups. An offer that exists but is not in the
// status a caller requires is reported as not found, matching the lookup
// contract of the claim path.
var (
	ErrOfferNotFound       = errors.New("offer not found")
	ErrLeaseNotFound       = errors.New("lease not found")
	ErrOwnerChangeNotFound = errors.New("owner change not found")
	ErrResourceNotFound    = errors.New("resource not found")
)

// Sentinel errors for window validation.
var (
	ErrInvalidWindow      = errors.New("start_time must be before end_time")
	ErrWindowOutsideOffer = errors.New("requested window is outside the offer window")
	ErrWindowConflict     = errors.New("time window conflicts with an existing lease")
)

// ErrInvalidTransition indicates a status change that is not on the
// lifecycle graph (maps to HTTP 409 Conflict).
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrDuplicateKey indicates an insert collided with an existing entity
// (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("entity already exists")

// Sentinel errors for create request validation.
var (
	ErrMissingResource = errors.New("resource_uuid is required")
	ErrMissingProject  = errors.New("project_id is required")
)

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
