// Package models defines data types for the leasing broker: offers,
// leases, owner changes, and their shared status lifecycle.
package models

// Status is the lifecycle state of an offer, lease, or owner change.
// Statuses are exchanged over the wire as these literal lowercase tokens.
type Status string

// Lifecycle states shared by all entity kinds.
const (
	StatusCreated   Status = "created"
	StatusAvailable Status = "available"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusDeleted   Status = "deleted"
)

// EntityKind names one of the three broker entity kinds.
type EntityKind string

// Entity kinds.
const (
	KindOffer       EntityKind = "offer"
	KindLease       EntityKind = "lease"
	KindOwnerChange EntityKind = "owner_change"
)

// offerTransitions is the legal transition set for offers.
// Offers become available immediately at creation; there is no separate
// activation step.
var offerTransitions = map[Status][]Status{
	StatusCreated:   {StatusAvailable},
	StatusAvailable: {StatusExpired, StatusDeleted},
}

// leaseTransitions is the legal transition set for leases and owner
// changes. A lease whose window fully elapses before it is fulfilled goes
// straight from created to expired.
var leaseTransitions = map[Status][]Status{
	StatusCreated: {StatusActive, StatusExpired, StatusDeleted},
	StatusActive:  {StatusExpired, StatusDeleted},
}

// transitionsFor returns the transition table for the given entity kind.
func transitionsFor(kind EntityKind) map[Status][]Status {
	if kind == KindOffer {
		return offerTransitions
	}

	return leaseTransitions
}

// ValidTransition reports whether from -> to is a legal lifecycle step for
// the given entity kind. Transitions are monotonic: expired and deleted are
// terminal and no state is re-enterable.
func ValidTransition(kind EntityKind, from, to Status) bool {
	for _, next := range transitionsFor(kind)[from] {
		if next == to {
			return true
		}
	}

	return false
}

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusDeleted
}

// ParseStatus validates a wire token and returns it as a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusCreated, StatusAvailable, StatusActive, StatusExpired, StatusDeleted:
		return Status(s), true
	}

	return "", false
}
