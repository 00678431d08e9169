package auth

import (
	"errors"
	"fmt"
)

// ErrForbidden indicates the caller's roles do not satisfy the rule for the
// requested operation (maps to HTTP 403).
var ErrForbidden = errors.New("not authorized")

// Rule names for broker operations.
const (
	RuleLeaseCreate = "lease:create"
	RuleLeaseGet    = "lease:get"
	RuleLeaseDelete = "lease:delete"

	RuleOfferCreate = "offer:create"
	RuleOfferGet    = "offer:get"
	RuleOfferDelete = "offer:delete"
	RuleOfferClaim  = "offer:claim"

	RuleOwnerChangeCreate = "owner_change:create"
	RuleOwnerChangeGet    = "owner_change:get"
	RuleOwnerChangeDelete = "owner_change:delete"
)

// predicate decides whether an identity satisfies a rule.
type predicate func(Identity) bool

func isAdmin(i Identity) bool  { return i.IsAdmin() }
func isOwner(i Identity) bool  { return i.HasRole(RoleOwner) }
func isLessee(i Identity) bool { return i.HasRole(RoleLessee) }

func anyOf(preds ...predicate) predicate {
	return func(i Identity) bool {
		for _, p := range preds {
			if p(i) {
				return true
			}
		}

		return false
	}
}

// defaultRules maps each rule name to its role predicate. Owner changes are
// admin-managed except for reads, which resource owners may perform.
func defaultRules() map[string]predicate {
	return map[string]predicate{
		RuleLeaseCreate: anyOf(isAdmin, isOwner),
		RuleLeaseGet:    anyOf(isAdmin, isOwner, isLessee),
		RuleLeaseDelete: anyOf(isAdmin, isOwner, isLessee),

		RuleOfferCreate: anyOf(isAdmin, isOwner),
		RuleOfferGet:    anyOf(isAdmin, isOwner, isLessee),
		RuleOfferDelete: anyOf(isAdmin, isOwner),
		RuleOfferClaim:  anyOf(isAdmin, isLessee),

		RuleOwnerChangeCreate: isAdmin,
		RuleOwnerChangeGet:    anyOf(isAdmin, isOwner),
		RuleOwnerChangeDelete: isAdmin,
	}
}

// Enforcer evaluates policy rules for broker operations. Disabled enforcers
// allow everything, for development and tests.
type Enforcer struct {
	rules   map[string]predicate
	enabled bool
}

// NewEnforcer creates an Enforcer with the default rule set.
func NewEnforcer(enabled bool) *Enforcer {
	return &Enforcer{rules: defaultRules(), enabled: enabled}
}

// Authorize checks the named rule against the identity's roles. Unknown
// rules are always denied.
func (e *Enforcer) Authorize(rule string, identity Identity) error {
	if !e.enabled {
		return nil
	}

	pred, ok := e.rules[rule]
	if !ok {
		return fmt.Errorf("%w: unknown rule %q", ErrForbidden, rule)
	}

	if !pred(identity) {
		return fmt.Errorf("%w: rule %s", ErrForbidden, rule)
	}

	return nil
}

// Enabled reports whether policy enforcement is active.
func (e *Enforcer) Enabled() bool {
	return e.enabled
}
