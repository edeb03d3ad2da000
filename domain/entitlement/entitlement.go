// Package entitlement provides grant value types and pure ledger functions.
// An entitlement records that a user may access one module, or every module
// under one bundle. Grants are append-mostly: revocation sets ExpiresAt and
// never deletes, so the audit history survives.
package entitlement

import "time"

// Scope determines the granularity of a grant.
type Scope string

const (
	ScopeModule Scope = "module" // grants exactly one module
	ScopeBundle Scope = "bundle" // grants every module under one bundle, present or future
)

// Entitlement represents one grant (immutable value type, except soft expiry).
type Entitlement struct {
	ID               string
	UserID           string
	CourseID         string // module ID or bundle ID depending on Scope
	Scope            Scope
	SourcePurchaseID string // empty for administrative grants
	GrantedBy        string // admin user ID for administrative grants
	ExpiresAt        *time.Time
	CreatedAt        time.Time
}

// IsActive reports whether the grant is valid at the given instant.
// Expired and absent are treated identically by every read path.
func (e Entitlement) IsActive(at time.Time) bool {
	return e.ExpiresAt == nil || e.ExpiresAt.After(at)
}

// HasGrant reports whether an active grant with the given scope exists
// for exactly that course. This is a PURE function.
func HasGrant(grants []Entitlement, courseID string, scope Scope, at time.Time) bool {
	for _, g := range grants {
		if g.CourseID == courseID && g.Scope == scope && g.IsActive(at) {
			return true
		}
	}
	return false
}

// HasModuleGrant reports whether an active module-scope grant exists.
// This is a PURE function.
func HasModuleGrant(grants []Entitlement, moduleID string, at time.Time) bool {
	return HasGrant(grants, moduleID, ScopeModule, at)
}

// HasBundleGrant reports whether an active bundle-scope grant exists.
// This is a PURE function.
func HasBundleGrant(grants []Entitlement, bundleID string, at time.Time) bool {
	return HasGrant(grants, bundleID, ScopeBundle, at)
}

// OwnedModuleIDs returns the subset of moduleIDs for which an active
// module-scope grant exists. Used by pricing and recommendations.
// This is a PURE function.
func OwnedModuleIDs(grants []Entitlement, moduleIDs []string, at time.Time) []string {
	owned := make(map[string]bool)
	for _, g := range grants {
		if g.Scope == ScopeModule && g.IsActive(at) {
			owned[g.CourseID] = true
		}
	}

	var result []string
	for _, id := range moduleIDs {
		if owned[id] {
			result = append(result, id)
		}
	}
	return result
}

// ActiveGrants filters a list down to grants valid at the given instant.
// This is a PURE function.
func ActiveGrants(grants []Entitlement, at time.Time) []Entitlement {
	var result []Entitlement
	for _, g := range grants {
		if g.IsActive(at) {
			result = append(result, g)
		}
	}
	return result
}

// FindEquivalent finds an active grant matching (courseID, scope).
// Used for the duplicate check before a new grant is written.
// This is a PURE function.
func FindEquivalent(grants []Entitlement, courseID string, scope Scope, at time.Time) (Entitlement, bool) {
	for _, g := range grants {
		if g.CourseID == courseID && g.Scope == scope && g.IsActive(at) {
			return g, true
		}
	}
	return Entitlement{}, false
}
