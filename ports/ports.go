// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/openlearn/coursegate/domain/access"
	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/domain/purchase"
)

// Storage-contract errors shared by all store implementations.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateGrant is returned when an equivalent, still-active grant
	// already exists for (user, course, scope). Callers may retry the whole
	// purchase flow from validation, since the underlying state has changed.
	ErrDuplicateGrant = errors.New("duplicate grant")
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Catalog Ports
// -----------------------------------------------------------------------------

// CourseStore reads the course tree. Authoring happens in an external admin
// surface; this core only needs Create for seeding.
type CourseStore interface {
	// Get retrieves a course by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (catalog.Course, error)

	// ListModules returns the modules under a bundle, excluding archived
	// ones unless includeArchived is set.
	ListModules(ctx context.Context, bundleID string, includeArchived bool) ([]catalog.Course, error)

	// List returns all courses.
	List(ctx context.Context) ([]catalog.Course, error)

	// Create stores a new course (seeding only).
	Create(ctx context.Context, c catalog.Course) error
}

// LessonStore reads the lesson lists of modules.
type LessonStore interface {
	// ListByModule returns a module's lessons ordered by their Order field.
	ListByModule(ctx context.Context, moduleID string) ([]catalog.Lesson, error)

	// Create stores a new lesson (seeding only).
	Create(ctx context.Context, l catalog.Lesson) error
}

// -----------------------------------------------------------------------------
// Ledger Ports
// -----------------------------------------------------------------------------

// EntitlementStore persists the entitlement ledger.
type EntitlementStore interface {
	// Get retrieves an entitlement by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (entitlement.Entitlement, error)

	// ListActiveByUser returns all grants active at the given instant.
	ListActiveByUser(ctx context.Context, userID string, at time.Time) ([]entitlement.Entitlement, error)

	// HasActiveGrant reports whether an active grant exists for exactly
	// (user, course, scope).
	HasActiveGrant(ctx context.Context, userID, courseID string, scope entitlement.Scope, at time.Time) (bool, error)

	// Create stores a new grant. Returns ErrDuplicateGrant when an
	// equivalent grant is still active at e.CreatedAt; the check and the
	// insert happen atomically.
	Create(ctx context.Context, e entitlement.Entitlement) error

	// Revoke sets the grant's expiry to the given instant. The row is kept
	// for audit history.
	Revoke(ctx context.Context, id string, at time.Time) error
}

// PurchaseStore persists purchase records.
type PurchaseStore interface {
	// Get retrieves a purchase by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (purchase.Purchase, error)

	// ListByPayer returns the payer's purchases, newest first.
	ListByPayer(ctx context.Context, payerID string, limit int) ([]purchase.Purchase, error)

	// CommitPurchase durably writes the purchase and its entitlement in one
	// transaction. The duplicate-grant check is re-validated inside the
	// transaction; on a lost race it returns ErrDuplicateGrant and writes
	// nothing. Under concurrent duplicate requests exactly one commit
	// succeeds.
	CommitPurchase(ctx context.Context, p purchase.Purchase, e entitlement.Entitlement) error
}

// -----------------------------------------------------------------------------
// External Collaborator Ports
// -----------------------------------------------------------------------------

// PlanProvider reads the per-user plan from the profile collaborator.
// Implementations must return fresh values (no long-lived caching) so plan
// changes take effect promptly.
type PlanProvider interface {
	// Plan returns the user's plan. Unknown users are on the free plan.
	Plan(ctx context.Context, userID string) (access.Plan, error)
}

// Event describes a purchase or grant transition exposed to the
// notification collaborator.
type Event struct {
	Type       string // "purchase.completed", "grant.created", "grant.revoked"
	UserID     string
	CourseID   string
	PurchaseID string
	Amount     int64 // cents, zero for grant events
	Currency   string
	At         time.Time
}

// EventPublisher delivers events fire-and-forget. Publish must never block
// or fail a purchase commit.
type EventPublisher interface {
	// Publish queues an event for asynchronous delivery.
	Publish(event Event)

	// Close stops the publisher and flushes queued events.
	Close() error
}
