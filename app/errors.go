package app

import "errors"

// Request-scoped errors surfaced directly to callers. None of these are
// retryable as-is; ports.ErrDuplicateGrant is retryable by re-running the
// purchase flow from validation.
var (
	// ErrAlreadyOwned means an entitlement already covers the request.
	ErrAlreadyOwned = errors.New("already owned")

	// ErrAlreadyEntitled means the pro plan makes the purchase meaningless.
	ErrAlreadyEntitled = errors.New("already entitled by plan")

	// ErrInvalidRecipient means a gift targets its own payer.
	ErrInvalidRecipient = errors.New("invalid gift recipient")

	// ErrInvalidCourseKind means the operation targets the wrong catalog
	// level, e.g. a module purchase against a bundle ID.
	ErrInvalidCourseKind = errors.New("invalid course kind")
)
