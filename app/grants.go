package app

import (
	"context"
	"fmt"
	"time"

	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/ports"
	"github.com/rs/zerolog"
)

// GrantService handles administrative grants and revocations. Admin grants
// bypass purchasing but follow the same duplicate rules as purchases.
type GrantService struct {
	courses ports.CourseStore
	grants  ports.EntitlementStore
	clock   ports.Clock
	ids     ports.IDGenerator
	events  ports.EventPublisher
	logger  zerolog.Logger
}

// NewGrantService creates a new grant service.
func NewGrantService(
	courses ports.CourseStore,
	grants ports.EntitlementStore,
	clock ports.Clock,
	ids ports.IDGenerator,
	events ports.EventPublisher,
	logger zerolog.Logger,
) *GrantService {
	return &GrantService{
		courses: courses,
		grants:  grants,
		clock:   clock,
		ids:     ids,
		events:  events,
		logger:  logger.With().Str("service", "grant").Logger(),
	}
}

// AdminGrant creates a grant without a purchase. The scope must match the
// course kind: module scope for modules, bundle scope for bundles.
func (s *GrantService) AdminGrant(ctx context.Context, userID, courseID string, scope entitlement.Scope, expiresAt *time.Time, grantedBy string) (entitlement.Entitlement, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return entitlement.Entitlement{}, fmt.Errorf("resolve course %s: %w", courseID, err)
	}
	if (scope == entitlement.ScopeModule && !course.IsModule()) ||
		(scope == entitlement.ScopeBundle && !course.IsBundle()) {
		return entitlement.Entitlement{}, fmt.Errorf("%w: scope %s against %s %s", ErrInvalidCourseKind, scope, course.Kind, courseID)
	}

	now := s.clock.Now()
	e := entitlement.Entitlement{
		ID:        s.ids.New(),
		UserID:    userID,
		CourseID:  courseID,
		Scope:     scope,
		GrantedBy: grantedBy,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}

	if err := s.grants.Create(ctx, e); err != nil {
		return entitlement.Entitlement{}, fmt.Errorf("create grant for course %s: %w", courseID, err)
	}

	s.logger.Info().
		Str("entitlement_id", e.ID).
		Str("user_id", userID).
		Str("course_id", courseID).
		Str("scope", string(scope)).
		Str("granted_by", grantedBy).
		Msg("admin grant created")

	s.events.Publish(ports.Event{
		Type:     "grant.created",
		UserID:   userID,
		CourseID: courseID,
		At:       now,
	})

	return e, nil
}

// Revoke expires a grant immediately. The row is kept for audit history;
// all read paths treat expired and absent identically.
func (s *GrantService) Revoke(ctx context.Context, entitlementID string) error {
	e, err := s.grants.Get(ctx, entitlementID)
	if err != nil {
		return fmt.Errorf("resolve entitlement %s: %w", entitlementID, err)
	}

	now := s.clock.Now()
	if err := s.grants.Revoke(ctx, entitlementID, now); err != nil {
		return fmt.Errorf("revoke entitlement %s: %w", entitlementID, err)
	}

	s.logger.Info().
		Str("entitlement_id", entitlementID).
		Str("user_id", e.UserID).
		Str("course_id", e.CourseID).
		Msg("grant revoked")

	s.events.Publish(ports.Event{
		Type:     "grant.revoked",
		UserID:   e.UserID,
		CourseID: e.CourseID,
		At:       now,
	})

	return nil
}
