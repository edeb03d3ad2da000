// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"fmt"

	"github.com/openlearn/coursegate/domain/access"
	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/ports"
	"github.com/rs/zerolog"
)

// AccessService answers whether a user may see a module or lesson.
// It is a pure reader: catalog and ledger reads run with unbounded
// concurrency and no mutation hazard.
type AccessService struct {
	courses ports.CourseStore
	lessons ports.LessonStore
	grants  ports.EntitlementStore
	plans   ports.PlanProvider
	clock   ports.Clock
	logger  zerolog.Logger
}

// NewAccessService creates a new access service.
func NewAccessService(
	courses ports.CourseStore,
	lessons ports.LessonStore,
	grants ports.EntitlementStore,
	plans ports.PlanProvider,
	clock ports.Clock,
	logger zerolog.Logger,
) *AccessService {
	return &AccessService{
		courses: courses,
		lessons: lessons,
		grants:  grants,
		plans:   plans,
		clock:   clock,
		logger:  logger.With().Str("service", "access").Logger(),
	}
}

// CanAccessModule evaluates access to a module for a user. An empty userID
// means an anonymous caller, who never has module access.
// Returns ErrInvalidCourseKind when the ID resolves to a bundle.
func (s *AccessService) CanAccessModule(ctx context.Context, userID, moduleID string) (access.Result, error) {
	course, err := s.courses.Get(ctx, moduleID)
	if err != nil {
		return access.Result{}, fmt.Errorf("resolve module %s: %w", moduleID, err)
	}
	if !course.IsModule() {
		return access.Result{}, fmt.Errorf("%w: %s is a %s", ErrInvalidCourseKind, moduleID, course.Kind)
	}

	if userID == "" {
		return access.Result{Allowed: false, Via: access.ViaNone}, nil
	}

	// Plan is read fresh on every decision so plan changes take effect
	// promptly. Pro short-circuits before the ledger is consulted at all.
	plan, err := s.plans.Plan(ctx, userID)
	if err != nil {
		return access.Result{}, fmt.Errorf("read plan for %s: %w", userID, err)
	}
	if plan == access.PlanPro {
		return access.Result{Allowed: true, Via: access.ViaPro}, nil
	}

	grants, err := s.grants.ListActiveByUser(ctx, userID, s.clock.Now())
	if err != nil {
		return access.Result{}, fmt.Errorf("list grants for %s: %w", userID, err)
	}

	return access.DecideModule(plan, grants, moduleID, course.ParentID, s.clock.Now()), nil
}

// CanAccessLesson evaluates access to a single lesson. Free-preview status
// is checked before any identity, plan, or ledger lookup, so anonymous
// callers always see preview content.
func (s *AccessService) CanAccessLesson(ctx context.Context, userID, moduleID, lessonID string) (access.Result, error) {
	lessons, err := s.lessons.ListByModule(ctx, moduleID)
	if err != nil {
		return access.Result{}, fmt.Errorf("list lessons of %s: %w", moduleID, err)
	}
	lesson, ok := catalog.FindLesson(lessons, lessonID)
	if !ok {
		return access.Result{}, fmt.Errorf("resolve lesson %s: %w", lessonID, ports.ErrNotFound)
	}

	if lesson.FreePreview {
		return access.Result{Allowed: true, Via: access.ViaFreePreview}, nil
	}

	moduleResult, err := s.CanAccessModule(ctx, userID, moduleID)
	if err != nil {
		return access.Result{}, err
	}
	return access.DecideLesson(lesson, moduleResult), nil
}

// VisibleLessons returns the lessons a caller may see for a module: the
// full ordered list when module access is granted, free previews only
// otherwise. Bodies are never returned, only the filtered list.
func (s *AccessService) VisibleLessons(ctx context.Context, userID, moduleID string) ([]catalog.Lesson, error) {
	result, err := s.CanAccessModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.lessons.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list lessons of %s: %w", moduleID, err)
	}

	return access.VisibleLessons(lessons, result.Allowed), nil
}
