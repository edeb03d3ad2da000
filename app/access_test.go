package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlearn/coursegate/domain/access"
	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/ports"
)

func TestCanAccessModule_AnonymousDenied(t *testing.T) {
	f := newFixture(t)

	result, err := f.accessService().CanAccessModule(context.Background(), "", "mod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Errorf("anonymous caller must not access module content")
	}
	if result.Via != access.ViaNone {
		t.Errorf("expected via none, got %s", result.Via)
	}
}

func TestCanAccessModule_ProShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.plans.SetPlan("user-1", access.PlanPro)

	result, err := f.accessService().CanAccessModule(context.Background(), "user-1", "mod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("pro plan should allow without any grants")
	}
	if result.Via != access.ViaPro {
		t.Errorf("expected via pro, got %s", result.Via)
	}
}

func TestCanAccessModule_ModuleGrant(t *testing.T) {
	f := newFixture(t)
	mustGrant(t, f, "user-1", "mod-1", entitlement.ScopeModule)

	result, err := f.accessService().CanAccessModule(context.Background(), "user-1", "mod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed || result.Via != access.ViaModuleGrant {
		t.Errorf("expected allowed via module_grant, got %+v", result)
	}
}

func TestCanAccessModule_BundleGrantCoversModule(t *testing.T) {
	f := newFixture(t)
	mustGrant(t, f, "user-1", "bundle-1", entitlement.ScopeBundle)

	result, err := f.accessService().CanAccessModule(context.Background(), "user-1", "mod-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed || result.Via != access.ViaBundleGrant {
		t.Errorf("expected allowed via bundle_grant, got %+v", result)
	}
}

func TestCanAccessModule_FreeUserWithoutGrantsDenied(t *testing.T) {
	f := newFixture(t)

	result, err := f.accessService().CanAccessModule(context.Background(), "user-1", "mod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Errorf("free user with no grants must be denied")
	}
}

func TestCanAccessModule_ExpiredGrantDenied(t *testing.T) {
	f := newFixture(t)
	exp := testNow.Add(time.Hour)
	mustGrantExpiring(t, f, "user-1", "mod-1", entitlement.ScopeModule, &exp)

	f.clock.Advance(2 * time.Hour)

	result, err := f.accessService().CanAccessModule(context.Background(), "user-1", "mod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Errorf("expired grant must behave like an absent one")
	}
}

func TestCanAccessModule_BundleIDRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.accessService().CanAccessModule(context.Background(), "user-1", "bundle-1")
	if !errors.Is(err, ErrInvalidCourseKind) {
		t.Errorf("expected ErrInvalidCourseKind, got %v", err)
	}
}

func TestCanAccessModule_UnknownModule(t *testing.T) {
	f := newFixture(t)

	_, err := f.accessService().CanAccessModule(context.Background(), "user-1", "nope")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCanAccessLesson_FreePreviewForAnonymous(t *testing.T) {
	f := newFixture(t)

	// Preview status is decided before identity is even considered.
	result, err := f.accessService().CanAccessLesson(context.Background(), "", "mod-1", "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed || result.Via != access.ViaFreePreview {
		t.Errorf("expected allowed via free_preview, got %+v", result)
	}
}

func TestCanAccessLesson_NonPreviewFollowsModuleDecision(t *testing.T) {
	f := newFixture(t)

	result, err := f.accessService().CanAccessLesson(context.Background(), "", "mod-1", "l2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Errorf("non-preview lesson must follow the module denial")
	}

	mustGrant(t, f, "user-1", "mod-1", entitlement.ScopeModule)
	result, err = f.accessService().CanAccessLesson(context.Background(), "user-1", "mod-1", "l2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed || result.Via != access.ViaModuleGrant {
		t.Errorf("expected allowed via module_grant, got %+v", result)
	}
}

func TestCanAccessLesson_UnknownLesson(t *testing.T) {
	f := newFixture(t)

	_, err := f.accessService().CanAccessLesson(context.Background(), "user-1", "mod-1", "nope")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVisibleLessons_DeniedSeesPreviewsOnly(t *testing.T) {
	f := newFixture(t)

	lessons, err := f.accessService().VisibleLessons(context.Background(), "", "mod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lessons) != 1 {
		t.Fatalf("expected 1 preview lesson, got %d", len(lessons))
	}
	if lessons[0].ID != "l1" {
		t.Errorf("expected l1, got %s", lessons[0].ID)
	}
}

func TestVisibleLessons_AllowedSeesAllOrdered(t *testing.T) {
	f := newFixture(t)
	mustGrant(t, f, "user-1", "bundle-1", entitlement.ScopeBundle)

	lessons, err := f.accessService().VisibleLessons(context.Background(), "user-1", "mod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(lessons))
	}
	if lessons[0].ID != "l1" || lessons[1].ID != "l2" || lessons[2].ID != "l3" {
		t.Errorf("expected l1,l2,l3, got %s,%s,%s", lessons[0].ID, lessons[1].ID, lessons[2].ID)
	}
}

func mustGrant(t *testing.T, f *fixture, userID, courseID string, scope entitlement.Scope) {
	t.Helper()
	mustGrantExpiring(t, f, userID, courseID, scope, nil)
}

func mustGrantExpiring(t *testing.T, f *fixture, userID, courseID string, scope entitlement.Scope, expiresAt *time.Time) {
	t.Helper()
	err := f.grants.Create(context.Background(), entitlement.Entitlement{
		ID:        f.ids.New(),
		UserID:    userID,
		CourseID:  courseID,
		Scope:     scope,
		ExpiresAt: expiresAt,
		CreatedAt: f.clock.Now(),
	})
	if err != nil {
		t.Fatalf("create grant: %v", err)
	}
}
