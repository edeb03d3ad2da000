package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/ports"
)

func TestAdminGrant_CreatesWorkingEntitlement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.grantService().AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeModule, nil, "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.GrantedBy != "admin@example.com" {
		t.Errorf("expected granted_by recorded, got %s", e.GrantedBy)
	}
	if e.SourcePurchaseID != "" {
		t.Errorf("admin grant must not reference a purchase, got %s", e.SourcePurchaseID)
	}

	result, err := f.accessService().CanAccessModule(ctx, "user-1", "mod-1")
	if err != nil {
		t.Fatalf("access check: %v", err)
	}
	if !result.Allowed {
		t.Errorf("admin grant should open access")
	}
}

func TestAdminGrant_ScopeKindMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.grantService()

	_, err := svc.AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeBundle, nil, "admin")
	if !errors.Is(err, ErrInvalidCourseKind) {
		t.Errorf("bundle scope on a module: expected ErrInvalidCourseKind, got %v", err)
	}

	_, err = svc.AdminGrant(ctx, "user-1", "bundle-1", entitlement.ScopeModule, nil, "admin")
	if !errors.Is(err, ErrInvalidCourseKind) {
		t.Errorf("module scope on a bundle: expected ErrInvalidCourseKind, got %v", err)
	}
}

func TestAdminGrant_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.grantService()

	if _, err := svc.AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeModule, nil, "admin"); err != nil {
		t.Fatalf("first grant: %v", err)
	}

	_, err := svc.AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeModule, nil, "admin")
	if !errors.Is(err, ports.ErrDuplicateGrant) {
		t.Errorf("expected ErrDuplicateGrant, got %v", err)
	}
}

func TestAdminGrant_UnknownCourse(t *testing.T) {
	f := newFixture(t)

	_, err := f.grantService().AdminGrant(context.Background(), "user-1", "nope", entitlement.ScopeModule, nil, "admin")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminGrant_ExpiryEndsAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exp := testNow.Add(time.Hour)

	if _, err := f.grantService().AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeModule, &exp, "admin"); err != nil {
		t.Fatalf("grant: %v", err)
	}

	result, err := f.accessService().CanAccessModule(ctx, "user-1", "mod-1")
	if err != nil {
		t.Fatalf("access check: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("grant should be active before expiry")
	}

	f.clock.Advance(2 * time.Hour)
	result, err = f.accessService().CanAccessModule(ctx, "user-1", "mod-1")
	if err != nil {
		t.Fatalf("access check: %v", err)
	}
	if result.Allowed {
		t.Errorf("grant should be inactive after expiry")
	}
}

func TestRevoke_BehavesLikeAbsence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.grantService()

	e, err := svc.AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeModule, nil, "admin")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := svc.Revoke(ctx, e.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	result, err := f.accessService().CanAccessModule(ctx, "user-1", "mod-1")
	if err != nil {
		t.Fatalf("access check: %v", err)
	}
	if result.Allowed {
		t.Errorf("revoked grant must deny access")
	}

	// The row survives revocation for audit history.
	stored, err := f.grants.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("get entitlement: %v", err)
	}
	if stored.ExpiresAt == nil {
		t.Errorf("revocation is recorded as expiry, got nil ExpiresAt")
	}
}

func TestRevoke_ThenRegrantSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.grantService()

	e, err := svc.AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeModule, nil, "admin")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := svc.Revoke(ctx, e.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	f.clock.Advance(time.Minute)
	if _, err := svc.AdminGrant(ctx, "user-1", "mod-1", entitlement.ScopeModule, nil, "admin"); err != nil {
		t.Errorf("regrant after revocation should succeed, got %v", err)
	}
}

func TestRevoke_UnknownEntitlement(t *testing.T) {
	f := newFixture(t)

	err := f.grantService().Revoke(context.Background(), "nope")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
