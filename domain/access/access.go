// Package access provides pure access evaluation over plans and grants.
// The pro-plan override lives in exactly one place here, so new access rules
// cannot drift around it.
package access

import (
	"time"

	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/domain/entitlement"
)

// Plan is the per-user subscription tier read from the external profile
// collaborator. It is a first-class input to every access decision.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Via explains how an access decision was reached.
type Via string

const (
	ViaPro         Via = "pro"          // plan override, independent of any grant
	ViaModuleGrant Via = "module_grant" // direct module-scope grant
	ViaBundleGrant Via = "bundle_grant" // bundle-scope grant on the parent bundle
	ViaFreePreview Via = "free_preview" // lesson marked as free preview
	ViaNone        Via = "none"         // no access
)

// Result represents the outcome of an access decision (value type).
type Result struct {
	Allowed bool
	Via     Via
}

// DecideModule evaluates access to a module. Rules, in order:
//  1. pro plan: allowed regardless of ledger state
//  2. active module-scope grant for the module: allowed
//  3. active bundle-scope grant for the module's parent bundle: allowed
//  4. otherwise: denied
//
// This is a PURE function.
func DecideModule(plan Plan, grants []entitlement.Entitlement, moduleID, bundleID string, at time.Time) Result {
	if plan == PlanPro {
		return Result{Allowed: true, Via: ViaPro}
	}
	if entitlement.HasModuleGrant(grants, moduleID, at) {
		return Result{Allowed: true, Via: ViaModuleGrant}
	}
	if bundleID != "" && entitlement.HasBundleGrant(grants, bundleID, at) {
		return Result{Allowed: true, Via: ViaBundleGrant}
	}
	return Result{Allowed: false, Via: ViaNone}
}

// DecideLesson evaluates access to a lesson. Free-preview lessons are
// visible to everyone, including anonymous callers, so the preview check
// comes before any plan or grant consideration.
// This is a PURE function.
func DecideLesson(lesson catalog.Lesson, moduleResult Result) Result {
	if lesson.FreePreview {
		return Result{Allowed: true, Via: ViaFreePreview}
	}
	return moduleResult
}

// VisibleLessons filters the lesson list for a caller: everything in order
// when module access is granted, free previews only (still in order)
// otherwise. Only the filtered list is returned, never lesson bodies.
// This is a PURE function.
func VisibleLessons(lessons []catalog.Lesson, moduleAllowed bool) []catalog.Lesson {
	if moduleAllowed {
		return catalog.SortLessons(lessons)
	}
	return catalog.PreviewLessons(lessons)
}
