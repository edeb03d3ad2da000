package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlearn/coursegate/adapters/clock"
	"github.com/openlearn/coursegate/adapters/events"
	"github.com/openlearn/coursegate/adapters/idgen"
	"github.com/openlearn/coursegate/adapters/memory"
	"github.com/openlearn/coursegate/domain/catalog"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fixture wires the services against in-memory stores with a catalog of
// two bundles and a standalone module. Prices are cents.
type fixture struct {
	courses   *memory.CourseStore
	lessons   *memory.LessonStore
	grants    *memory.EntitlementStore
	purchases *memory.PurchaseStore
	plans     *memory.PlanProvider
	clock     *clock.Fake
	ids       *idgen.Sequential
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		courses: memory.NewCourseStore(),
		lessons: memory.NewLessonStore(),
		grants:  memory.NewEntitlementStore(),
		plans:   memory.NewPlanProvider(),
		clock:   clock.NewFake(testNow),
		ids:     idgen.NewSequential("id-"),
	}
	f.purchases = memory.NewPurchaseStore(f.grants)

	seed := []catalog.Course{
		{ID: "bundle-1", Kind: catalog.KindBundle, Title: "Go Bundle", BundlePrice: 80000, Currency: "USD", Status: catalog.StatusActive},
		{ID: "mod-1", Kind: catalog.KindModule, ParentID: "bundle-1", Title: "Basics", IndividualPrice: 50000, Currency: "USD", Status: catalog.StatusActive},
		{ID: "mod-2", Kind: catalog.KindModule, ParentID: "bundle-1", Title: "Concurrency", IndividualPrice: 50000, Currency: "USD", Status: catalog.StatusActive},
		{ID: "bundle-2", Kind: catalog.KindBundle, Title: "Web Bundle", BundlePrice: 40000, Currency: "USD", Status: catalog.StatusActive},
		{ID: "mod-web", Kind: catalog.KindModule, ParentID: "bundle-2", Title: "HTTP", IndividualPrice: 20000, Currency: "USD", Status: catalog.StatusActive},
		{ID: "mod-solo", Kind: catalog.KindModule, Title: "Standalone", IndividualPrice: 30000, Currency: "USD", Status: catalog.StatusActive},
	}
	for _, c := range seed {
		if err := f.courses.Create(ctx, c); err != nil {
			t.Fatalf("seed course %s: %v", c.ID, err)
		}
	}

	lessons := []catalog.Lesson{
		{ID: "l1", ModuleID: "mod-1", Title: "Intro", Order: 1, FreePreview: true},
		{ID: "l2", ModuleID: "mod-1", Title: "Types", Order: 2},
		{ID: "l3", ModuleID: "mod-1", Title: "Functions", Order: 3},
	}
	for _, l := range lessons {
		if err := f.lessons.Create(ctx, l); err != nil {
			t.Fatalf("seed lesson %s: %v", l.ID, err)
		}
	}

	return f
}

func (f *fixture) accessService() *AccessService {
	return NewAccessService(f.courses, f.lessons, f.grants, f.plans, f.clock, zerolog.Nop())
}

func (f *fixture) purchaseService() *PurchaseService {
	return NewPurchaseService(f.courses, f.grants, f.purchases, f.plans, f.clock, f.ids, events.Noop{}, zerolog.Nop())
}

func (f *fixture) offerService() *OfferService {
	return NewOfferService(f.courses, f.grants, f.clock, zerolog.Nop())
}

func (f *fixture) grantService() *GrantService {
	return NewGrantService(f.courses, f.grants, f.clock, f.ids, events.Noop{}, zerolog.Nop())
}
