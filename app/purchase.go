package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openlearn/coursegate/domain/access"
	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/domain/pricing"
	"github.com/openlearn/coursegate/domain/purchase"
	"github.com/openlearn/coursegate/ports"
	"github.com/rs/zerolog"
)

// PurchaseService orchestrates the atomic purchase-to-entitlement
// transition. Each attempt either commits both the purchase and the
// entitlement or fails before any write.
type PurchaseService struct {
	courses   ports.CourseStore
	grants    ports.EntitlementStore
	purchases ports.PurchaseStore
	plans     ports.PlanProvider
	clock     ports.Clock
	ids       ports.IDGenerator
	events    ports.EventPublisher
	logger    zerolog.Logger
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(
	courses ports.CourseStore,
	grants ports.EntitlementStore,
	purchases ports.PurchaseStore,
	plans ports.PlanProvider,
	clock ports.Clock,
	ids ports.IDGenerator,
	events ports.EventPublisher,
	logger zerolog.Logger,
) *PurchaseService {
	return &PurchaseService{
		courses:   courses,
		grants:    grants,
		purchases: purchases,
		plans:     plans,
		clock:     clock,
		ids:       ids,
		events:    events,
		logger:    logger.With().Str("service", "purchase").Logger(),
	}
}

// PurchaseModule sells a single module to userID.
// Fails with ErrAlreadyEntitled for pro users, ErrAlreadyOwned when a
// module grant or a covering bundle grant already exists, and
// ports.ErrDuplicateGrant when a concurrent request wins the commit race.
func (s *PurchaseService) PurchaseModule(ctx context.Context, userID, moduleID string, bill purchase.BillingInfo) (purchase.Purchase, entitlement.Entitlement, error) {
	module, err := s.courses.Get(ctx, moduleID)
	if err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("resolve module %s: %w", moduleID, err)
	}
	if !module.IsModule() {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("%w: %s is a %s", ErrInvalidCourseKind, moduleID, module.Kind)
	}

	if err := s.requireNotPro(ctx, userID); err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, err
	}

	now := s.clock.Now()
	owned, err := s.grants.HasActiveGrant(ctx, userID, moduleID, entitlement.ScopeModule, now)
	if err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("check module grant: %w", err)
	}
	if owned {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("%w: module %s", ErrAlreadyOwned, moduleID)
	}

	// Owning the whole bundle supersedes buying a part.
	if module.ParentID != "" {
		covered, err := s.grants.HasActiveGrant(ctx, userID, module.ParentID, entitlement.ScopeBundle, now)
		if err != nil {
			return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("check bundle grant: %w", err)
		}
		if covered {
			return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("%w: bundle %s covers module %s", ErrAlreadyOwned, module.ParentID, moduleID)
		}
	}

	items := []purchase.InvoiceItem{{
		Description: module.Title,
		Quantity:    1,
		UnitPrice:   module.IndividualPrice,
		Amount:      module.IndividualPrice,
	}}
	inv := purchase.BuildInvoice(s.invoiceNumber(now), bill, items, module.Currency, now)
	p := purchase.NewModulePurchase(s.ids.New(), userID, moduleID, module.IndividualPrice, module.Currency, inv, now)

	return s.commit(ctx, p, entitlement.ScopeModule)
}

// PurchaseBundle upgrades userID to full bundle access. Existing module
// grants under the bundle are expected and priced in; only an existing
// bundle grant is an error.
func (s *PurchaseService) PurchaseBundle(ctx context.Context, userID, bundleID string, bill purchase.BillingInfo) (purchase.Purchase, entitlement.Entitlement, error) {
	bundle, err := s.courses.Get(ctx, bundleID)
	if err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("resolve bundle %s: %w", bundleID, err)
	}
	if !bundle.IsBundle() {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("%w: %s is a %s", ErrInvalidCourseKind, bundleID, bundle.Kind)
	}

	if err := s.requireNotPro(ctx, userID); err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, err
	}

	now := s.clock.Now()
	covered, err := s.grants.HasActiveGrant(ctx, userID, bundleID, entitlement.ScopeBundle, now)
	if err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("check bundle grant: %w", err)
	}
	if covered {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("%w: bundle %s", ErrAlreadyOwned, bundleID)
	}

	modules, err := s.courses.ListModules(ctx, bundleID, false)
	if err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("list modules of %s: %w", bundleID, err)
	}

	userGrants, err := s.grants.ListActiveByUser(ctx, userID, now)
	if err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("list grants: %w", err)
	}
	ownedIDs := entitlement.OwnedModuleIDs(userGrants, catalog.ModuleIDs(modules), now)

	price := pricing.UpgradeCost(bundle, modules, ownedIDs)

	items := []purchase.InvoiceItem{{
		Description: bundle.Title,
		Quantity:    1,
		UnitPrice:   bundle.BundlePrice,
		Amount:      bundle.BundlePrice,
	}}
	if credit := pricing.OwnedCredit(bundle, modules, ownedIDs); credit > 0 {
		items = append(items, purchase.InvoiceItem{
			Description: fmt.Sprintf("Credit for %d owned module(s)", len(ownedIDs)),
			Quantity:    1,
			UnitPrice:   -credit,
			Amount:      -credit,
		})
	}
	inv := purchase.BuildInvoice(s.invoiceNumber(now), bill, items, bundle.Currency, now)
	p := purchase.NewBundlePurchase(s.ids.New(), userID, bundleID, price, bundle.Currency, inv, now)

	return s.commit(ctx, p, entitlement.ScopeBundle)
}

// PurchaseGift sells a module or bundle paid by payerID for recipientID.
// Gifting never applies proration; the payer is charged the full price.
// Fails with ErrInvalidRecipient when a payer gifts themselves.
func (s *PurchaseService) PurchaseGift(ctx context.Context, payerID, recipientID, courseID string, bill purchase.BillingInfo) (purchase.Purchase, entitlement.Entitlement, error) {
	if payerID == recipientID {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("%w: payer %s gifting themselves", ErrInvalidRecipient, payerID)
	}

	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("resolve course %s: %w", courseID, err)
	}

	now := s.clock.Now()
	price := pricing.GiftCost(course)

	items := []purchase.InvoiceItem{{
		Description: "Gift: " + course.Title,
		Quantity:    1,
		UnitPrice:   price,
		Amount:      price,
	}}
	inv := purchase.BuildInvoice(s.invoiceNumber(now), bill, items, course.Currency, now)
	p := purchase.NewGiftPurchase(s.ids.New(), payerID, recipientID, courseID, price, course.Currency, inv, now)

	scope := entitlement.ScopeModule
	if course.IsBundle() {
		scope = entitlement.ScopeBundle
	}
	return s.commit(ctx, p, scope)
}

// ListPurchases returns the payer's purchase history, newest first.
func (s *PurchaseService) ListPurchases(ctx context.Context, payerID string, limit int) ([]purchase.Purchase, error) {
	return s.purchases.ListByPayer(ctx, payerID, limit)
}

// commit writes the purchase and entitlement atomically and publishes the
// purchase event. The duplicate-grant check is re-validated inside the
// store transaction, so concurrent duplicates lose with ErrDuplicateGrant.
func (s *PurchaseService) commit(ctx context.Context, p purchase.Purchase, scope entitlement.Scope) (purchase.Purchase, entitlement.Entitlement, error) {
	e := entitlement.Entitlement{
		ID:               s.ids.New(),
		UserID:           p.RecipientID(),
		CourseID:         p.CourseID,
		Scope:            scope,
		SourcePurchaseID: p.ID,
		CreatedAt:        p.CreatedAt,
	}

	if err := s.purchases.CommitPurchase(ctx, p, e); err != nil {
		return purchase.Purchase{}, entitlement.Entitlement{}, fmt.Errorf("commit purchase for course %s: %w", p.CourseID, err)
	}

	s.logger.Info().
		Str("purchase_id", p.ID).
		Str("kind", string(p.Kind)).
		Str("payer_id", p.PayerID).
		Str("course_id", p.CourseID).
		Int64("amount", p.Amount).
		Msg("purchase committed")

	// Fire-and-forget; delivery never blocks or fails a commit.
	s.events.Publish(ports.Event{
		Type:       "purchase.completed",
		UserID:     p.RecipientID(),
		CourseID:   p.CourseID,
		PurchaseID: p.ID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		At:         p.CreatedAt,
	})

	return p, e, nil
}

// requireNotPro rejects purchases from pro users, who never need discrete
// purchases.
func (s *PurchaseService) requireNotPro(ctx context.Context, userID string) error {
	plan, err := s.plans.Plan(ctx, userID)
	if err != nil {
		return fmt.Errorf("read plan for %s: %w", userID, err)
	}
	if plan == access.PlanPro {
		return fmt.Errorf("%w: user %s is on the pro plan", ErrAlreadyEntitled, userID)
	}
	return nil
}

// invoiceNumber derives a unique invoice number from the issue date and a
// random suffix.
func (s *PurchaseService) invoiceNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(s.ids.New(), "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "INV-" + at.Format("20060102") + "-" + suffix
}
