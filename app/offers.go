package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/domain/pricing"
	"github.com/openlearn/coursegate/ports"
	"github.com/rs/zerolog"
)

// Offer surfaces a bundle upgrade to a user who owns part of it.
type Offer struct {
	BundleID         string
	BundleTitle      string
	OwnedModuleCount int
	RemainingAmount  int64 // cents
	Currency         string
}

// OfferService derives upgrade offers from the ledger and catalog.
// It is a read-only view and never writes.
type OfferService struct {
	courses ports.CourseStore
	grants  ports.EntitlementStore
	clock   ports.Clock
	logger  zerolog.Logger
}

// NewOfferService creates a new offer service.
func NewOfferService(
	courses ports.CourseStore,
	grants ports.EntitlementStore,
	clock ports.Clock,
	logger zerolog.Logger,
) *OfferService {
	return &OfferService{
		courses: courses,
		grants:  grants,
		clock:   clock,
		logger:  logger.With().Str("service", "offer").Logger(),
	}
}

// UpgradeOffers returns one offer per bundle under which the user holds at
// least one module grant but no bundle grant. Offers are sorted by
// remaining amount ascending, then bundle ID for determinism.
func (s *OfferService) UpgradeOffers(ctx context.Context, userID string) ([]Offer, error) {
	now := s.clock.Now()

	userGrants, err := s.grants.ListActiveByUser(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list grants for %s: %w", userID, err)
	}

	// Collect the parent bundles of directly owned modules.
	bundleIDs := make(map[string]bool)
	for _, g := range userGrants {
		if g.Scope != entitlement.ScopeModule {
			continue
		}
		module, err := s.courses.Get(ctx, g.CourseID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				// A grant may reference a course removed from the catalog;
				// it cannot produce an offer.
				s.logger.Warn().Str("course_id", g.CourseID).Msg("grant references unknown course")
				continue
			}
			return nil, fmt.Errorf("get course %s: %w", g.CourseID, err)
		}
		if module.ParentID != "" {
			bundleIDs[module.ParentID] = true
		}
	}

	var offers []Offer
	for bundleID := range bundleIDs {
		if entitlement.HasBundleGrant(userGrants, bundleID, now) {
			continue
		}

		bundle, err := s.courses.Get(ctx, bundleID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				s.logger.Warn().Str("bundle_id", bundleID).Msg("module references unknown bundle")
				continue
			}
			return nil, fmt.Errorf("get bundle %s: %w", bundleID, err)
		}
		modules, err := s.courses.ListModules(ctx, bundleID, false)
		if err != nil {
			return nil, fmt.Errorf("list modules of %s: %w", bundleID, err)
		}

		ownedIDs := entitlement.OwnedModuleIDs(userGrants, catalog.ModuleIDs(modules), now)
		if len(ownedIDs) == 0 {
			continue
		}

		offers = append(offers, Offer{
			BundleID:         bundleID,
			BundleTitle:      bundle.Title,
			OwnedModuleCount: len(ownedIDs),
			RemainingAmount:  pricing.UpgradeCost(bundle, modules, ownedIDs),
			Currency:         bundle.Currency,
		})
	}

	sort.Slice(offers, func(i, j int) bool {
		if offers[i].RemainingAmount != offers[j].RemainingAmount {
			return offers[i].RemainingAmount < offers[j].RemainingAmount
		}
		return offers[i].BundleID < offers[j].BundleID
	})

	return offers, nil
}
