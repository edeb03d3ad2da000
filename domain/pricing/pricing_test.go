// Package pricing tests. Amounts are cents.
package pricing

import (
	"testing"

	"github.com/openlearn/coursegate/domain/catalog"
)

func bundleWithModules() (catalog.Course, []catalog.Course) {
	bundle := catalog.Course{ID: "bundle-1", Kind: catalog.KindBundle, BundlePrice: 80000}
	modules := []catalog.Course{
		{ID: "mod-1", Kind: catalog.KindModule, ParentID: "bundle-1", IndividualPrice: 50000},
		{ID: "mod-2", Kind: catalog.KindModule, ParentID: "bundle-1", IndividualPrice: 50000},
	}
	return bundle, modules
}

func TestUpgradeCost_NoOwnedModules(t *testing.T) {
	bundle, modules := bundleWithModules()

	cost := UpgradeCost(bundle, modules, nil)

	if cost != 80000 {
		t.Errorf("expected full bundle price 80000, got %d", cost)
	}
}

func TestUpgradeCost_OneOwnedModule(t *testing.T) {
	// The worked example: $500 module owned, $800 bundle, $300 remaining.
	bundle, modules := bundleWithModules()

	cost := UpgradeCost(bundle, modules, []string{"mod-1"})

	if cost != 30000 {
		t.Errorf("expected 30000, got %d", cost)
	}
}

func TestUpgradeCost_FloorsAtZero(t *testing.T) {
	// Both $500 modules owned against an $800 bundle: credit exceeds price.
	bundle, modules := bundleWithModules()

	cost := UpgradeCost(bundle, modules, []string{"mod-1", "mod-2"})

	if cost != 0 {
		t.Errorf("expected cost floored at 0, got %d", cost)
	}
}

func TestUpgradeCost_IgnoresForeignModules(t *testing.T) {
	bundle, modules := bundleWithModules()
	modules = append(modules, catalog.Course{
		ID: "mod-other", Kind: catalog.KindModule, ParentID: "bundle-2", IndividualPrice: 99999,
	})

	cost := UpgradeCost(bundle, modules, []string{"mod-other"})

	if cost != 80000 {
		t.Errorf("module under another bundle must not reduce cost, got %d", cost)
	}
}

func TestOwnedCredit_CappedAtBundlePrice(t *testing.T) {
	bundle, modules := bundleWithModules()

	credit := OwnedCredit(bundle, modules, []string{"mod-1", "mod-2"})

	if credit != 80000 {
		t.Errorf("expected credit capped at 80000, got %d", credit)
	}
}

func TestOwnedCredit_PartialOwnership(t *testing.T) {
	bundle, modules := bundleWithModules()

	credit := OwnedCredit(bundle, modules, []string{"mod-2"})

	if credit != 50000 {
		t.Errorf("expected 50000, got %d", credit)
	}
}

func TestGiftCost(t *testing.T) {
	bundle := catalog.Course{Kind: catalog.KindBundle, BundlePrice: 80000, IndividualPrice: 1}
	module := catalog.Course{Kind: catalog.KindModule, IndividualPrice: 50000}

	if got := GiftCost(bundle); got != 80000 {
		t.Errorf("expected bundle gift cost 80000, got %d", got)
	}
	if got := GiftCost(module); got != 50000 {
		t.Errorf("expected module gift cost 50000, got %d", got)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0"},
		{5, "$0.05"},
		{100, "$1"},
		{30000, "$300"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000"},
		{-5000, "-$50"},
	}

	for _, c := range cases {
		if got := FormatAmount(c.cents); got != c.want {
			t.Errorf("FormatAmount(%d) = %s, want %s", c.cents, got, c.want)
		}
	}
}
