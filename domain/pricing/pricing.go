// Package pricing provides pure pricing computations.
// All functions are deterministic with no side effects, so a quote computed
// before a purchase is confirmed can be re-verified at commit time without
// drift.
package pricing

import "github.com/openlearn/coursegate/domain/catalog"

// UpgradeCost computes the amount still owed to upgrade from piecemeal
// module ownership to full bundle access.
//
//	ownedSum = sum(individualPrice(m) for owned modules under the bundle)
//	cost     = max(0, bundlePrice - ownedSum)
//
// The floor at zero is intentional: module prices may sum above the bundle
// price when the bundle is discounted relative to a-la-carte pricing, and a
// fully-stocked user must never be charged a negative amount.
// This is a PURE function.
func UpgradeCost(bundle catalog.Course, modules []catalog.Course, ownedModuleIDs []string) int64 {
	owned := make(map[string]bool, len(ownedModuleIDs))
	for _, id := range ownedModuleIDs {
		owned[id] = true
	}

	var ownedSum int64
	for _, m := range modules {
		if m.ParentID == bundle.ID && owned[m.ID] {
			ownedSum += m.IndividualPrice
		}
	}

	cost := bundle.BundlePrice - ownedSum
	if cost < 0 {
		return 0
	}
	return cost
}

// OwnedCredit returns the credit applied for already-owned modules when
// upgrading, capped at the bundle price so the invoice never goes negative.
// This is a PURE function.
func OwnedCredit(bundle catalog.Course, modules []catalog.Course, ownedModuleIDs []string) int64 {
	owned := make(map[string]bool, len(ownedModuleIDs))
	for _, id := range ownedModuleIDs {
		owned[id] = true
	}

	var ownedSum int64
	for _, m := range modules {
		if m.ParentID == bundle.ID && owned[m.ID] {
			ownedSum += m.IndividualPrice
		}
	}

	if ownedSum > bundle.BundlePrice {
		return bundle.BundlePrice
	}
	return ownedSum
}

// GiftCost returns the full price of a course when gifted.
// Gifting never applies upgrade proration: the recipient's existing
// ownership is irrelevant to the payer's cost.
// This is a PURE function.
func GiftCost(course catalog.Course) int64 {
	if course.IsBundle() {
		return course.BundlePrice
	}
	return course.IndividualPrice
}

// FormatAmount formats cents as a display string like "$1,234.56".
// This is a PURE function.
func FormatAmount(cents int64) string {
	if cents < 0 {
		return "-" + FormatAmount(-cents)
	}
	dollars := cents / 100
	remainder := cents % 100
	if remainder == 0 {
		return "$" + formatNumber(dollars)
	}
	return "$" + formatNumber(dollars) + "." + padZero(remainder)
}

// formatNumber adds comma separators.
func formatNumber(n int64) string {
	if n < 1000 {
		return itoa(n)
	}
	return formatNumber(n/1000) + "," + padThree(n%1000)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func padZero(n int64) string {
	if n < 10 {
		return "0" + itoa(n)
	}
	return itoa(n)
}

func padThree(n int64) string {
	s := itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
