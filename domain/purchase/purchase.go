// Package purchase provides purchase records, invoice snapshots, and the
// purchase state machine. A purchase either commits with exactly one
// entitlement or fails before any write; there is no partial state.
package purchase

import "time"

// Kind discriminates purchase variants.
type Kind string

const (
	KindModule Kind = "module" // direct purchase of a single module
	KindBundle Kind = "bundle" // full-bundle purchase, prorated against owned modules
	KindGift   Kind = "gift"   // purchase on behalf of another user
)

// Status represents the settlement state of a purchase.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// BillingInfo carries the billing fields captured by an external
// collaborator. They are recorded verbatim into the invoice snapshot.
type BillingInfo struct {
	Name    string
	Email   string
	Address string
}

// InvoiceItem represents a line item on an invoice (value type).
// Credit lines carry a negative amount.
type InvoiceItem struct {
	Description string
	Quantity    int64
	UnitPrice   int64 // cents
	Amount      int64 // cents
}

// Invoice is the immutable snapshot issued at commit time.
// Later catalog price changes never alter an issued invoice.
type Invoice struct {
	Number         string
	BillingName    string
	BillingEmail   string
	BillingAddress string
	Items          []InvoiceItem
	Total          int64 // cents
	Currency       string
	IssuedAt       time.Time
}

// Purchase represents one settled purchase attempt (value type).
// Use the per-kind constructors so fields irrelevant to a variant never
// carry values.
type Purchase struct {
	ID              string
	Kind            Kind
	PayerID         string
	CourseID        string
	Amount          int64 // cents
	Currency        string
	Status          Status
	GiftRecipientID string // set only for gift purchases
	Invoice         Invoice
	CreatedAt       time.Time
}

// IsPaid reports whether the purchase settled.
func (p Purchase) IsPaid() bool { return p.Status == StatusPaid }

// RecipientID returns the user who receives the entitlement: the gift
// recipient for gifts, the payer otherwise.
func (p Purchase) RecipientID() string {
	if p.Kind == KindGift {
		return p.GiftRecipientID
	}
	return p.PayerID
}

// NewModulePurchase creates a settled module purchase.
func NewModulePurchase(id, payerID, moduleID string, amount int64, currency string, inv Invoice, at time.Time) Purchase {
	return Purchase{
		ID:        id,
		Kind:      KindModule,
		PayerID:   payerID,
		CourseID:  moduleID,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusPaid,
		Invoice:   inv,
		CreatedAt: at,
	}
}

// NewBundlePurchase creates a settled bundle-upgrade purchase.
func NewBundlePurchase(id, payerID, bundleID string, amount int64, currency string, inv Invoice, at time.Time) Purchase {
	return Purchase{
		ID:        id,
		Kind:      KindBundle,
		PayerID:   payerID,
		CourseID:  bundleID,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusPaid,
		Invoice:   inv,
		CreatedAt: at,
	}
}

// NewGiftPurchase creates a settled gift purchase. The payer owns the
// purchase record; the entitlement belongs to the recipient.
func NewGiftPurchase(id, payerID, recipientID, courseID string, amount int64, currency string, inv Invoice, at time.Time) Purchase {
	return Purchase{
		ID:              id,
		Kind:            KindGift,
		PayerID:         payerID,
		CourseID:        courseID,
		Amount:          amount,
		Currency:        currency,
		Status:          StatusPaid,
		GiftRecipientID: recipientID,
		Invoice:         inv,
		CreatedAt:       at,
	}
}

// BuildInvoice assembles the immutable snapshot from billing fields and
// line items. The total is the sum of item amounts.
// This is a PURE function.
func BuildInvoice(number string, bill BillingInfo, items []InvoiceItem, currency string, issuedAt time.Time) Invoice {
	var total int64
	for _, item := range items {
		total += item.Amount
	}
	return Invoice{
		Number:         number,
		BillingName:    bill.Name,
		BillingEmail:   bill.Email,
		BillingAddress: bill.Address,
		Items:          items,
		Total:          total,
		Currency:       currency,
		IssuedAt:       issuedAt,
	}
}
