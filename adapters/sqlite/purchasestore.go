package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/domain/purchase"
	"github.com/openlearn/coursegate/ports"
)

// PurchaseStore implements ports.PurchaseStore with SQLite.
type PurchaseStore struct {
	db *DB
}

// NewPurchaseStore creates a new SQLite purchase store.
func NewPurchaseStore(db *DB) *PurchaseStore {
	return &PurchaseStore{db: db}
}

const purchaseColumns = `id, kind, payer_id, course_id, amount, currency,
       status, gift_recipient_id, invoice_number, billing_name, billing_email,
       billing_address, invoice_items, invoice_total, invoice_issued_at,
       created_at`

// Get retrieves a purchase by ID.
func (s *PurchaseStore) Get(ctx context.Context, id string) (purchase.Purchase, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases WHERE id = ?
	`, id)

	p, err := scanPurchase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return purchase.Purchase{}, ports.ErrNotFound
	}
	return p, err
}

// ListByPayer returns the payer's purchases, newest first.
func (s *PurchaseStore) ListByPayer(ctx context.Context, payerID string, limit int) ([]purchase.Purchase, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE payer_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, payerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []purchase.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// CommitPurchase writes the purchase and its entitlement in one
// transaction. The duplicate-grant check is re-validated inside the
// transaction, so under concurrent duplicate requests exactly one commit
// succeeds and the loser sees ErrDuplicateGrant with nothing written.
func (s *PurchaseStore) CommitPurchase(ctx context.Context, p purchase.Purchase, e entitlement.Entitlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertEntitlement(ctx, tx, e); err != nil {
		return err
	}

	items, err := json.Marshal(p.Invoice.Items)
	if err != nil {
		return fmt.Errorf("marshal invoice items: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchases (id, kind, payer_id, course_id, amount, currency,
		                       status, gift_recipient_id, invoice_number,
		                       billing_name, billing_email, billing_address,
		                       invoice_items, invoice_total, invoice_issued_at,
		                       created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Kind, p.PayerID, p.CourseID, p.Amount, p.Currency,
		p.Status, p.GiftRecipientID, p.Invoice.Number,
		p.Invoice.BillingName, p.Invoice.BillingEmail, p.Invoice.BillingAddress,
		string(items), p.Invoice.Total, p.Invoice.IssuedAt,
		p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	return tx.Commit()
}

func scanPurchase(row rowScanner) (purchase.Purchase, error) {
	var p purchase.Purchase
	var kind, status, itemsJSON string
	var issuedAt sql.NullTime
	err := row.Scan(
		&p.ID, &kind, &p.PayerID, &p.CourseID, &p.Amount, &p.Currency,
		&status, &p.GiftRecipientID, &p.Invoice.Number,
		&p.Invoice.BillingName, &p.Invoice.BillingEmail, &p.Invoice.BillingAddress,
		&itemsJSON, &p.Invoice.Total, &issuedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return p, err
	}
	p.Kind = purchase.Kind(kind)
	p.Status = purchase.Status(status)
	p.Invoice.Currency = p.Currency
	if issuedAt.Valid {
		p.Invoice.IssuedAt = issuedAt.Time
	}
	if err := json.Unmarshal([]byte(itemsJSON), &p.Invoice.Items); err != nil {
		return p, fmt.Errorf("unmarshal invoice items: %w", err)
	}
	return p, nil
}

// Ensure interface compliance.
var _ ports.PurchaseStore = (*PurchaseStore)(nil)
