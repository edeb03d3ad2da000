package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/ports"
)

// EntitlementStore implements ports.EntitlementStore with SQLite.
type EntitlementStore struct {
	db *DB
}

// NewEntitlementStore creates a new SQLite entitlement store.
func NewEntitlementStore(db *DB) *EntitlementStore {
	return &EntitlementStore{db: db}
}

const entitlementColumns = `id, user_id, course_id, scope,
       COALESCE(source_purchase_id, ''), granted_by, expires_at, created_at`

// Get retrieves an entitlement by ID.
func (s *EntitlementStore) Get(ctx context.Context, id string) (entitlement.Entitlement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entitlementColumns+`
		FROM entitlements WHERE id = ?
	`, id)

	e, err := scanEntitlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entitlement.Entitlement{}, ports.ErrNotFound
	}
	return e, err
}

// ListActiveByUser returns all grants active at the given instant.
// Expiry is evaluated at read time; expired rows stay for audit.
func (s *EntitlementStore) ListActiveByUser(ctx context.Context, userID string, at time.Time) ([]entitlement.Entitlement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entitlementColumns+`
		FROM entitlements
		WHERE user_id = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at
	`, userID, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []entitlement.Entitlement
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, e)
	}
	return grants, rows.Err()
}

// HasActiveGrant reports whether an active grant exists for exactly
// (user, course, scope).
func (s *EntitlementStore) HasActiveGrant(ctx context.Context, userID, courseID string, scope entitlement.Scope, at time.Time) (bool, error) {
	return activeGrantExists(ctx, s.db.DB, userID, courseID, scope, at)
}

// Create stores a new grant. The duplicate check and the insert run in one
// transaction; SQLite serializes writers, so concurrent equivalent grants
// cannot both commit.
func (s *EntitlementStore) Create(ctx context.Context, e entitlement.Entitlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertEntitlement(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

// Revoke sets the grant's expiry to the given instant.
func (s *EntitlementStore) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE entitlements SET expires_at = ? WHERE id = ?
	`, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// activeGrantExists checks for an active equivalent grant.
func activeGrantExists(ctx context.Context, q querier, userID, courseID string, scope entitlement.Scope, at time.Time) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM entitlements
		WHERE user_id = ? AND course_id = ? AND scope = ?
		  AND (expires_at IS NULL OR expires_at > ?)
	`, userID, courseID, scope, at).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// insertEntitlement re-validates the duplicate check and inserts the grant
// within the caller's transaction.
func insertEntitlement(ctx context.Context, tx *sql.Tx, e entitlement.Entitlement) error {
	exists, err := activeGrantExists(ctx, tx, e.UserID, e.CourseID, e.Scope, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("check duplicate grant: %w", err)
	}
	if exists {
		return ports.ErrDuplicateGrant
	}

	var sourcePurchaseID any
	if e.SourcePurchaseID != "" {
		sourcePurchaseID = e.SourcePurchaseID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO entitlements (id, user_id, course_id, scope,
		                          source_purchase_id, granted_by, expires_at,
		                          created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.CourseID, e.Scope,
		sourcePurchaseID, e.GrantedBy, e.ExpiresAt, e.CreatedAt)
	return err
}

func scanEntitlement(row rowScanner) (entitlement.Entitlement, error) {
	var e entitlement.Entitlement
	var scope string
	var expiresAt sql.NullTime
	err := row.Scan(
		&e.ID, &e.UserID, &e.CourseID, &scope,
		&e.SourcePurchaseID, &e.GrantedBy, &expiresAt, &e.CreatedAt,
	)
	e.Scope = entitlement.Scope(scope)
	if expiresAt.Valid {
		t := expiresAt.Time
		e.ExpiresAt = &t
	}
	return e, err
}

// Ensure interface compliance.
var _ ports.EntitlementStore = (*EntitlementStore)(nil)
