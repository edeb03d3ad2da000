package memory

import (
	"context"
	"sync"

	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/domain/purchase"
	"github.com/openlearn/coursegate/ports"
)

// PurchaseStore is an in-memory implementation of ports.PurchaseStore.
// CommitPurchase delegates the grant insert to the entitlement store, whose
// write lock is the serialization point for duplicate prevention; the
// purchase record is only written once the grant insert has won.
type PurchaseStore struct {
	mu        sync.RWMutex
	purchases map[string]purchase.Purchase
	byPayer   map[string][]string
	grants    *EntitlementStore
}

// NewPurchaseStore creates a new in-memory purchase store that commits
// grants into the given entitlement store.
func NewPurchaseStore(grants *EntitlementStore) *PurchaseStore {
	return &PurchaseStore{
		purchases: make(map[string]purchase.Purchase),
		byPayer:   make(map[string][]string),
		grants:    grants,
	}
}

// Get retrieves a purchase by ID.
func (s *PurchaseStore) Get(ctx context.Context, id string) (purchase.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return purchase.Purchase{}, ports.ErrNotFound
	}
	return p, nil
}

// ListByPayer returns the payer's purchases, newest first.
func (s *PurchaseStore) ListByPayer(ctx context.Context, payerID string, limit int) ([]purchase.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPayer[payerID]
	var result []purchase.Purchase
	for i := len(ids) - 1; i >= 0; i-- {
		result = append(result, s.purchases[ids[i]])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// CommitPurchase writes the purchase and its entitlement together. The
// grant insert re-validates the duplicate check under the entitlement
// store's lock; a lost race returns ErrDuplicateGrant with nothing written.
func (s *PurchaseStore) CommitPurchase(ctx context.Context, p purchase.Purchase, e entitlement.Entitlement) error {
	if err := s.grants.Create(ctx, e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases[p.ID] = p
	s.byPayer[p.PayerID] = append(s.byPayer[p.PayerID], p.ID)
	return nil
}

// Ensure interface compliance.
var _ ports.PurchaseStore = (*PurchaseStore)(nil)
