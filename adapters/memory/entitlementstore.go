package memory

import (
	"context"
	"sync"
	"time"

	"github.com/openlearn/coursegate/domain/entitlement"
	"github.com/openlearn/coursegate/ports"
)

// EntitlementStore is an in-memory implementation of ports.EntitlementStore.
// Create holds the write lock across the duplicate check and the insert, so
// concurrent equivalent grants serialize here: exactly one wins.
type EntitlementStore struct {
	mu     sync.RWMutex
	grants map[string]entitlement.Entitlement
	byUser map[string][]string
}

// NewEntitlementStore creates a new in-memory entitlement store.
func NewEntitlementStore() *EntitlementStore {
	return &EntitlementStore{
		grants: make(map[string]entitlement.Entitlement),
		byUser: make(map[string][]string),
	}
}

// Get retrieves an entitlement by ID.
func (s *EntitlementStore) Get(ctx context.Context, id string) (entitlement.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.grants[id]
	if !ok {
		return entitlement.Entitlement{}, ports.ErrNotFound
	}
	return e, nil
}

// ListActiveByUser returns all grants active at the given instant.
func (s *EntitlementStore) ListActiveByUser(ctx context.Context, userID string, at time.Time) ([]entitlement.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []entitlement.Entitlement
	for _, id := range s.byUser[userID] {
		if e := s.grants[id]; e.IsActive(at) {
			result = append(result, e)
		}
	}
	return result, nil
}

// HasActiveGrant reports whether an active grant exists for exactly
// (user, course, scope).
func (s *EntitlementStore) HasActiveGrant(ctx context.Context, userID, courseID string, scope entitlement.Scope, at time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasActiveLocked(userID, courseID, scope, at), nil
}

// Create stores a new grant, failing with ErrDuplicateGrant when an
// equivalent grant is still active.
func (s *EntitlementStore) Create(ctx context.Context, e entitlement.Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(e)
}

// Revoke sets the grant's expiry. The row is kept for audit history.
func (s *EntitlementStore) Revoke(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.grants[id]
	if !ok {
		return ports.ErrNotFound
	}
	expiry := at
	e.ExpiresAt = &expiry
	s.grants[id] = e
	return nil
}

// createLocked inserts a grant; the caller must hold the write lock.
func (s *EntitlementStore) createLocked(e entitlement.Entitlement) error {
	if s.hasActiveLocked(e.UserID, e.CourseID, e.Scope, e.CreatedAt) {
		return ports.ErrDuplicateGrant
	}
	s.grants[e.ID] = e
	s.byUser[e.UserID] = append(s.byUser[e.UserID], e.ID)
	return nil
}

func (s *EntitlementStore) hasActiveLocked(userID, courseID string, scope entitlement.Scope, at time.Time) bool {
	for _, id := range s.byUser[userID] {
		e := s.grants[id]
		if e.CourseID == courseID && e.Scope == scope && e.IsActive(at) {
			return true
		}
	}
	return false
}

// All returns every grant (for testing).
func (s *EntitlementStore) All() []entitlement.Entitlement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entitlement.Entitlement, 0, len(s.grants))
	for _, e := range s.grants {
		result = append(result, e)
	}
	return result
}

// Ensure interface compliance.
var _ ports.EntitlementStore = (*EntitlementStore)(nil)
