// Package memory provides in-memory implementations of storage ports.
// They back unit tests and the "memory" database driver for local runs.
package memory

import (
	"context"
	"sync"

	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/ports"
)

// CourseStore is an in-memory implementation of ports.CourseStore.
type CourseStore struct {
	mu      sync.RWMutex
	courses map[string]catalog.Course
	order   []string // insertion order for deterministic listings
}

// NewCourseStore creates a new in-memory course store.
func NewCourseStore() *CourseStore {
	return &CourseStore{courses: make(map[string]catalog.Course)}
}

// Get retrieves a course by ID.
func (s *CourseStore) Get(ctx context.Context, id string) (catalog.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return catalog.Course{}, ports.ErrNotFound
	}
	return c, nil
}

// ListModules returns the modules under a bundle.
func (s *CourseStore) ListModules(ctx context.Context, bundleID string, includeArchived bool) ([]catalog.Course, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ModulesOf(all, bundleID, includeArchived), nil
}

// List returns all courses in insertion order.
func (s *CourseStore) List(ctx context.Context) ([]catalog.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Course, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.courses[id])
	}
	return result, nil
}

// Create stores a new course.
func (s *CourseStore) Create(ctx context.Context, c catalog.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.courses[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.courses[c.ID] = c
	return nil
}

// Ensure interface compliance.
var _ ports.CourseStore = (*CourseStore)(nil)
