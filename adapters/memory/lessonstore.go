package memory

import (
	"context"
	"sync"

	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/ports"
)

// LessonStore is an in-memory implementation of ports.LessonStore.
type LessonStore struct {
	mu       sync.RWMutex
	byModule map[string][]catalog.Lesson
}

// NewLessonStore creates a new in-memory lesson store.
func NewLessonStore() *LessonStore {
	return &LessonStore{byModule: make(map[string][]catalog.Lesson)}
}

// ListByModule returns a module's lessons ordered by their Order field.
func (s *LessonStore) ListByModule(ctx context.Context, moduleID string) ([]catalog.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.SortLessons(s.byModule[moduleID]), nil
}

// Create stores a new lesson.
func (s *LessonStore) Create(ctx context.Context, l catalog.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byModule[l.ModuleID] = append(s.byModule[l.ModuleID], l)
	return nil
}

// Ensure interface compliance.
var _ ports.LessonStore = (*LessonStore)(nil)
