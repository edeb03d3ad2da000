package sqlite

import (
	"context"
	"database/sql"

	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/ports"
)

// LessonStore implements ports.LessonStore with SQLite.
type LessonStore struct {
	db *DB
}

// NewLessonStore creates a new SQLite lesson store.
func NewLessonStore(db *DB) *LessonStore {
	return &LessonStore{db: db}
}

// ListByModule returns a module's lessons ordered by their Order field.
func (s *LessonStore) ListByModule(ctx context.Context, moduleID string) ([]catalog.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, module_id, title, ord, free_preview, created_at
		FROM lessons
		WHERE module_id = ?
		ORDER BY ord
	`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLessons(rows)
}

// Create stores a new lesson.
func (s *LessonStore) Create(ctx context.Context, l catalog.Lesson) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lessons (id, module_id, title, ord, free_preview, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.ID, l.ModuleID, l.Title, l.Order, l.FreePreview, l.CreatedAt)
	return err
}

func scanLessons(rows *sql.Rows) ([]catalog.Lesson, error) {
	var lessons []catalog.Lesson
	for rows.Next() {
		var l catalog.Lesson
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Order, &l.FreePreview, &l.CreatedAt); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// Ensure interface compliance.
var _ ports.LessonStore = (*LessonStore)(nil)
