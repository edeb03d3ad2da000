package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openlearn/coursegate/domain/catalog"
	"github.com/openlearn/coursegate/ports"
)

// CourseStore implements ports.CourseStore with SQLite.
type CourseStore struct {
	db *DB
}

// NewCourseStore creates a new SQLite course store.
func NewCourseStore(db *DB) *CourseStore {
	return &CourseStore{db: db}
}

const courseColumns = `id, kind, COALESCE(parent_id, ''), title, description,
       individual_price, bundle_price, currency, status, created_at, updated_at`

// Get retrieves a course by ID.
func (s *CourseStore) Get(ctx context.Context, id string) (catalog.Course, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+courseColumns+`
		FROM courses WHERE id = ?
	`, id)

	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Course{}, ports.ErrNotFound
	}
	return c, err
}

// ListModules returns the modules under a bundle, ordered by title.
func (s *CourseStore) ListModules(ctx context.Context, bundleID string, includeArchived bool) ([]catalog.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE kind = 'module' AND parent_id = ?`
	if !includeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY title`

	rows, err := s.db.QueryContext(ctx, query, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCourses(rows)
}

// List returns all courses.
func (s *CourseStore) List(ctx context.Context) ([]catalog.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		ORDER BY kind, title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCourses(rows)
}

// Create stores a new course.
func (s *CourseStore) Create(ctx context.Context, c catalog.Course) error {
	var parentID any
	if c.ParentID != "" {
		parentID = c.ParentID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (id, kind, parent_id, title, description,
		                     individual_price, bundle_price, currency, status,
		                     created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Kind, parentID, c.Title, c.Description,
		c.IndividualPrice, c.BundlePrice, c.Currency, c.Status,
		c.CreatedAt, c.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (catalog.Course, error) {
	var c catalog.Course
	var kind, status string
	err := row.Scan(
		&c.ID, &kind, &c.ParentID, &c.Title, &c.Description,
		&c.IndividualPrice, &c.BundlePrice, &c.Currency, &status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	c.Kind = catalog.Kind(kind)
	c.Status = catalog.Status(status)
	return c, err
}

func scanCourses(rows *sql.Rows) ([]catalog.Course, error) {
	var courses []catalog.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Ensure interface compliance.
var _ ports.CourseStore = (*CourseStore)(nil)
