// Package catalog provides course and lesson value types and pure functions.
// The catalog is read-mostly reference data; authoring happens in an external
// admin surface and this core only reads it.
package catalog

import (
	"sort"
	"time"
)

// Kind discriminates the two levels of the catalog hierarchy.
type Kind string

const (
	KindBundle Kind = "bundle" // sellable as a whole, composed of modules
	KindModule Kind = "module" // individually purchasable unit of content
)

// Status represents the publication state of a course.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Course represents a catalog node (immutable value type).
// A bundle has no parent; a module's ParentID always references a bundle.
// The relation is two-level only, so no cycles are possible by construction.
type Course struct {
	ID              string
	Kind            Kind
	ParentID        string // set only for modules
	Title           string
	Description     string
	IndividualPrice int64 // cents, meaningful for modules
	BundlePrice     int64 // cents, meaningful for bundles
	Currency        string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsBundle reports whether the course is a bundle.
func (c Course) IsBundle() bool { return c.Kind == KindBundle }

// IsModule reports whether the course is a module.
func (c Course) IsModule() bool { return c.Kind == KindModule }

// Lesson belongs to exactly one module (immutable value type).
type Lesson struct {
	ID          string
	ModuleID    string
	Title       string
	Order       int
	FreePreview bool
	CreatedAt   time.Time
}

// ModulesOf returns the modules whose ParentID references the bundle.
// Archived modules are excluded unless includeArchived is set.
// This is a PURE function.
func ModulesOf(courses []Course, bundleID string, includeArchived bool) []Course {
	var result []Course
	for _, c := range courses {
		if c.Kind != KindModule || c.ParentID != bundleID {
			continue
		}
		if c.Status == StatusArchived && !includeArchived {
			continue
		}
		result = append(result, c)
	}
	return result
}

// FindCourse finds a course by ID in a list.
// This is a PURE function.
func FindCourse(courses []Course, id string) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// FindLesson finds a lesson by ID in a list.
// This is a PURE function.
func FindLesson(lessons []Lesson, id string) (Lesson, bool) {
	for _, l := range lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// SortLessons returns the lessons sorted by their Order field.
// The input slice is not modified. This is a PURE function.
func SortLessons(lessons []Lesson) []Lesson {
	sorted := make([]Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// PreviewLessons returns only free-preview lessons, sorted by Order.
// This is a PURE function.
func PreviewLessons(lessons []Lesson) []Lesson {
	var previews []Lesson
	for _, l := range lessons {
		if l.FreePreview {
			previews = append(previews, l)
		}
	}
	return SortLessons(previews)
}

// ModuleIDs extracts the IDs from a list of courses.
// This is a PURE function.
func ModuleIDs(courses []Course) []string {
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	return ids
}
