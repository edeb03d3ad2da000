package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/openlearn/coursegate/domain/catalog"
	"gopkg.in/yaml.v3"
)

// Seed file shapes. Bundles nest their modules; standalone modules sit at
// the top level with no parent.
type seedFile struct {
	Bundles []seedBundle `yaml:"bundles"`
	Modules []seedModule `yaml:"modules"`
}

type seedBundle struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	BundlePrice int64        `yaml:"bundle_price"`
	Currency    string       `yaml:"currency"`
	Status      string       `yaml:"status"`
	Modules     []seedModule `yaml:"modules"`
}

type seedModule struct {
	ID              string       `yaml:"id"`
	Title           string       `yaml:"title"`
	Description     string       `yaml:"description"`
	IndividualPrice int64        `yaml:"individual_price"`
	Currency        string       `yaml:"currency"`
	Status          string       `yaml:"status"`
	Lessons         []seedLesson `yaml:"lessons"`
}

type seedLesson struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Order       int    `yaml:"order"`
	FreePreview bool   `yaml:"free_preview"`
}

// Seed loads a YAML catalog file into the course and lesson stores.
func (a *App) Seed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	now := a.nowUTC()
	var courses, lessons int

	for _, b := range seed.Bundles {
		bundle := catalog.Course{
			ID:          b.ID,
			Kind:        catalog.KindBundle,
			Title:       b.Title,
			Description: b.Description,
			BundlePrice: b.BundlePrice,
			Currency:    defaultCurrency(b.Currency),
			Status:      seedStatus(b.Status),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := a.Courses.Create(ctx, bundle); err != nil {
			return fmt.Errorf("create bundle %s: %w", b.ID, err)
		}
		courses++

		for _, m := range b.Modules {
			n, err := a.seedModule(ctx, m, b.ID, bundle.Currency)
			if err != nil {
				return err
			}
			courses++
			lessons += n
		}
	}

	for _, m := range seed.Modules {
		n, err := a.seedModule(ctx, m, "", defaultCurrency(m.Currency))
		if err != nil {
			return err
		}
		courses++
		lessons += n
	}

	a.Logger.Info().
		Int("courses", courses).
		Int("lessons", lessons).
		Str("path", path).
		Msg("catalog seeded")
	return nil
}

func (a *App) seedModule(ctx context.Context, m seedModule, parentID, currency string) (int, error) {
	if m.Currency != "" {
		currency = m.Currency
	}
	now := a.nowUTC()

	module := catalog.Course{
		ID:              m.ID,
		Kind:            catalog.KindModule,
		ParentID:        parentID,
		Title:           m.Title,
		Description:     m.Description,
		IndividualPrice: m.IndividualPrice,
		Currency:        defaultCurrency(currency),
		Status:          seedStatus(m.Status),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.Courses.Create(ctx, module); err != nil {
		return 0, fmt.Errorf("create module %s: %w", m.ID, err)
	}

	for _, l := range m.Lessons {
		lesson := catalog.Lesson{
			ID:          l.ID,
			ModuleID:    m.ID,
			Title:       l.Title,
			Order:       l.Order,
			FreePreview: l.FreePreview,
			CreatedAt:   now,
		}
		if err := a.Lessons.Create(ctx, lesson); err != nil {
			return 0, fmt.Errorf("create lesson %s: %w", l.ID, err)
		}
	}
	return len(m.Lessons), nil
}

func defaultCurrency(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}

func seedStatus(s string) catalog.Status {
	switch s {
	case "draft":
		return catalog.StatusDraft
	case "archived":
		return catalog.StatusArchived
	default:
		return catalog.StatusActive
	}
}
