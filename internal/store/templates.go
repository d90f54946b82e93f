package store

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jhytabest/plashboard/internal/models"
)

// TemplateStore persists templates, one JSON file per template.
type TemplateStore struct {
	paths Paths
}

// NewTemplateStore creates a template store rooted at dataDir.
func NewTemplateStore(dataDir string) *TemplateStore {
	return &TemplateStore{paths: Paths{DataDir: dataDir}}
}

// List returns all templates sorted by id ascending. Activation fallback
// and deletion reassignment depend on this order being deterministic.
func (s *TemplateStore) List() ([]*models.Template, error) {
	entries, err := os.ReadDir(s.paths.TemplatesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Template{}, nil
		}
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make([]*models.Template, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		tpl, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		if tpl != nil {
			templates = append(templates, tpl)
		}
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

// Get returns the template or nil when it does not exist.
func (s *TemplateStore) Get(id string) (*models.Template, error) {
	tpl := &models.Template{}
	if err := ReadJSON(s.paths.TemplateFile(id), tpl); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load template %s: %w", id, err)
	}
	return tpl, nil
}

// Upsert writes the template atomically.
func (s *TemplateStore) Upsert(tpl *models.Template) error {
	if err := WriteJSON(s.paths.TemplateFile(tpl.ID), tpl); err != nil {
		return fmt.Errorf("failed to store template %s: %w", tpl.ID, err)
	}
	return nil
}

// Remove deletes the template file. Removing a missing template succeeds.
func (s *TemplateStore) Remove(id string) error {
	if err := os.Remove(s.paths.TemplateFile(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove template %s: %w", id, err)
	}
	return nil
}
