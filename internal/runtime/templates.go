package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhytabest/plashboard/internal/merge"
	"github.com/jhytabest/plashboard/internal/models"
	"github.com/jhytabest/plashboard/internal/schema"
)

// ValidationError aggregates template validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// ListTemplates returns all templates sorted by id.
func (r *Runtime) ListTemplates() ([]*models.Template, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.templates.List()
}

// GetTemplate returns a template or ErrTemplateNotFound.
func (r *Runtime) GetTemplate(id string) (*models.Template, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	tpl, err := r.templates.Get(id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, id)
	}
	return tpl, nil
}

// validateTemplate runs the acceptance gates in order: shape, structural
// checks, field pointers, and whole-document publishability. The skeleton
// must already satisfy the external writer before the template is accepted.
func (r *Runtime) validateTemplate(ctx context.Context, tpl *models.Template) error {
	doc := map[string]any{}
	raw, err := json.Marshal(tpl)
	if err != nil {
		return &ValidationError{Errors: []string{err.Error()}}
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Errors: []string{err.Error()}}
	}
	if errs := schema.ValidateTemplate(doc); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	if err := tpl.Validate(); err != nil {
		return &ValidationError{Errors: []string{err.Error()}}
	}
	if err := merge.ValidateFieldPointers(tpl); err != nil {
		return &ValidationError{Errors: []string{err.Error()}}
	}

	if err := r.publisher.ValidateOnly(ctx, tpl.BaseDashboard, r.effectiveProfile()); err != nil {
		return &ValidationError{Errors: []string{fmt.Sprintf("base document is not publishable: %v", err)}}
	}
	return nil
}

// CreateTemplate validates and stores a new template. When no template is
// active, the created template becomes active.
func (r *Runtime) CreateTemplate(ctx context.Context, tpl *models.Template) error {
	if err := r.Init(); err != nil {
		return err
	}
	if err := r.validateTemplate(ctx, tpl); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.templates.Get(tpl.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", models.ErrTemplateConflict, tpl.ID)
	}

	if err := r.templates.Upsert(tpl); err != nil {
		return err
	}

	if r.state.ActiveTemplateID == "" {
		if err := r.mutateStateLocked(func(s *models.State) {
			s.ActiveTemplateID = tpl.ID
		}); err != nil {
			return err
		}
	}

	r.logger.Info().Str("template_id", tpl.ID).Msg("template created")
	return nil
}

// UpdateTemplate validates and replaces an existing template.
func (r *Runtime) UpdateTemplate(ctx context.Context, tpl *models.Template) error {
	if err := r.Init(); err != nil {
		return err
	}
	if _, err := r.GetTemplate(tpl.ID); err != nil {
		return err
	}
	if err := r.validateTemplate(ctx, tpl); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.templates.Upsert(tpl); err != nil {
		return err
	}
	r.logger.Info().Str("template_id", tpl.ID).Msg("template updated")
	return nil
}

// DeleteTemplate removes a template. When the active template is deleted,
// the first remaining template in id order becomes active, or none.
func (r *Runtime) DeleteTemplate(id string) error {
	if err := r.Init(); err != nil {
		return err
	}
	if _, err := r.GetTemplate(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.templates.Remove(id); err != nil {
		return err
	}

	if err := r.mutateStateLocked(func(s *models.State) {
		delete(s.TemplateRuns, id)
		if s.ActiveTemplateID != id {
			return
		}
		s.ActiveTemplateID = ""
	}); err != nil {
		return err
	}

	if r.state.ActiveTemplateID == "" {
		remaining, err := r.templates.List()
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			if err := r.mutateStateLocked(func(s *models.State) {
				s.ActiveTemplateID = remaining[0].ID
			}); err != nil {
				return err
			}
		}
	}

	r.logger.Info().Str("template_id", id).Msg("template deleted")
	return nil
}

// CopyTemplate deep-clones a template under a new id.
func (r *Runtime) CopyTemplate(ctx context.Context, srcID, dstID, newName string, activate bool) (*models.Template, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}

	if err := models.ValidateID(dstID); err != nil {
		return nil, &ValidationError{Errors: []string{err.Error()}}
	}

	src, err := r.GetTemplate(srcID)
	if err != nil {
		return nil, err
	}

	clone, err := src.Clone()
	if err != nil {
		return nil, err
	}
	clone.ID = dstID
	if newName != "" {
		clone.Name = newName
	} else {
		clone.Name = src.Name + " Copy"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.templates.Get(dstID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateConflict, dstID)
	}

	if err := r.templates.Upsert(clone); err != nil {
		return nil, err
	}

	if activate || r.state.ActiveTemplateID == "" {
		if err := r.mutateStateLocked(func(s *models.State) {
			s.ActiveTemplateID = clone.ID
		}); err != nil {
			return nil, err
		}
	}

	r.logger.Info().Str("src", srcID).Str("dst", dstID).Msg("template copied")
	return clone, nil
}

// ActivateTemplate changes the active pointer. It does not trigger a run;
// the next tick or an explicit run-now picks the change up.
func (r *Runtime) ActivateTemplate(id string) error {
	if err := r.Init(); err != nil {
		return err
	}
	if _, err := r.GetTemplate(id); err != nil {
		return err
	}
	return r.mutateState(func(s *models.State) {
		s.ActiveTemplateID = id
	})
}

// SetDisplayProfile merges a partial profile update over the effective
// profile and persists the result into runtime state.
func (r *Runtime) SetDisplayProfile(patch models.DisplayProfilePatch) (models.DisplayProfile, error) {
	if err := r.Init(); err != nil {
		return models.DisplayProfile{}, err
	}

	merged := r.effectiveProfile().Merge(patch)
	if err := r.mutateState(func(s *models.State) {
		p := merged
		s.DisplayProfile = &p
	}); err != nil {
		return models.DisplayProfile{}, err
	}
	return merged, nil
}

// Status is the runtime status snapshot.
type Status struct {
	ActiveTemplateID string        `json:"active_template_id,omitempty"`
	TemplateCount    int           `json:"template_count"`
	EnabledCount     int           `json:"enabled_count"`
	InFlight         []string      `json:"in_flight"`
	State            *models.State `json:"state"`
}

// CurrentStatus reports active template, counts, in-flight runs, and the
// current state snapshot.
func (r *Runtime) CurrentStatus() (*Status, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}

	templates, err := r.templates.List()
	if err != nil {
		return nil, err
	}
	state, err := r.snapshotState()
	if err != nil {
		return nil, err
	}

	enabled := 0
	for _, tpl := range templates {
		if tpl.Enabled {
			enabled++
		}
	}

	return &Status{
		ActiveTemplateID: state.ActiveTemplateID,
		TemplateCount:    len(templates),
		EnabledCount:     enabled,
		InFlight:         r.InFlight(),
		State:            state,
	}, nil
}

// LatestRuns returns the most recent run artifacts for a template.
func (r *Runtime) LatestRuns(templateID string, n int) ([]*models.RunArtifact, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.runs.Latest(templateID, n)
}
