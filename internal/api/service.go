// Package api exposes the runtime operations behind a uniform result
// shape, shared by every caller surface.
package api

import (
	"context"
	"errors"

	"github.com/jhytabest/plashboard/internal/models"
	"github.com/jhytabest/plashboard/internal/runtime"
)

// Result is the uniform operation outcome.
type Result struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
	Data   any      `json:"data,omitempty"`
}

func ok(data any) Result {
	return Result{OK: true, Errors: []string{}, Data: data}
}

func fail(err error) Result {
	var ve *runtime.ValidationError
	if errors.As(err, &ve) {
		return Result{OK: false, Errors: ve.Errors}
	}
	return Result{OK: false, Errors: []string{err.Error()}}
}

// Service wraps a runtime.
type Service struct {
	rt *runtime.Runtime
}

// NewService creates the API service.
func NewService(rt *runtime.Runtime) *Service {
	return &Service{rt: rt}
}

// TemplateList returns all templates.
func (s *Service) TemplateList() Result {
	templates, err := s.rt.ListTemplates()
	if err != nil {
		return fail(err)
	}
	return ok(templates)
}

// TemplateGet returns one template.
func (s *Service) TemplateGet(id string) Result {
	tpl, err := s.rt.GetTemplate(id)
	if err != nil {
		return fail(err)
	}
	return ok(tpl)
}

// TemplateCreate validates and stores a new template.
func (s *Service) TemplateCreate(ctx context.Context, tpl *models.Template) Result {
	if err := s.rt.CreateTemplate(ctx, tpl); err != nil {
		return fail(err)
	}
	return ok(tpl)
}

// TemplateUpdate validates and replaces an existing template.
func (s *Service) TemplateUpdate(ctx context.Context, tpl *models.Template) Result {
	if err := s.rt.UpdateTemplate(ctx, tpl); err != nil {
		return fail(err)
	}
	return ok(tpl)
}

// TemplateDelete removes a template, reassigning the active pointer when
// needed.
func (s *Service) TemplateDelete(id string) Result {
	if err := s.rt.DeleteTemplate(id); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// TemplateCopy deep-clones a template under a new id.
func (s *Service) TemplateCopy(ctx context.Context, srcID, dstID, newName string, activate bool) Result {
	clone, err := s.rt.CopyTemplate(ctx, srcID, dstID, newName, activate)
	if err != nil {
		return fail(err)
	}
	return ok(clone)
}

// TemplateActivate changes the active pointer without triggering a run.
func (s *Service) TemplateActivate(id string) Result {
	if err := s.rt.ActivateTemplate(id); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// RunNow executes a template immediately, bypassing the due-time gate.
func (s *Service) RunNow(ctx context.Context, id string) Result {
	artifact, err := s.rt.RunNow(ctx, id)
	if err != nil {
		if artifact != nil {
			// The rejection artifact explains why the run did not start.
			return Result{OK: false, Errors: artifact.Errors, Data: artifact}
		}
		return fail(err)
	}
	if artifact.Status != models.RunStatusSuccess {
		return Result{OK: false, Errors: artifact.Errors, Data: artifact}
	}
	return ok(artifact)
}

// DisplayProfileSet applies a partial profile update.
func (s *Service) DisplayProfileSet(patch models.DisplayProfilePatch) Result {
	profile, err := s.rt.SetDisplayProfile(patch)
	if err != nil {
		return fail(err)
	}
	return ok(profile)
}

// Status reports the runtime status snapshot.
func (s *Service) Status() Result {
	status, err := s.rt.CurrentStatus()
	if err != nil {
		return fail(err)
	}
	return ok(status)
}

// Runs returns the latest run artifacts for a template.
func (s *Service) Runs(id string, n int) Result {
	artifacts, err := s.rt.LatestRuns(id, n)
	if err != nil {
		return fail(err)
	}
	return ok(artifacts)
}
