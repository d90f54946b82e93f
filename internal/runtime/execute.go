package runtime

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhytabest/plashboard/internal/merge"
	"github.com/jhytabest/plashboard/internal/models"
	"github.com/jhytabest/plashboard/internal/schema"
	"github.com/jhytabest/plashboard/internal/store"
)

// executeRun drives one run through the pipeline: fill, merge, validate,
// snapshot, publish when active, with the retry and repair policy from the
// template's run parameters. Exactly one run artifact is written.
func (r *Runtime) executeRun(ctx context.Context, tpl *models.Template, trigger models.RunTrigger) *models.RunArtifact {
	start := r.now()
	artifact := &models.RunArtifact{
		ID:         uuid.NewString(),
		TemplateID: tpl.ID,
		Trigger:    trigger,
		StartedAt:  models.FormatTimestamp(start),
		Errors:     []string{},
	}

	logger := r.logger.With().
		Str("template_id", tpl.ID).
		Str("trigger", string(trigger)).
		Str("run_id", artifact.ID).
		Logger()
	logger.Info().Msg("run started")

	// The attempt is recorded before any work so a crash mid-run still
	// moves the template's due time forward.
	if err := r.mutateState(func(s *models.State) {
		s.RunStateFor(tpl.ID).LastAttemptAt = artifact.StartedAt
	}); err != nil {
		logger.Error().Err(err).Msg("failed to record attempt")
		artifact.Errors = append(artifact.Errors, err.Error())
	}

	retryCount := r.cfg.DefaultRetryCount
	repairAttempts := 1
	if tpl.Run != nil {
		if tpl.Run.RetryCount != nil {
			retryCount = *tpl.Run.RetryCount
		}
		if tpl.Run.RepairAttempts != nil {
			repairAttempts = *tpl.Run.RepairAttempts
		}
	}
	if retryCount < 0 {
		retryCount = 0
	}
	if repairAttempts < 0 {
		repairAttempts = 0
	}

	outcomeErr := r.runAttempts(ctx, tpl, artifact, retryCount, repairAttempts, &logger)

	end := r.now()
	artifact.FinishedAt = models.FormatTimestamp(end)
	artifact.DurationMS = end.Sub(start).Milliseconds()

	if outcomeErr == nil {
		artifact.Status = models.RunStatusSuccess
		if err := r.mutateState(func(s *models.State) {
			rs := s.RunStateFor(tpl.ID)
			rs.LastSuccessAt = artifact.FinishedAt
			rs.LastStatus = models.RunStatusSuccess
			rs.LastError = ""
		}); err != nil {
			logger.Error().Err(err).Msg("failed to record success")
		}
		logger.Info().
			Int("attempts", artifact.AttemptCount).
			Bool("published", artifact.Published).
			Msg("run succeeded")
	} else {
		artifact.Status = models.RunStatusFailed
		if err := r.mutateState(func(s *models.State) {
			rs := s.RunStateFor(tpl.ID)
			rs.LastStatus = models.RunStatusFailed
			rs.LastError = outcomeErr.Error()
		}); err != nil {
			logger.Error().Err(err).Msg("failed to record failure")
		}
		logger.Warn().
			Int("attempts", artifact.AttemptCount).
			Str("error", outcomeErr.Error()).
			Msg("run failed")
	}

	if err := r.runs.Write(artifact); err != nil {
		logger.Error().Err(err).Msg("failed to write run artifact")
	}

	return artifact
}

// runAttempts executes the retry loop. Each attempt may loop through
// repair iterations that re-invoke the fill runner with the previous
// failure as a hint; repairs do not consume retries.
func (r *Runtime) runAttempts(ctx context.Context, tpl *models.Template, artifact *models.RunArtifact, retryCount, repairAttempts int, logger *zerolog.Logger) error {
	currentValues, err := merge.CollectCurrentValues(tpl)
	if err != nil {
		artifact.AttemptCount = 1
		artifact.Errors = append(artifact.Errors, err.Error())
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= retryCount; attempt++ {
		artifact.AttemptCount++

		errorHint := ""
		for repair := 0; repair <= repairAttempts; repair++ {
			err := r.fillOnce(ctx, tpl, artifact, currentValues, attempt, errorHint)
			if err == nil {
				return nil
			}

			lastErr = err
			artifact.Errors = append(artifact.Errors, err.Error())
			logger.Warn().
				Int("attempt", attempt).
				Int("repair", repair).
				Str("kind", string(models.KindOf(err))).
				Str("error", err.Error()).
				Msg("fill iteration failed")

			if repair < repairAttempts {
				errorHint = err.Error()
			}
		}

		if attempt < retryCount {
			backoff := time.Duration(r.cfg.RetryBackoffSeconds) * time.Second
			logger.Debug().Dur("backoff", backoff).Msg("retrying after backoff")
			r.sleep(ctx, backoff)
		}
	}

	return lastErr
}

// fillOnce performs one fill-merge-validate-publish pass.
func (r *Runtime) fillOnce(ctx context.Context, tpl *models.Template, artifact *models.RunArtifact, currentValues map[string]any, attempt int, errorHint string) error {
	resp, err := r.runner.Run(ctx, models.FillContext{
		Template:      tpl,
		CurrentValues: currentValues,
		Attempt:       attempt,
		ErrorHint:     errorHint,
	})
	if err != nil {
		return err
	}

	if errs := schema.ValidateFillResponse(map[string]any{"values": resp.Values}); len(errs) > 0 {
		return models.NewPipelineError(models.KindFillShapeInvalid, "fill response invalid: %s", strings.Join(errs, "; "))
	}

	merged, err := merge.Merge(tpl, resp.Values)
	if err != nil {
		return err
	}

	profile := r.effectiveProfile()
	if err := r.publisher.ValidateOnly(ctx, merged, profile); err != nil {
		return err
	}

	paths := store.Paths{DataDir: r.cfg.DataDir}
	if err := store.WriteJSON(paths.RenderedFile(tpl.ID), merged); err != nil {
		return models.WrapPipelineError(models.KindIoError, err, "failed to write rendered snapshot")
	}

	// The active pointer is re-read immediately before publish so an
	// activation that happened mid-run is honored.
	state, err := r.snapshotState()
	if err != nil {
		return models.WrapPipelineError(models.KindIoError, err, "failed to reload state")
	}
	if state.ActiveTemplateID == tpl.ID {
		if err := r.publisher.Publish(ctx, merged, profile); err != nil {
			return err
		}
		artifact.Published = true
	}

	artifact.FillResponse = map[string]any{"values": resp.Values}
	return nil
}
