// Package publish validates merged documents against the external writer
// and atomically replaces the live dashboard artifact through it.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhytabest/plashboard/internal/logging"
	"github.com/jhytabest/plashboard/internal/models"
	"github.com/jhytabest/plashboard/internal/store"
)

// minWriterTimeout is the floor for writer invocations regardless of the
// configured session timeout.
const minWriterTimeout = 15 * time.Second

// Writer-specific environment variables derived from the display profile
// and the configured overflow tolerance.
const (
	envViewportHeight    = "PLASH_TARGET_VIEWPORT_HEIGHT"
	envSafetyMargin      = "PLASH_LAYOUT_SAFETY_MARGIN"
	envOverflowTolerance = "PLASH_LAYOUT_OVERFLOW_TOLERANCE"
	envFrameTop          = "PLASH_FRAME_TOP"
	envFrameBottom       = "PLASH_FRAME_BOTTOM"
)

// Publisher invokes the out-of-process writer in validate-only or publish
// mode. The writer owns the atomic rename into the live path.
type Publisher struct {
	PythonBin           string
	WriterScript        string
	LivePath            string
	SessionTimeout      time.Duration
	OverflowTolerancePx int

	logger zerolog.Logger
}

// New creates a publisher for the given writer and live artifact path.
func New(pythonBin, writerScript, livePath string, sessionTimeout time.Duration, overflowTolerancePx int) *Publisher {
	return &Publisher{
		PythonBin:           pythonBin,
		WriterScript:        writerScript,
		LivePath:            livePath,
		SessionTimeout:      sessionTimeout,
		OverflowTolerancePx: overflowTolerancePx,
		logger:              logging.Component("publish"),
	}
}

// ValidateOnly runs the writer's contract and layout-budget checks without
// touching the live artifact.
func (p *Publisher) ValidateOnly(ctx context.Context, payload map[string]any, profile models.DisplayProfile) error {
	return p.invoke(ctx, payload, profile, true)
}

// Publish validates and atomically replaces the live artifact.
func (p *Publisher) Publish(ctx context.Context, payload map[string]any, profile models.DisplayProfile) error {
	return p.invoke(ctx, payload, profile, false)
}

func (p *Publisher) invoke(ctx context.Context, payload map[string]any, profile models.DisplayProfile, validateOnly bool) error {
	// The temp directory sits next to the live path so the writer's
	// rename stays on one filesystem.
	liveDir := filepath.Dir(p.LivePath)
	if err := os.MkdirAll(liveDir, 0o755); err != nil {
		return models.WrapPipelineError(models.KindIoError, err, "failed to create output directory")
	}
	tmpDir, err := os.MkdirTemp(liveDir, ".plashboard-writer-")
	if err != nil {
		return models.WrapPipelineError(models.KindIoError, err, "failed to create writer temp directory")
	}
	defer os.RemoveAll(tmpDir)

	inputPath := filepath.Join(tmpDir, "payload.json")
	data, err := store.EncodeJSON(payload)
	if err != nil {
		return models.WrapPipelineError(models.KindIoError, err, "failed to encode payload")
	}
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		return models.WrapPipelineError(models.KindIoError, err, "failed to write payload")
	}

	args := []string{p.WriterScript, "--input", inputPath}
	if validateOnly {
		args = append(args, "--validate-only")
	} else {
		args = append(args, "--output", p.LivePath)
	}

	timeout := p.SessionTimeout
	if timeout < minWriterTimeout {
		timeout = minWriterTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.PythonBin, args...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%s", envViewportHeight, strconv.Itoa(profile.HeightPx)),
		fmt.Sprintf("%s=%s", envSafetyMargin, strconv.Itoa(profile.LayoutSafetyMarginPx)),
		fmt.Sprintf("%s=%s", envOverflowTolerance, strconv.Itoa(p.OverflowTolerancePx)),
		fmt.Sprintf("%s=%s", envFrameTop, strconv.Itoa(profile.SafeTopPx)),
		fmt.Sprintf("%s=%s", envFrameBottom, strconv.Itoa(profile.SafeBottomPx)),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	p.logger.Debug().
		Bool("validate_only", validateOnly).
		Dur("duration", time.Since(start)).
		Msg("writer finished")

	if runCtx.Err() == context.DeadlineExceeded {
		return models.NewPipelineError(models.KindIoError, "writer timed out after %s", timeout)
	}
	if err != nil {
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return models.WrapPipelineError(models.KindIoError, err, "failed to run writer")
		}
		if strings.Contains(strings.ToLower(reason), "layout") {
			return models.NewPipelineError(models.KindLayoutBudget, "writer rejected layout: %s", reason)
		}
		return models.NewPipelineError(models.KindSchemaInvalid, "writer rejected payload: %s", reason)
	}

	return nil
}
