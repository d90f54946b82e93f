package fill

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhytabest/plashboard/internal/logging"
	"github.com/jhytabest/plashboard/internal/models"
)

// PromptEnvVar carries the serialized prompt to the external command.
const PromptEnvVar = "PLASHBOARD_PROMPT_JSON"

// CommandRunner spawns a shell command that prints a fill response on
// stdout. The prompt is delivered through PLASHBOARD_PROMPT_JSON.
type CommandRunner struct {
	Command string
	Timeout time.Duration

	// Allowed gates execution; when false the runner fails cleanly
	// without spawning anything.
	Allowed bool

	logger zerolog.Logger
}

// NewCommandRunner creates a command provider.
func NewCommandRunner(command string, timeout time.Duration, allowed bool) *CommandRunner {
	return &CommandRunner{
		Command: command,
		Timeout: timeout,
		Allowed: allowed,
		logger:  logging.Component("fill.command"),
	}
}

// Name implements Runner.
func (c *CommandRunner) Name() string { return "command" }

// Run implements Runner.
func (c *CommandRunner) Run(ctx context.Context, fc models.FillContext) (*models.FillResponse, error) {
	if !c.Allowed {
		return nil, models.NewPipelineError(models.KindConfigInvalid, "command fill provider is disabled; enable allow_fill_command")
	}
	if strings.TrimSpace(c.Command) == "" {
		return nil, models.NewPipelineError(models.KindConfigInvalid, "fill_command is not configured")
	}

	prompt, err := BuildPrompt(fc)
	if err != nil {
		return nil, models.WrapPipelineError(models.KindFillProviderError, err, "command provider")
	}

	runCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-lc", c.Command)
	cmd.Env = append(os.Environ(), PromptEnvVar+"="+prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	c.logger.Debug().
		Str("template_id", fc.Template.ID).
		Int("attempt", fc.Attempt).
		Dur("duration", time.Since(start)).
		Msg("fill command finished")

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, models.NewPipelineError(models.KindFillProviderError, "fill command timed out after %s", c.Timeout)
	}
	if err != nil {
		return nil, models.WrapPipelineError(models.KindFillProviderError, err, "fill command failed: %s", firstLine(stderr.String()))
	}

	return ParseResponse(c.Name(), stdout.String())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
