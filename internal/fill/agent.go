package fill

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhytabest/plashboard/internal/logging"
	"github.com/jhytabest/plashboard/internal/models"
)

// agentTimeoutSlack is added on top of the agent's own timeout so the
// outer kill only fires when the binary fails to honor --timeout itself.
const agentTimeoutSlack = 30 * time.Second

// AgentRunner asks an external agent for field values.
type AgentRunner struct {
	Bin     string
	AgentID string
	Timeout time.Duration

	logger zerolog.Logger
}

// NewAgentRunner creates an agent provider.
func NewAgentRunner(bin, agentID string, timeout time.Duration) *AgentRunner {
	return &AgentRunner{
		Bin:     bin,
		AgentID: agentID,
		Timeout: timeout,
		logger:  logging.Component("fill.agent"),
	}
}

// Name implements Runner.
func (a *AgentRunner) Name() string { return "agent" }

// Run implements Runner.
func (a *AgentRunner) Run(ctx context.Context, fc models.FillContext) (*models.FillResponse, error) {
	prompt, err := BuildPrompt(fc)
	if err != nil {
		return nil, models.WrapPipelineError(models.KindFillProviderError, err, "agent provider")
	}

	seconds := int(a.Timeout / time.Second)
	message := fmt.Sprintf("Fill the dashboard template described by this JSON payload and reply with the requested JSON object only.\n\n%s", prompt)

	runCtx, cancel := context.WithTimeout(ctx, a.Timeout+agentTimeoutSlack)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.Bin,
		"--agent", a.AgentID,
		"--message", message,
		"--json",
		"--timeout", strconv.Itoa(seconds),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	a.logger.Debug().
		Str("template_id", fc.Template.ID).
		Str("agent_id", a.AgentID).
		Int("attempt", fc.Attempt).
		Dur("duration", time.Since(start)).
		Msg("agent fill finished")

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, models.NewPipelineError(models.KindFillProviderError, "agent call timed out after %s", a.Timeout+agentTimeoutSlack)
	}
	if err != nil {
		return nil, models.WrapPipelineError(models.KindFillProviderError, err, "agent call failed: %s", firstLine(stderr.String()))
	}

	return ParseResponse(a.Name(), stdout.String())
}
