package runtime

import (
	"time"

	"github.com/jhytabest/plashboard/internal/models"
)

// BlockReason explains why a template was not scheduled this tick.
type BlockReason string

const (
	BlockReasonDisabled BlockReason = "disabled"
	BlockReasonInFlight BlockReason = "in_flight"
	BlockReasonNotDue   BlockReason = "not_due"
	BlockReasonCapacity BlockReason = "capacity"
)

// TickInput contains everything a scheduling decision needs.
type TickInput struct {
	Templates       []*models.Template
	State           *models.State
	InFlight        map[string]struct{}
	Now             time.Time
	MaxParallelRuns int
}

// TickResult lists templates to run and the block reason for the rest.
type TickResult struct {
	Due     []string
	Blocked map[string]BlockReason
}

// DecideTick performs one scheduling cycle. It is a pure function with no
// side effects: it only examines input and produces output, which keeps
// the due-time policy unit-testable without goroutines or clocks.
func DecideTick(input TickInput) TickResult {
	result := TickResult{
		Due:     make([]string, 0),
		Blocked: make(map[string]BlockReason),
	}

	maxParallel := input.MaxParallelRuns
	if maxParallel < 1 {
		maxParallel = 1
	}
	slots := maxParallel - len(input.InFlight)

	for _, tpl := range input.Templates {
		if !tpl.Enabled {
			result.Blocked[tpl.ID] = BlockReasonDisabled
			continue
		}
		if _, busy := input.InFlight[tpl.ID]; busy {
			result.Blocked[tpl.ID] = BlockReasonInFlight
			continue
		}

		if !isDue(tpl, input.State, input.Now) {
			result.Blocked[tpl.ID] = BlockReasonNotDue
			continue
		}

		if slots <= 0 {
			result.Blocked[tpl.ID] = BlockReasonCapacity
			continue
		}

		result.Due = append(result.Due, tpl.ID)
		slots--
	}

	return result
}

// isDue applies the due-time policy: a template with no parseable prior
// attempt is due immediately; otherwise it is due once every_minutes have
// elapsed since the newest of last_attempt_at and last_success_at.
func isDue(tpl *models.Template, state *models.State, now time.Time) bool {
	last, ok := lastAttempt(state, tpl.ID)
	if !ok {
		return true
	}
	interval := time.Duration(tpl.Schedule.EveryMinutes) * time.Minute
	return !now.Before(last.Add(interval))
}

// lastAttempt returns the newest of the template's recorded timestamps
// that parse successfully. ok is false when both are missing or invalid.
func lastAttempt(state *models.State, templateID string) (time.Time, bool) {
	if state == nil || state.TemplateRuns == nil {
		return time.Time{}, false
	}
	rs, present := state.TemplateRuns[templateID]
	if !present {
		return time.Time{}, false
	}

	var newest time.Time
	found := false
	for _, raw := range []string{rs.LastAttemptAt, rs.LastSuccessAt} {
		if raw == "" {
			continue
		}
		t, err := models.ParseTimestamp(raw)
		if err != nil {
			continue
		}
		if !found || t.After(newest) {
			newest = t
			found = true
		}
	}
	return newest, found
}
