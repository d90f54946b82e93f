package models

import "time"

// RunTrigger identifies what started a run.
type RunTrigger string

const (
	RunTriggerSchedule RunTrigger = "schedule"
	RunTriggerManual   RunTrigger = "manual"
)

// RunArtifact is the immutable record of one pipeline run.
type RunArtifact struct {
	ID           string     `json:"id"`
	TemplateID   string     `json:"template_id"`
	Trigger      RunTrigger `json:"trigger"`
	Status       RunStatus  `json:"status"`
	StartedAt    string     `json:"started_at"`
	FinishedAt   string     `json:"finished_at"`
	DurationMS   int64      `json:"duration_ms"`
	AttemptCount int        `json:"attempt_count"`
	Published    bool       `json:"published"`
	Errors       []string   `json:"errors"`
	FillResponse any        `json:"fill_response,omitempty"`
}

// TimestampLayout is the wire format for run and state timestamps.
const TimestampLayout = "2006-01-02T15:04:05Z"

// FormatTimestamp renders a time in the ISO-8601 UTC wire format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a wire-format timestamp. It also accepts full
// RFC 3339 for state files written by other tooling.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
