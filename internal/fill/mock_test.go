package fill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhytabest/plashboard/internal/models"
)

func mockTemplate() *models.Template {
	return &models.Template{
		ID:   "ops",
		Name: "Ops",
		Fields: []models.FieldSpec{
			{ID: "summary", Pointer: "/summary", Type: models.FieldTypeString, Prompt: "p"},
			{ID: "count", Pointer: "/count", Type: models.FieldTypeNumber, Prompt: "p"},
			{ID: "ok", Pointer: "/ok", Type: models.FieldTypeBoolean, Prompt: "p"},
			{ID: "items", Pointer: "/items", Type: models.FieldTypeArray, Prompt: "p"},
		},
	}
}

func TestMockRunnerEchoesCompatibleValues(t *testing.T) {
	runner := NewMockRunner()

	resp, err := runner.Run(context.Background(), models.FillContext{
		Template: mockTemplate(),
		CurrentValues: map[string]any{
			"summary": "current",
			"count":   float64(5),
			"ok":      true,
			"items":   []any{"x"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "current", resp.Values["summary"])
	require.Equal(t, float64(5), resp.Values["count"])
	require.Equal(t, true, resp.Values["ok"])
	require.Equal(t, []any{"x"}, resp.Values["items"])
}

func TestMockRunnerPlaceholders(t *testing.T) {
	runner := NewMockRunner()
	runner.Now = func() time.Time { return time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC) }

	resp, err := runner.Run(context.Background(), models.FillContext{
		Template: mockTemplate(),
		CurrentValues: map[string]any{
			"summary": "",          // empty string gets a synthetic value
			"count":   "not a num", // wrong type
			"ok":      nil,
			"items":   "not a list",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "mock fill 2026-08-05T12:00:00Z", resp.Values["summary"])
	require.Equal(t, 0, resp.Values["count"])
	require.Equal(t, false, resp.Values["ok"])
	require.Equal(t, []any{}, resp.Values["items"])
}
