package fill

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhytabest/plashboard/internal/models"
)

func TestBuildPromptShape(t *testing.T) {
	tpl := mockTemplate()
	tpl.Context = "internal ops dashboard"

	prompt, err := BuildPrompt(models.FillContext{
		Template:      tpl,
		CurrentValues: map[string]any{"summary": "current"},
		Attempt:       1,
		ErrorHint:     "previous value was too long",
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(prompt), &decoded))

	require.Contains(t, decoded, "instructions")
	require.Contains(t, decoded, "expected_response_schema")
	require.Equal(t, "previous value was too long", decoded["error_hint"])

	template := decoded["template"].(map[string]any)
	require.Equal(t, "ops", template["id"])
	require.Equal(t, "internal ops dashboard", template["context"])

	fields := decoded["fields"].([]any)
	require.Len(t, fields, 4)
	first := fields[0].(map[string]any)
	require.Equal(t, "summary", first["id"])
	require.Equal(t, "string", first["type"])
	require.Equal(t, true, first["required"])
	require.Equal(t, "current", first["current_value"])
}

func TestBuildPromptDeterministic(t *testing.T) {
	fc := models.FillContext{
		Template:      mockTemplate(),
		CurrentValues: map[string]any{"summary": "s", "count": float64(1)},
	}

	a, err := BuildPrompt(fc)
	require.NoError(t, err)
	b, err := BuildPrompt(fc)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
