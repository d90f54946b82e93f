package fill

import (
	"encoding/json"
	"fmt"

	"github.com/jhytabest/plashboard/internal/models"
)

const promptInstructions = "Produce updated values for the dashboard fields below. " +
	"Respond with a single JSON object of the form {\"values\": {\"<field_id>\": <value>, ...}}. " +
	"Use only the listed field ids, respect each field's declared type and constraints, " +
	"and omit optional fields you cannot fill."

// promptPayload is the deterministic JSON object handed to external
// providers. Field order follows the struct definition.
type promptPayload struct {
	Instructions string           `json:"instructions"`
	Template     promptTemplate   `json:"template"`
	Fields       []promptField    `json:"fields"`
	Schema       promptRespSchema `json:"expected_response_schema"`
	ErrorHint    string           `json:"error_hint,omitempty"`
}

type promptTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Context string `json:"context,omitempty"`
}

type promptField struct {
	ID           string              `json:"id"`
	Type         models.FieldType    `json:"type"`
	Prompt       string              `json:"prompt"`
	Required     bool                `json:"required"`
	Constraints  *models.Constraints `json:"constraints,omitempty"`
	CurrentValue any                 `json:"current_value"`
}

type promptRespSchema struct {
	Type       string         `json:"type"`
	Required   []string       `json:"required"`
	Properties map[string]any `json:"properties"`
}

// BuildPrompt serializes the fill context into the provider prompt.
func BuildPrompt(fc models.FillContext) (string, error) {
	payload := promptPayload{
		Instructions: promptInstructions,
		Template: promptTemplate{
			ID:      fc.Template.ID,
			Name:    fc.Template.Name,
			Context: fc.Template.Context,
		},
		Fields: make([]promptField, 0, len(fc.Template.Fields)),
		Schema: promptRespSchema{
			Type:     "object",
			Required: []string{"values"},
			Properties: map[string]any{
				"values": map[string]any{"type": "object"},
			},
		},
		ErrorHint: fc.ErrorHint,
	}

	for _, field := range fc.Template.Fields {
		payload.Fields = append(payload.Fields, promptField{
			ID:           field.ID,
			Type:         field.Type,
			Prompt:       field.Prompt,
			Required:     field.IsRequired(),
			Constraints:  field.Constraints,
			CurrentValue: fc.CurrentValues[field.ID],
		})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize fill prompt: %w", err)
	}
	return string(raw), nil
}
