package fill

import (
	"encoding/json"
	"strings"

	"github.com/jhytabest/plashboard/internal/models"
)

// maxExtractDepth caps the recursive envelope search.
const maxExtractDepth = 10

// ParseResponse extracts a fill response from provider stdout. Accepted
// shapes: a bare JSON object, the same wrapped in code fences, or a
// response embedded in a larger JSON envelope (including JSON encoded as a
// string, or nested inside arrays and objects).
func ParseResponse(provider, stdout string) (*models.FillResponse, error) {
	envelope, ok := findEnvelope(stdout, 0)
	if !ok {
		return nil, models.NewPipelineError(models.KindFillParseError, "provider %q produced no parseable {\"values\": ...} object", provider)
	}

	values, _ := envelope["values"].(map[string]any)
	return &models.FillResponse{Values: values}, nil
}

// findEnvelope walks a value looking for an object with a "values" object.
func findEnvelope(value any, depth int) (map[string]any, bool) {
	if depth > maxExtractDepth {
		return nil, false
	}

	switch v := value.(type) {
	case string:
		parsed, ok := parseLoose(v)
		if !ok {
			return nil, false
		}
		return findEnvelope(parsed, depth+1)
	case []any:
		for _, item := range v {
			if m, ok := findEnvelope(item, depth+1); ok {
				return m, true
			}
		}
	case map[string]any:
		if _, ok := v["values"].(map[string]any); ok {
			return v, true
		}
		for _, item := range v {
			if m, ok := findEnvelope(item, depth+1); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// parseLoose attempts to read a JSON value out of free-form text: directly,
// with code fences stripped, or from the first '{' to the last '}'.
func parseLoose(raw string) (any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		return value, true
	}

	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) >= 2 {
			inner := strings.Join(lines[1:len(lines)-1], "\n")
			if err := json.Unmarshal([]byte(strings.TrimSpace(inner)), &value); err == nil {
				return value, true
			}
			trimmed = strings.TrimSpace(inner)
		}
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &value); err == nil {
			return value, true
		}
	}

	return nil, false
}
