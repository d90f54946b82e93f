package fill

import (
	"context"
	"fmt"
	"time"

	"github.com/jhytabest/plashboard/internal/models"
)

// MockRunner fills fields synchronously without any external process. It
// echoes the current value when type-compatible and falls back to a typed
// placeholder otherwise. It never fails.
type MockRunner struct {
	// Now is overridable for deterministic tests.
	Now func() time.Time
}

// NewMockRunner creates a mock provider.
func NewMockRunner() *MockRunner {
	return &MockRunner{Now: time.Now}
}

// Name implements Runner.
func (m *MockRunner) Name() string { return "mock" }

// Run implements Runner.
func (m *MockRunner) Run(_ context.Context, fc models.FillContext) (*models.FillResponse, error) {
	values := make(map[string]any, len(fc.Template.Fields))
	for _, field := range fc.Template.Fields {
		current := fc.CurrentValues[field.ID]
		if compatible(field.Type, current) {
			values[field.ID] = current
			continue
		}
		values[field.ID] = m.placeholder(field.Type)
	}
	return &models.FillResponse{Values: values}, nil
}

func compatible(ft models.FieldType, value any) bool {
	switch ft {
	case models.FieldTypeString:
		s, ok := value.(string)
		return ok && s != ""
	case models.FieldTypeNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case models.FieldTypeBoolean:
		_, ok := value.(bool)
		return ok
	case models.FieldTypeArray:
		_, ok := value.([]any)
		return ok
	}
	return false
}

func (m *MockRunner) placeholder(ft models.FieldType) any {
	switch ft {
	case models.FieldTypeNumber:
		return 0
	case models.FieldTypeBoolean:
		return false
	case models.FieldTypeArray:
		return []any{}
	default:
		return fmt.Sprintf("mock fill %s", m.Now().UTC().Format(time.RFC3339))
	}
}
