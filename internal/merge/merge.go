// Package merge splices typed field values into a deep clone of a
// template's base document.
package merge

import (
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/jhytabest/plashboard/internal/jsonptr"
	"github.com/jhytabest/plashboard/internal/models"
)

// Clone deep-copies a decoded JSON value.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Clone(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// ValidateFieldPointers checks that field ids and pointers are unique and
// that every pointer resolves in the base document.
func ValidateFieldPointers(tpl *models.Template) error {
	seenIDs := make(map[string]struct{}, len(tpl.Fields))
	seenPointers := make(map[string]struct{}, len(tpl.Fields))

	for _, field := range tpl.Fields {
		if _, dup := seenIDs[field.ID]; dup {
			return models.NewPipelineError(models.KindTemplateInvalid, "duplicate field id %q", field.ID)
		}
		seenIDs[field.ID] = struct{}{}

		if _, dup := seenPointers[field.Pointer]; dup {
			return models.NewPipelineError(models.KindTemplateInvalid, "duplicate field pointer %q", field.Pointer)
		}
		seenPointers[field.Pointer] = struct{}{}

		if _, err := jsonptr.Read(tpl.BaseDashboard, field.Pointer); err != nil {
			return models.WrapPipelineError(models.KindTemplateInvalid, err, "field %q: pointer path not found in base document", field.ID)
		}
	}
	return nil
}

// CollectCurrentValues reads the value at each field pointer, keyed by
// field id. The result feeds the fill runner as current_value hints.
func CollectCurrentValues(tpl *models.Template) (map[string]any, error) {
	values := make(map[string]any, len(tpl.Fields))
	for _, field := range tpl.Fields {
		value, err := jsonptr.Read(tpl.BaseDashboard, field.Pointer)
		if err != nil {
			return nil, models.WrapPipelineError(models.KindTemplateInvalid, err, "field %q", field.ID)
		}
		values[field.ID] = value
	}
	return values, nil
}

// Merge type-checks values against the template's field specs and writes
// them into a deep clone of the base document. The base is never mutated.
func Merge(tpl *models.Template, values map[string]any) (map[string]any, error) {
	fields := make(map[string]models.FieldSpec, len(tpl.Fields))
	for _, field := range tpl.Fields {
		fields[field.ID] = field
	}

	for id := range values {
		if _, ok := fields[id]; !ok {
			return nil, models.NewPipelineError(models.KindUnknownFieldID, "fill response contains unknown field id %q", id)
		}
	}

	doc := Clone(tpl.BaseDashboard).(map[string]any)

	for _, field := range tpl.Fields {
		value, present := values[field.ID]
		if !present || value == nil {
			if field.IsRequired() {
				return nil, models.NewPipelineError(models.KindMissingRequired, "required field %q has no value", field.ID)
			}
			continue
		}

		if err := checkType(field, value); err != nil {
			return nil, err
		}
		if err := checkConstraints(field, value); err != nil {
			return nil, err
		}

		if err := jsonptr.Write(doc, field.Pointer, value); err != nil {
			kind := models.KindPointerInvalid
			if errors.Is(err, models.ErrPointerNotFound) {
				kind = models.KindPointerNotFound
			}
			return nil, models.WrapPipelineError(kind, err, "field %q", field.ID)
		}
	}

	return doc, nil
}

func checkType(field models.FieldSpec, value any) error {
	switch field.Type {
	case models.FieldTypeString:
		if _, ok := value.(string); !ok {
			return typeMismatch(field, "string", value)
		}
	case models.FieldTypeNumber:
		if !isNumber(value) {
			return typeMismatch(field, "number", value)
		}
	case models.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return typeMismatch(field, "boolean", value)
		}
	case models.FieldTypeArray:
		if _, ok := value.([]any); !ok {
			return typeMismatch(field, "array", value)
		}
	default:
		return models.NewPipelineError(models.KindTemplateInvalid, "field %q has unknown type %q", field.ID, field.Type)
	}
	return nil
}

func typeMismatch(field models.FieldSpec, want string, value any) error {
	return models.NewPipelineError(models.KindTypeMismatch, "field %q expects %s, got %T", field.ID, want, value)
}

func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func checkConstraints(field models.FieldSpec, value any) error {
	c := field.Constraints
	if c == nil {
		return nil
	}

	if s, ok := value.(string); ok && c.MaxLen != nil {
		if utf8.RuneCountInString(s) > *c.MaxLen {
			return constraintViolation(field, fmt.Sprintf("length %d exceeds max_len %d", utf8.RuneCountInString(s), *c.MaxLen))
		}
	}

	if isNumber(value) {
		n := asFloat(value)
		if c.Min != nil && n < *c.Min {
			return constraintViolation(field, fmt.Sprintf("value %v below min %v", n, *c.Min))
		}
		if c.Max != nil && n > *c.Max {
			return constraintViolation(field, fmt.Sprintf("value %v above max %v", n, *c.Max))
		}
	}

	if items, ok := value.([]any); ok {
		if c.MinItems != nil && len(items) < *c.MinItems {
			return constraintViolation(field, fmt.Sprintf("%d items below min_items %d", len(items), *c.MinItems))
		}
		if c.MaxItems != nil && len(items) > *c.MaxItems {
			return constraintViolation(field, fmt.Sprintf("%d items above max_items %d", len(items), *c.MaxItems))
		}
	}

	if len(c.Enum) > 0 {
		found := false
		for _, allowed := range c.Enum {
			if reflect.DeepEqual(allowed, value) {
				found = true
				break
			}
		}
		if !found {
			return constraintViolation(field, fmt.Sprintf("value %v not in enum", value))
		}
	}

	return nil
}

func constraintViolation(field models.FieldSpec, detail string) error {
	return models.NewPipelineError(models.KindConstraintViolation, "field %q: %s", field.ID, detail)
}
