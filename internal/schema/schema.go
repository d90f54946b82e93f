// Package schema validates template and fill-response documents against
// JSON schemas. Validators return human-readable error strings; an empty
// list means the document is valid.
package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const templateSchemaJSON = `{
  "type": "object",
  "required": ["id", "name", "enabled", "schedule", "base_dashboard", "fields"],
  "additionalProperties": false,
  "properties": {
    "id": {"type": "string", "pattern": "^[a-z0-9][a-z0-9_-]{0,63}$"},
    "name": {"type": "string", "minLength": 1},
    "enabled": {"type": "boolean"},
    "schedule": {
      "type": "object",
      "required": ["mode", "every_minutes", "timezone"],
      "additionalProperties": false,
      "properties": {
        "mode": {"type": "string", "enum": ["interval"]},
        "every_minutes": {"type": "integer", "minimum": 1},
        "timezone": {"type": "string", "minLength": 1}
      }
    },
    "base_dashboard": {"type": "object"},
    "fields": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "pointer", "type", "prompt"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "pattern": "^[a-z0-9][a-z0-9_-]{0,63}$"},
          "pointer": {"type": "string", "pattern": "^/"},
          "type": {"type": "string", "enum": ["string", "number", "boolean", "array"]},
          "prompt": {"type": "string", "minLength": 1},
          "required": {"type": "boolean"},
          "constraints": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "max_len": {"type": "integer", "minimum": 0},
              "min": {"type": "number"},
              "max": {"type": "number"},
              "min_items": {"type": "integer", "minimum": 0},
              "max_items": {"type": "integer", "minimum": 0},
              "enum": {"type": "array", "minItems": 1}
            }
          }
        }
      }
    },
    "context": {"type": "string"},
    "run": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "retry_count": {"type": "integer", "minimum": 0},
        "repair_attempts": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

const fillResponseSchemaJSON = `{
  "type": "object",
  "required": ["values"],
  "additionalProperties": false,
  "properties": {
    "values": {
      "type": "object",
      "additionalProperties": {
        "type": ["string", "number", "boolean", "array", "null"]
      }
    }
  }
}`

var (
	templateSchema     = mustCompile(templateSchemaJSON)
	fillResponseSchema = mustCompile(fillResponseSchemaJSON)
)

func mustCompile(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// ValidateTemplate checks a decoded template document's shape.
func ValidateTemplate(doc any) []string {
	return validate(templateSchema, doc)
}

// ValidateFillResponse checks that a fill response is an object with the
// single recognized key "values" mapping field ids to scalars or arrays.
func ValidateFillResponse(doc any) []string {
	return validate(fillResponseSchema, doc)
}

func validate(schema *gojsonschema.Schema, doc any) []string {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []string{fmt.Sprintf("document is not valid JSON: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return errs
}
