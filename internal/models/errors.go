package models

import (
	"errors"
	"fmt"
)

// Validation errors for models and stores.
var (
	// Template errors
	ErrInvalidTemplateName = errors.New("template name is required")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrTemplateConflict    = errors.New("template already exists")

	// Runtime errors
	ErrRunInProgress     = errors.New("run already in progress")
	ErrRuntimeNotStarted = errors.New("runtime is not started")

	// Pointer errors
	ErrPointerNotFound = errors.New("pointer path not found")
	ErrPointerInvalid  = errors.New("pointer path invalid")
)

// ErrorKind classifies a pipeline failure for run artifacts and repair
// hints.
type ErrorKind string

const (
	KindConfigInvalid       ErrorKind = "config_invalid"
	KindTemplateInvalid     ErrorKind = "template_invalid"
	KindTemplateNotFound    ErrorKind = "template_not_found"
	KindTemplateConflict    ErrorKind = "template_conflict"
	KindFillProviderError   ErrorKind = "fill_provider_error"
	KindFillParseError      ErrorKind = "fill_parse_error"
	KindFillShapeInvalid    ErrorKind = "fill_shape_invalid"
	KindMissingRequired     ErrorKind = "missing_required"
	KindTypeMismatch        ErrorKind = "type_mismatch"
	KindConstraintViolation ErrorKind = "constraint_violation"
	KindUnknownFieldID      ErrorKind = "unknown_field_id"
	KindPointerNotFound     ErrorKind = "pointer_not_found"
	KindPointerInvalid      ErrorKind = "pointer_invalid"
	KindLayoutBudget        ErrorKind = "layout_budget_exceeded"
	KindSchemaInvalid       ErrorKind = "schema_invalid"
	KindIoError             ErrorKind = "io_error"
)

// PipelineError is an error with a machine-readable kind. The scheduler
// records the kind in run artifacts and feeds the message back to the fill
// runner as a repair hint.
type PipelineError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError builds a PipelineError with a formatted message.
func NewPipelineError(kind ErrorKind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapPipelineError attaches a kind to an underlying error.
func WrapPipelineError(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the error kind, defaulting to io_error for plain errors.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindIoError
}
