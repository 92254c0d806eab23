package coach

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrUnparsableOutput = errors.New("model did not return valid JSON")
	ErrOutputValidation = errors.New("model output does not match the result schema")
	ErrAnalysisFailed   = errors.New("analysis failed")
)

// ValidationError reports a malformed AnalysisRequest.
type ValidationError struct {
	Field      string
	Constraint string
	Err        error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid request: field %q violates %q", e.Field, e.Constraint)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnparsableOutputError means no JSON value could be recovered from the model text.
type UnparsableOutputError struct {
	Preview string
}

func (e *UnparsableOutputError) Error() string { return ErrUnparsableOutput.Error() }

func (e *UnparsableOutputError) Is(target error) bool { return target == ErrUnparsableOutput }

// OutputValidationError means the recovered JSON does not have the result shape.
type OutputValidationError struct {
	Field string
	Err   error
}

func (e *OutputValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", ErrOutputValidation, e.Err)
	}
	return fmt.Sprintf("%s at %s: %v", ErrOutputValidation, e.Field, e.Err)
}

func (e *OutputValidationError) Unwrap() error { return e.Err }

func (e *OutputValidationError) Is(target error) bool { return target == ErrOutputValidation }
