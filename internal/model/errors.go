package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrInvalidPattern matches any *InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid pattern type")
)

// ValidationError reports a malformed request parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidPatternError reports a pattern id missing from a catalog.
type InvalidPatternError struct {
	Domain  Domain
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern type: %s/%q", e.Domain, e.Pattern)
}

func (e *InvalidPatternError) Is(target error) bool { return target == ErrInvalidPattern }
