package services

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by the Gemini client when no credential
// was configured at startup.
var ErrMissingAPIKey = errors.New("gemini: GEMINI_API_KEY is not configured")

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// ProviderError wraps a failed provider call together with its category.
type ProviderError struct {
	Kind FailureKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failure (%s): %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
