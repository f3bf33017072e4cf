package model

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable matches every ConfigurationError via errors.Is.
var ErrModelUnavailable = errors.New("model unavailable")

// ConfigurationError indicates the model artifact is missing, unreadable or
// malformed.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("model configuration: %v", e.Err)
	}
	return fmt.Sprintf("model artifact %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrModelUnavailable }

// InferenceError indicates the model call itself failed or returned output
// that is not a valid prediction.
type InferenceError struct {
	Model string
	Op    string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Model, e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// ErrInvalidArtifact indicates an artifact document that does not satisfy
// the artifact schema.
type ErrInvalidArtifact struct {
	Err error
}

func (e *ErrInvalidArtifact) Error() string {
	return fmt.Sprintf("invalid model artifact: %v", e.Err)
}

func (e *ErrInvalidArtifact) Unwrap() error { return e.Err }
