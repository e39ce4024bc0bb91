// Package apperrors defines the typed errors returned by txcat components.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNoClient is returned by the client factory when no completion API is
// configured. The engine treats it as "LLM tier disabled", not as a failure.
var ErrNoClient = errors.New("no completion client configured")

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Key    string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%v: %s", e.Key, e.Value, e.Reason)
}

// DuplicateCategoryError reports two categories whose names collide once
// case is ignored.
type DuplicateCategoryError struct {
	Name     string
	Existing string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("category name %q collides with existing category %q", e.Name, e.Existing)
}

// InvalidOverrideError reports a user override that cannot be applied safely.
type InvalidOverrideError struct {
	Description  string
	Merchant     string
	CategoryName string
	Reason       string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid override (description=%q merchant=%q category=%q): %s",
		e.Description, e.Merchant, e.CategoryName, e.Reason)
}

// CompletionError wraps a failed call to a completion API.
// StatusCode is the HTTP status when the provider returned one, 0 otherwise.
type CompletionError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *CompletionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s completion failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// DataFileError reports a data file (categories, overrides, keywords) that
// could not be read or decoded.
type DataFileError struct {
	FilePath string
	Err      error
}

func (e *DataFileError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.FilePath, e.Err)
}

func (e *DataFileError) Unwrap() error {
	return e.Err
}
