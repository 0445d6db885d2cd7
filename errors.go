package main

import "fmt"

// ConfigError means a required credential or setting is missing. It is
// always surfaced to the caller; there is no fallback for it.
type ConfigError struct {
	Field   string
	Message string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config error: %s - %s", e.Field, e.Message)
}

// APIError is a non-success response from the GitHub API. The message is
// taken from the response body when the upstream provides one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github api error (status %d)", e.StatusCode)
}

// AnalysisError means the completion call succeeded transport-wise but the
// content could not be used: unparsable JSON or an unexpected shape. The
// analyzers catch it internally and substitute the deterministic fallback.
type AnalysisError struct {
	Stage string
	Err   error
}

func (e AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed at %s: %v", e.Stage, e.Err)
}

func (e AnalysisError) Unwrap() error {
	return e.Err
}
