package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid tmdb configuration")
	// ErrNoResults indicates a search without matches
	ErrNoResults = errors.New("no results")
	// ErrInvalidResponse indicates a payload that could not be used
	ErrInvalidResponse = errors.New("invalid response from tmdb")
)

// APIError represents a TMDB API error
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited checks if TMDB rejected the request for exceeding its rate limit
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// LookupError records which lookup failed and why.
type LookupError struct {
	Op    string // "search" or "details"
	Query string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("tmdb %s %q: %v", e.Op, e.Query, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
