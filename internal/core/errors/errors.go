// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Channel registry errors.
var (
	// ErrInvalidChannelID indicates a channel id that is empty after trimming.
	ErrInvalidChannelID = errors.New("invalid channel id")

	// ErrInvalidChannelTitle indicates a channel title that is empty after trimming.
	ErrInvalidChannelTitle = errors.New("invalid channel title")

	// ErrChannelNotFound indicates a channel could not be found in the store.
	ErrChannelNotFound = errors.New("channel not found")
)

// Channel store errors.
var (
	// ErrInvalidChannelEntry indicates a record the store cannot accept for persistence.
	ErrInvalidChannelEntry = errors.New("invalid channel entry")
)

// Lookup errors.
var (
	// ErrEmptyResponse indicates an empty response was received from the messaging API.
	ErrEmptyResponse = errors.New("empty response")

	// ErrLookupFailed indicates a membership lookup that did not produce a usable envelope.
	ErrLookupFailed = errors.New("membership lookup failed")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
