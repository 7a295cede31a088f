// Package errors defines the error taxonomy shared by the crawler packages.
//
// Every failure produced by the fetch-and-normalize pipeline is an *Error
// carrying an ErrorType. Callers match kinds with the standard library:
//
//	if errors.Is(err, igerrors.ErrSchemaMismatch) { ... }
//
//	var igErr *igerrors.Error
//	if errors.As(err, &igErr) && igErr.Type == igerrors.ErrorTypeUpstream {
//	    fmt.Println(igErr.Code, igErr.Body)
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"unicode/utf8"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeTransport           ErrorType = "transport"
	ErrorTypeUpstream            ErrorType = "upstream"
	ErrorTypeMalformedResponse   ErrorType = "malformed_response"
	ErrorTypeSchemaMismatch      ErrorType = "schema_mismatch"
	ErrorTypeUnknownProfileState ErrorType = "unknown_profile_state"
)

// bodySnippetLimit caps the amount of an upstream body kept on an error.
const bodySnippetLimit = 200

// Error represents a crawler error with type information
type Error struct {
	Type    ErrorType
	Message string
	// Code is the upstream HTTP status, zero when no response was received.
	Code int
	// Body is a snippet of the upstream body for upstream errors.
	Body string
	// Entity and Field identify the missing field of a schema mismatch.
	Entity string
	Field  string
	Err    error
}

func (e *Error) Error() string {
	switch e.Type {
	case ErrorTypeUpstream:
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	case ErrorTypeSchemaMismatch:
		return fmt.Sprintf("%s error: %s is missing required field %q", e.Type, e.Entity, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same type. This lets the
// sentinel values below be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Sentinels for errors.Is matching.
var (
	ErrTransport           = &Error{Type: ErrorTypeTransport}
	ErrUpstream            = &Error{Type: ErrorTypeUpstream}
	ErrMalformedResponse   = &Error{Type: ErrorTypeMalformedResponse}
	ErrSchemaMismatch      = &Error{Type: ErrorTypeSchemaMismatch}
	ErrUnknownProfileState = &Error{Type: ErrorTypeUnknownProfileState, Message: "profile verification state was never supplied"}
)

// Transport wraps a connection level failure.
func Transport(err error) *Error {
	return &Error{
		Type:    ErrorTypeTransport,
		Message: "request failed",
		Err:     err,
	}
}

// Upstream reports a non-2xx response, keeping a snippet of the body.
func Upstream(status int, body []byte) *Error {
	return &Error{
		Type:    ErrorTypeUpstream,
		Message: fmt.Sprintf("unexpected status code: %d", status),
		Code:    status,
		Body:    Snippet(body),
	}
}

// MalformedResponse reports a body that could not be decoded or that
// carries no known envelope.
func MalformedResponse(msg string, err error) *Error {
	return &Error{
		Type:    ErrorTypeMalformedResponse,
		Message: msg,
		Err:     err,
	}
}

// SchemaMismatch reports a required field missing from an entity payload.
func SchemaMismatch(entity, field string) *Error {
	return &Error{
		Type:    ErrorTypeSchemaMismatch,
		Message: fmt.Sprintf("%s.%s is missing", entity, field),
		Entity:  entity,
		Field:   field,
	}
}

// Snippet truncates a body for logs and errors. The cut never splits a
// UTF-8 sequence.
func Snippet(body []byte) string {
	if len(body) <= bodySnippetLimit {
		return string(body)
	}
	cut := bodySnippetLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}

// IsRetryable checks if an error type should be retried
func IsRetryable(err error) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeTransport:
		return true
	case ErrorTypeUpstream:
		return IsRetryableStatusCode(e.Code)
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500
	}
}
