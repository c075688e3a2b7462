// Package errors defines the coded error taxonomy shared by the editor engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a failure class.
type ErrorCode string

const (
	ErrFetchFailure      ErrorCode = "FETCH_FAILURE"       // 502
	ErrDraftParseFailure ErrorCode = "DRAFT_PARSE_FAILURE" // 500, never surfaced as fatal
	ErrConversionFailure ErrorCode = "CONVERSION_FAILURE"  // 422
	ErrSubmitFailure     ErrorCode = "SUBMIT_FAILURE"      // 502
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrSessionClosed     ErrorCode = "SESSION_CLOSED"      // 409
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"       // 400
)

// EditorError carries a code, an HTTP status and the wrapped cause.
type EditorError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	Err error
}

func (e *EditorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EditorError) Unwrap() error {
	return e.Err
}

// NewFetchFailure reports that the authoritative copy of a note could not be read.
func NewFetchFailure(noteID string, err error) *EditorError {
	return &EditorError{
		Code:    ErrFetchFailure,
		Status:  502,
		Message: fmt.Sprintf("failed to fetch note %s", noteID),
		Details: map[string]any{"note_id": noteID},
		Err:     err,
	}
}

// NewDraftParseFailure reports a stored draft record that could not be decoded.
func NewDraftParseFailure(key string, err error) *EditorError {
	return &EditorError{
		Code:    ErrDraftParseFailure,
		Status:  500,
		Message: fmt.Sprintf("draft %s is unreadable", key),
		Details: map[string]any{"key": key},
		Err:     err,
	}
}

// NewConversionFailure reports markup that only parsed in degraded form.
func NewConversionFailure(err error) *EditorError {
	return &EditorError{
		Code:    ErrConversionFailure,
		Status:  422,
		Message: "markup could not be fully converted",
		Err:     err,
	}
}

// NewSubmitFailure reports a failed create, update or delete call.
func NewSubmitFailure(op string, err error) *EditorError {
	return &EditorError{
		Code:    ErrSubmitFailure,
		Status:  502,
		Message: fmt.Sprintf("%s failed", op),
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

func NewNotFound(identifier string) *EditorError {
	return &EditorError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

func NewSessionClosed(id string) *EditorError {
	return &EditorError{
		Code:    ErrSessionClosed,
		Status:  409,
		Message: fmt.Sprintf("session %s is closed", id),
		Details: map[string]any{"session_id": id},
	}
}

func NewInvalidInput(msg string) *EditorError {
	return &EditorError{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// Is reports whether any error in err's chain is an EditorError with the given code.
func Is(err error, code ErrorCode) bool {
	var eErr *EditorError
	if stderrors.As(err, &eErr) {
		return eErr.Code == code
	}
	return false
}

// Status returns the HTTP status for err, or 500 when err carries no code.
func Status(err error) int {
	var eErr *EditorError
	if stderrors.As(err, &eErr) && eErr.Status != 0 {
		return eErr.Status
	}
	return 500
}
