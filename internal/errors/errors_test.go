package errors

import (
	"fmt"
	"io"
	"testing"
)

func TestEditorError_Error(t *testing.T) {
	err := &EditorError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "not found: n1",
	}

	expected := "NOT_FOUND: not found: n1"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	wrapped := NewFetchFailure("n1", io.EOF)
	if wrapped.Error() != "FETCH_FAILURE: failed to fetch note n1: EOF" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *EditorError
		code   ErrorCode
		status int
	}{
		{"fetch", NewFetchFailure("n1", io.EOF), ErrFetchFailure, 502},
		{"draft parse", NewDraftParseFailure("k", io.EOF), ErrDraftParseFailure, 500},
		{"conversion", NewConversionFailure(io.EOF), ErrConversionFailure, 422},
		{"submit", NewSubmitFailure("update", io.EOF), ErrSubmitFailure, 502},
		{"not found", NewNotFound("x"), ErrNotFound, 404},
		{"session closed", NewSessionClosed("s"), ErrSessionClosed, 409},
		{"invalid", NewInvalidInput("bad"), ErrInvalidInput, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.status)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := NewSubmitFailure("create", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("submitting: %w", err)

	if !Is(wrapped, ErrSubmitFailure) {
		t.Error("Is() = false for wrapped submit failure")
	}
	if Is(wrapped, ErrFetchFailure) {
		t.Error("Is() = true for wrong code")
	}
	if Is(io.EOF, ErrSubmitFailure) {
		t.Error("Is() = true for plain error")
	}
	if Status(wrapped) != 502 {
		t.Errorf("Status() = %d, want 502", Status(wrapped))
	}
	if Status(io.EOF) != 500 {
		t.Errorf("Status() = %d, want 500", Status(io.EOF))
	}
}
