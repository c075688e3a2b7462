package session

import (
	stderrors "errors"

	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
)

type EventType string

const (
	EventResolved  EventType = "resolved"
	EventChanged   EventType = "changed"
	EventSubmitted EventType = "submitted"
	EventClosed    EventType = "closed"
	EventError     EventType = "error"
)

// Event is pushed to the UI shell whenever a session changes state or hits a
// recoverable failure.
type Event struct {
	Type      EventType           `json:"type"`
	SessionID string              `json:"sessionId"`
	Version   uint64              `json:"version"`
	Source    Source              `json:"source,omitempty"`
	Title     string              `json:"title,omitempty"`
	Markup    string              `json:"markup,omitempty"`
	NoteID    model.NoteID        `json:"noteId,omitempty"`
	Code      apperrors.ErrorCode `json:"code,omitempty"`
	Message   string              `json:"message,omitempty"`
}

// Notifier receives session events. Implementations must not block.
type Notifier interface {
	Notify(ev Event)
}

type NotifierFunc func(ev Event)

func (f NotifierFunc) Notify(ev Event) { f(ev) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

func errorEvent(id string, version uint64, err error) Event {
	ev := Event{Type: EventError, SessionID: id, Version: version, Message: err.Error()}
	var eErr *apperrors.EditorError
	if stderrors.As(err, &eErr) {
		ev.Code = eErr.Code
		ev.Message = eErr.Message
	}
	return ev
}
