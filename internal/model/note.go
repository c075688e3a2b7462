// Package model defines the note, draft and session-key types shared across the editor engine.
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

type NoteID string

// SessionKey scopes a draft to one editing target.
type SessionKey string

// NewNoteKey is the key of a session editing a note that was never saved.
const NewNoteKey SessionKey = "new"

// KeyFor returns the session key for id, or NewNoteKey for an empty id.
func KeyFor(id NoteID) SessionKey {
	if id == "" {
		return NewNoteKey
	}
	return SessionKey(id)
}

func (k SessionKey) IsNew() bool {
	return k == NewNoteKey
}

// NoteID returns the note identifier behind k, or "" for NewNoteKey.
func (k SessionKey) NoteID() NoteID {
	if k.IsNew() {
		return ""
	}
	return NoteID(k)
}

// Note is the authoritative copy owned by the storage collaborator.
type Note struct {
	ID        NoteID    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteInput is the payload of create and update calls.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteSummary is a list entry. Preview may be truncated.
type NoteSummary struct {
	ID        NoteID    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n *Note) Summary(previewChars int) NoteSummary {
	return NoteSummary{
		ID:        n.ID,
		Title:     n.Title,
		Preview:   Preview(n.Content, previewChars),
		CreatedAt: n.CreatedAt,
	}
}

// Draft is an in-progress {title, content} pair.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IsEmpty reports whether both fields are blank once trimmed.
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == ""
}

func (d Draft) Input() NoteInput {
	return NoteInput{Title: d.Title, Content: d.Content}
}

// Preview truncates content to max runes, appending "..." when anything was cut.
func Preview(content string, max int) string {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return string(runes[:max]) + "..."
}
