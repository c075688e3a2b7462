package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/debemdeboas/notes-editor/internal/model"
)

// wireID accepts numeric and string identifiers.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid note id %s: %w", b, err)
	}
	*id = wireID(n.String())
	return nil
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// wireTime accepts RFC 3339 and zone-less local date-times, which are read as UTC.
type wireTime time.Time

func (t *wireTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = wireTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	if s == "" {
		*t = wireTime{}
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = wireTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

type wireNote struct {
	ID        wireID   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	CreatedAt wireTime `json:"createdAt"`
}

func (w wireNote) note() *model.Note {
	return &model.Note{
		ID:        model.NoteID(w.ID),
		Title:     w.Title,
		Content:   w.Content,
		CreatedAt: time.Time(w.CreatedAt),
	}
}

// previewFields lists where list entries have carried their preview text, in
// order of preference. Only previewContent is documented by the server.
var previewFields = []string{
	"previewContent",
	"preview",
	"excerpt",
	"content",
	"body",
	"snippet",
	"text",
	"truncatedContent",
	"summary",
}

type wireSummary struct {
	ID        wireID   `json:"id"`
	Title     string   `json:"title"`
	CreatedAt wireTime `json:"createdAt"`

	fields map[string]json.RawMessage
}

func (w *wireSummary) UnmarshalJSON(b []byte) error {
	type plain wireSummary
	if err := json.Unmarshal(b, (*plain)(w)); err != nil {
		return err
	}
	return json.Unmarshal(b, &w.fields)
}

func (w *wireSummary) summary(previewChars int) (model.NoteSummary, string) {
	s := model.NoteSummary{
		ID:        model.NoteID(w.ID),
		Title:     w.Title,
		CreatedAt: time.Time(w.CreatedAt),
	}
	for _, field := range previewFields {
		raw, ok := w.fields[field]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if field == previewFields[0] {
			s.Preview = text
		} else {
			s.Preview = model.Preview(text, previewChars)
		}
		return s, field
	}
	return s, ""
}
