// Package storage talks to the authoritative note store.
package storage

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/model"
)

var storageLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storageLogger = l
}

// DefaultPreviewChars is the list preview length used when none is configured.
const DefaultPreviewChars = 200

// Client is the note storage collaborator. Missing notes are reported as NOT_FOUND.
type Client interface {
	FetchNote(ctx context.Context, id model.NoteID) (*model.Note, error)
	CreateNote(ctx context.Context, in model.NoteInput) (*model.Note, error)
	UpdateNote(ctx context.Context, id model.NoteID, in model.NoteInput) (*model.Note, error)
	DeleteNote(ctx context.Context, id model.NoteID) error
	ListNotes(ctx context.Context) ([]model.NoteSummary, error)
}

// sortSummaries orders newest first, then by id for stability.
func sortSummaries(s []model.NoteSummary) {
	slices.SortStableFunc(s, func(a, b model.NoteSummary) int {
		if c := -a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
