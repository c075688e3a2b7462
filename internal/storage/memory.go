package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/debemdeboas/notes-editor/internal/cache"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
)

// MemoryClient keeps notes in process. It backs local runs and tests.
type MemoryClient struct {
	notes        *cache.Cache[model.NoteID, model.Note]
	previewChars int
	now          func() time.Time
}

func NewMemoryClient(previewChars int) *MemoryClient {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &MemoryClient{
		notes:        cache.NewCache[model.NoteID, model.Note](),
		previewChars: previewChars,
		now:          time.Now,
	}
}

func (m *MemoryClient) FetchNote(ctx context.Context, id model.NoteID) (*model.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := m.notes.Get(id)
	if !ok {
		return nil, apperrors.NewNotFound(string(id))
	}
	return &n, nil
}

func (m *MemoryClient) CreateNote(ctx context.Context, in model.NoteInput) (*model.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := model.Note{
		ID:        model.NoteID(uuid.NewString()),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: m.now().UTC(),
	}
	m.notes.Set(n.ID, n)
	storageLogger.Debug().Str("note_id", string(n.ID)).Msg("Note created")
	return &n, nil
}

func (m *MemoryClient) UpdateNote(ctx context.Context, id model.NoteID, in model.NoteInput) (*model.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := m.notes.Get(id)
	if !ok {
		return nil, apperrors.NewNotFound(string(id))
	}
	n.Title = in.Title
	n.Content = in.Content
	m.notes.Set(id, n)
	return &n, nil
}

func (m *MemoryClient) DeleteNote(ctx context.Context, id model.NoteID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := m.notes.Get(id); !ok {
		return apperrors.NewNotFound(string(id))
	}
	m.notes.Delete(id)
	return nil
}

func (m *MemoryClient) ListNotes(ctx context.Context) ([]model.NoteSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.NoteSummary, 0, m.notes.Len())
	for _, id := range m.notes.Keys() {
		if n, ok := m.notes.Get(id); ok {
			out = append(out, n.Summary(m.previewChars))
		}
	}
	sortSummaries(out)
	return out, nil
}
