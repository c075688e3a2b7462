package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
)

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	storageLogger.Info().Msg("logger replaced")
	if !strings.Contains(buf.String(), "logger replaced") {
		t.Errorf("Expected package logger to write to the new sink, got %q", buf.String())
	}
}

// exerciseClient runs the behaviour every backend shares.
func exerciseClient(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	created, err := c.CreateNote(ctx, model.NoteInput{Title: "First", Content: strings.Repeat("x", 250)})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected created note to have an id")
	}

	t.Run("Fetch returns full content", func(t *testing.T) {
		n, err := c.FetchNote(ctx, created.ID)
		if err != nil {
			t.Fatalf("FetchNote failed: %v", err)
		}
		if len(n.Content) != 250 || n.Title != "First" {
			t.Errorf("Unexpected note %+v", n)
		}
	})

	t.Run("List truncates previews", func(t *testing.T) {
		list, err := c.ListNotes(ctx)
		if err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("Expected 1 note, got %d", len(list))
		}
		if want := strings.Repeat("x", 200) + "..."; list[0].Preview != want {
			t.Errorf("Expected truncated preview, got %q", list[0].Preview)
		}
	})

	t.Run("Update", func(t *testing.T) {
		if _, err := c.UpdateNote(ctx, created.ID, model.NoteInput{Title: "Renamed", Content: "short"}); err != nil {
			t.Fatalf("UpdateNote failed: %v", err)
		}
		n, _ := c.FetchNote(ctx, created.ID)
		if n.Title != "Renamed" || n.Content != "short" {
			t.Errorf("Expected updated note, got %+v", n)
		}
	})

	t.Run("Missing notes are NOT_FOUND", func(t *testing.T) {
		if _, err := c.FetchNote(ctx, "missing"); !apperrors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected NOT_FOUND from FetchNote, got %v", err)
		}
		if _, err := c.UpdateNote(ctx, "missing", model.NoteInput{}); !apperrors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected NOT_FOUND from UpdateNote, got %v", err)
		}
		if err := c.DeleteNote(ctx, "missing"); !apperrors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected NOT_FOUND from DeleteNote, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := c.DeleteNote(ctx, created.ID); err != nil {
			t.Fatalf("DeleteNote failed: %v", err)
		}
		if _, err := c.FetchNote(ctx, created.ID); !apperrors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected deleted note to be gone, got %v", err)
		}
	})
}

func TestMemoryClient(t *testing.T) {
	exerciseClient(t, NewMemoryClient(200))
}

func TestMemoryClientListOrder(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(0)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	c.CreateNote(ctx, model.NoteInput{Title: "old"})
	c.CreateNote(ctx, model.NoteInput{Title: "new"})

	list, _ := c.ListNotes(ctx)
	if len(list) != 2 || list[0].Title != "new" {
		t.Errorf("Expected newest note first, got %+v", list)
	}
}

func TestMemoryClientCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMemoryClient(0).FetchNote(ctx, "x"); err == nil {
		t.Error("Expected cancelled context to fail")
	}
}
