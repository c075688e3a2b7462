package draft

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
)

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	draftLogger.Info().Msg("logger replaced")
	if !strings.Contains(buf.String(), "logger replaced") {
		t.Errorf("Expected package logger to write to the new sink, got %q", buf.String())
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	backends := map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV { return NewMemoryKV() },
		"sqlite": newTestSQLiteKV,
		"redis":  newTestRedisKV,
	}

	for name, newKV := range backends {
		t.Run(name, func(t *testing.T) {
			store := NewStore(newKV(t), "")

			t.Run("Missing draft is absent", func(t *testing.T) {
				if _, ok := store.Load(ctx, "nothing"); ok {
					t.Error("Expected no draft")
				}
			})

			t.Run("Save then clear is absent", func(t *testing.T) {
				if err := store.Save(ctx, "n1", model.Draft{Title: "T", Content: "C"}); err != nil {
					t.Fatalf("Save failed: %v", err)
				}
				if err := store.Clear(ctx, "n1"); err != nil {
					t.Fatalf("Clear failed: %v", err)
				}
				if _, ok := store.Load(ctx, "n1"); ok {
					t.Error("Expected draft to be cleared")
				}
			})

			t.Run("Last save wins", func(t *testing.T) {
				d1 := model.Draft{Title: "one", Content: "first"}
				d2 := model.Draft{Title: "two", Content: "second"}
				store.Save(ctx, "n2", d1)
				store.Save(ctx, "n2", d2)

				got, ok := store.Load(ctx, "n2")
				if !ok {
					t.Fatal("Expected draft to exist")
				}
				if got != d2 {
					t.Errorf("Expected %+v, got %+v", d2, got)
				}
			})

			t.Run("Clearing a missing draft is not an error", func(t *testing.T) {
				if err := store.Clear(ctx, "never-saved"); err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
			})

			t.Run("List returns session keys", func(t *testing.T) {
				store.Save(ctx, model.NewNoteKey, model.Draft{Content: "x"})
				keys, err := store.List(ctx)
				if err != nil {
					t.Fatalf("List failed: %v", err)
				}
				if !slices.Contains(keys, model.NewNoteKey) || !slices.Contains(keys, model.SessionKey("n2")) {
					t.Errorf("Expected keys to include new and n2, got %v", keys)
				}
			})
		})
	}
}

func TestStoreKeyPrefix(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv, "")

	store.Save(ctx, "abc", model.Draft{Title: "t"})

	raw, ok, _ := kv.Get(ctx, "emonotes_draft_abc")
	if !ok {
		t.Fatal("Expected record under the default prefix")
	}
	if string(raw) != `{"title":"t","content":""}` {
		t.Errorf("Unexpected record layout %s", raw)
	}

	other := NewStore(kv, "custom_")
	if _, ok := other.Load(ctx, "abc"); ok {
		t.Error("Expected stores with different prefixes to be isolated")
	}
}

func TestStoreUnparseableDraft(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv, "")

	kv.Set(ctx, DefaultKeyPrefix+"bad", []byte("{not json"))

	_, ok, err := store.Inspect(ctx, "bad")
	if ok {
		t.Error("Expected unparseable draft to be absent")
	}
	if !apperrors.Is(err, apperrors.ErrDraftParseFailure) {
		t.Errorf("Expected DraftParseFailure, got %v", err)
	}

	if _, ok := store.Load(ctx, "bad"); ok {
		t.Error("Expected Load to treat the record as absent")
	}
}
