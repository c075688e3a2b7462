package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
)

// DefaultKeyPrefix namespaces draft records in a shared KV.
const DefaultKeyPrefix = "emonotes_draft_"

// Store maps session keys to draft records in a KV.
type Store struct {
	kv     KV
	prefix string
}

func NewStore(kv KV, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{kv: kv, prefix: prefix}
}

func (s *Store) key(k model.SessionKey) string {
	return s.prefix + string(k)
}

// Inspect reads the draft for k. An unreadable record yields ok=false and a
// DraftParseFailure; a backend error yields ok=false and the wrapped error.
func (s *Store) Inspect(ctx context.Context, k model.SessionKey) (model.Draft, bool, error) {
	raw, ok, err := s.kv.Get(ctx, s.key(k))
	if err != nil || !ok {
		return model.Draft{}, false, err
	}

	var d model.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return model.Draft{}, false, apperrors.NewDraftParseFailure(s.key(k), err)
	}
	return d, true, nil
}

// Load returns the draft for k. Any failure is logged and reads as absent.
func (s *Store) Load(ctx context.Context, k model.SessionKey) (model.Draft, bool) {
	d, ok, err := s.Inspect(ctx, k)
	if err != nil {
		draftLogger.Warn().Err(err).Str("session_key", string(k)).Msg("Ignoring unreadable draft")
	}
	return d, ok
}

func (s *Store) Save(ctx context.Context, k model.SessionKey, d model.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.kv.Set(ctx, s.key(k), raw); err != nil {
		return err
	}
	draftLogger.Debug().Str("session_key", string(k)).Int("content_len", len(d.Content)).Msg("Draft saved")
	return nil
}

func (s *Store) Clear(ctx context.Context, k model.SessionKey) error {
	if err := s.kv.Remove(ctx, s.key(k)); err != nil {
		return err
	}
	draftLogger.Debug().Str("session_key", string(k)).Msg("Draft cleared")
	return nil
}

// List returns the session keys that currently hold a record.
func (s *Store) List(ctx context.Context) ([]model.SessionKey, error) {
	keys, err := s.kv.Keys(ctx, s.prefix)
	if err != nil {
		return nil, err
	}
	out := make([]model.SessionKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.SessionKey(strings.TrimPrefix(k, s.prefix)))
	}
	return out, nil
}
