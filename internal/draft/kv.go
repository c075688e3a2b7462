// Package draft persists in-progress {title, content} pairs keyed by session key.
package draft

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/cache"
)

var draftLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	draftLogger = l
}

// KV is the byte store drafts are kept in. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// MemoryKV keeps drafts for the lifetime of the process.
type MemoryKV struct {
	items *cache.Cache[string, []byte]
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: cache.NewCache[string, []byte]()}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	return slices.Clone(v), ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.items.Set(key, slices.Clone(value))
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemoryKV) Keys(_ context.Context, prefix string) ([]string, error) {
	keys := slices.DeleteFunc(m.items.Keys(), func(k string) bool {
		return !strings.HasPrefix(k, prefix)
	})
	slices.Sort(keys)
	return keys, nil
}
