// Package cache provides a thread-safe generic map and the rendered preview cache.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns a snapshot of the keys in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

// Preview is a note rendered to HTML together with the title found in its front matter.
type Preview struct {
	HTML  []byte
	Title string
}

var previewCache = NewCache[string, *Preview]()

func previewKey(contentHash, syntaxTheme string) string {
	return contentHash + ":" + syntaxTheme
}

func GetPreview(contentHash, syntaxTheme string) (*Preview, bool) {
	return previewCache.Get(previewKey(contentHash, syntaxTheme))
}

func SetPreview(contentHash, syntaxTheme string, html []byte, title string) {
	previewCache.Set(previewKey(contentHash, syntaxTheme), &Preview{
		HTML:  html,
		Title: title,
	})
}

func ClearPreviewCache() {
	previewCache.Clear()
}
