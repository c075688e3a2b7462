package cache

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestCache_BasicOperations(t *testing.T) {
	c := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		c.Set("key", "value")
		got, ok := c.Get("key")
		if !ok {
			t.Fatal("Expected key to exist")
		}
		if got != "value" {
			t.Errorf("Expected %q, got %q", "value", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, ok := c.Get("missing"); ok {
			t.Error("Expected key to not exist")
		}
	})

	t.Run("Overwrite keeps last value", func(t *testing.T) {
		c.Set("over", "v1")
		c.Set("over", "v2")
		if got, _ := c.Get("over"); got != "v2" {
			t.Errorf("Expected %q, got %q", "v2", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set("gone", "x")
		c.Delete("gone")
		if _, ok := c.Get("gone"); ok {
			t.Error("Expected key to be deleted")
		}
		c.Delete("never-set")
	})
}

func TestCache_KeysAndLen(t *testing.T) {
	c := NewCache[string, int]()
	c.Set("b", 2)
	c.Set("a", 1)

	if c.Len() != 2 {
		t.Fatalf("Expected 2 items, got %d", c.Len())
	}

	keys := c.Keys()
	slices.Sort(keys)
	if !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("Expected keys [a b], got %v", keys)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d items", c.Len())
	}
}

func TestCache_Concurrency(t *testing.T) {
	c := NewCache[string, int]()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			c.Set(key, i)
			c.Get(key)
			c.Keys()
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Expected 10 keys, got %d", c.Len())
	}
}

func TestPreviewCache(t *testing.T) {
	ClearPreviewCache()
	defer ClearPreviewCache()

	t.Run("Miss before set", func(t *testing.T) {
		if _, ok := GetPreview("hash", "gruvbox"); ok {
			t.Error("Expected cache miss")
		}
	})

	t.Run("Keyed by hash and theme", func(t *testing.T) {
		SetPreview("hash", "gruvbox", []byte("<p>a</p>"), "A")
		SetPreview("hash", "monokai", []byte("<p>b</p>"), "B")

		p, ok := GetPreview("hash", "gruvbox")
		if !ok {
			t.Fatal("Expected cache hit")
		}
		if string(p.HTML) != "<p>a</p>" || p.Title != "A" {
			t.Errorf("Unexpected preview %+v", p)
		}

		p, _ = GetPreview("hash", "monokai")
		if p.Title != "B" {
			t.Errorf("Expected title B, got %q", p.Title)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		ClearPreviewCache()
		if _, ok := GetPreview("hash", "gruvbox"); ok {
			t.Error("Expected cache to be cleared")
		}
	})
}

func TestSyntaxCSSCache(t *testing.T) {
	SetSyntaxCSS("test-theme", ".chroma{}")
	css, ok := GetSyntaxCSS("test-theme")
	if !ok || css != ".chroma{}" {
		t.Errorf("Expected cached css, got %q (%v)", css, ok)
	}
}

func BenchmarkCache_Get(b *testing.B) {
	c := NewCache[string, string]()
	c.Set("key", "value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key")
	}
}
