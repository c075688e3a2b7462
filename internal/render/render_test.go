package render

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/cache"
	"github.com/debemdeboas/notes-editor/internal/util"
)

func setupTest() {
	cache.ClearPreviewCache()
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	renderLogger.Info().Msg("logger replaced")
	if !strings.Contains(buf.String(), "logger replaced") {
		t.Errorf("Expected package logger to write to the new sink, got %q", buf.String())
	}
}

func TestRenderPreview(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		contains  []string
		wantTitle string
	}{
		{
			name:     "heading and emphasis",
			markdown: "# Groceries\n\nBuy **milk**",
			contains: []string{"Groceries</h1>", "<strong>milk</strong>"},
		},
		{
			name:     "code block is highlighted",
			markdown: "```go\nfunc main() {}\n```",
			contains: []string{`<div class="highlight">`, "chroma"},
		},
		{
			name:      "front matter title",
			markdown:  "%%%\ntitle = \"Weekly\"\n%%%\n\nbody",
			contains:  []string{"body"},
			wantTitle: "Weekly",
		},
		{
			name:     "task markers stay literal",
			markdown: "- [x] done\n- [ ] todo",
			contains: []string{"[x] done", "[ ] todo"},
		},
		{
			name:     "empty content",
			markdown: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, title := RenderPreview([]byte(tt.markdown), "gruvbox")
			for _, want := range tt.contains {
				if !bytes.Contains(html, []byte(want)) {
					t.Errorf("Expected HTML to contain %q, got %s", want, html)
				}
			}
			if title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, title)
			}
		})
	}
}

func TestRenderPreviewCached(t *testing.T) {
	setupTest()
	md := []byte("# Cached\n\ntext")

	html, _ := RenderPreviewCached(md, "github")
	cached, found := cache.GetPreview(util.ContentHash(md), "github")
	if !found {
		t.Fatal("Expected preview to be cached")
	}
	if !bytes.Equal(cached.HTML, html) {
		t.Errorf("Cached HTML mismatch. Expected %q, got %q", html, cached.HTML)
	}

	if _, found := cache.GetPreview(util.ContentHash(md), "monokai"); found {
		t.Error("Expected cache entries to be keyed by theme")
	}

	again, _ := RenderPreviewCached(md, "github")
	if !bytes.Equal(again, html) {
		t.Error("Expected identical HTML from the cache")
	}
}

func TestRenderPreviewCachedConcurrency(t *testing.T) {
	setupTest()
	md := []byte("```python\nprint('hi')\n```")

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = RenderPreviewCached(md, "gruvbox")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[0], results[i]) {
			t.Fatalf("Expected all renders to match, result %d differs", i)
		}
	}
}

func TestSyntaxCSS(t *testing.T) {
	css := SyntaxCSS("gruvbox")
	if !strings.Contains(css, ".chroma") {
		t.Errorf("Expected chroma CSS, got %q", css)
	}
	if SyntaxCSS("gruvbox") != css {
		t.Error("Expected cached CSS on the second call")
	}

	if SyntaxCSS("no-such-theme") == "" {
		t.Error("Expected unknown themes to fall back to the default")
	}
}

func TestHighlightMarkdown(t *testing.T) {
	out, err := HighlightMarkdown("# Title\n\n- item", "gruvbox")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, `<div class="markdown-source">`) {
		t.Errorf("Expected wrapper div, got %q", out)
	}
	if !strings.Contains(out, "<br>") {
		t.Error("Expected newlines to become <br>")
	}
}

func BenchmarkRenderPreviewCached(b *testing.B) {
	setupTest()
	md := []byte("# Bench\n\n```go\nfunc main() {}\n```")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RenderPreviewCached(md, "gruvbox")
	}
}
