package editor

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/debemdeboas/notes-editor/internal/document"
)

func genPlainMarkup(t *rapid.T) string {
	paragraphs := rapid.SliceOfN(
		rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 1, 4),
		1, 4,
	).Draw(t, "paragraphs")

	lines := make([]string, len(paragraphs))
	for i, words := range paragraphs {
		lines[i] = strings.Join(words, " ")
	}
	return strings.Join(lines, "\n\n")
}

func genSelection(t *rapid.T, e *Editor) Selection {
	doc := e.Doc()
	paths := document.Textblocks(doc)
	blockLen := func(b int) int { return doc.At(paths[b]).InlineLen() }

	fb := rapid.IntRange(0, len(paths)-1).Draw(t, "from_block")
	fo := rapid.IntRange(0, blockLen(fb)).Draw(t, "from_offset")
	tb := rapid.IntRange(fb, len(paths)-1).Draw(t, "to_block")
	lo := 0
	if tb == fb {
		lo = fo
	}
	to := rapid.IntRange(lo, blockLen(tb)).Draw(t, "to_offset")
	return span(fb, fo, tb, to)
}

func TestTogglesAreInvolutions(t *testing.T) {
	marks := []document.MarkType{document.Bold, document.Italic, document.Strike, document.Underline, document.Code}

	rapid.Check(t, func(t *rapid.T) {
		markup := genPlainMarkup(t)
		e := FromMarkup(markup, Options{})
		original := e.Doc()
		if err := e.Select(genSelection(t, e)); err != nil {
			t.Fatalf("Select failed: %v", err)
		}

		mark := document.Mark{Type: rapid.SampledFrom(marks).Draw(t, "mark")}
		toggles := map[string]func() (bool, error){
			"mark":       func() (bool, error) { return e.ToggleMark(mark) },
			"heading":    func() (bool, error) { return e.ToggleHeading(2) },
			"bullet":     func() (bool, error) { return e.ToggleList(document.BulletList) },
			"blockquote": e.ToggleBlockquote,
			"code":       e.ToggleCodeBlock,
		}
		name := rapid.SampledFrom([]string{"mark", "heading", "bullet", "blockquote", "code"}).Draw(t, "toggle")

		if e.Selection().Empty() && name == "mark" {
			return
		}

		toggle := toggles[name]
		if _, err := toggle(); err != nil {
			t.Fatalf("First %s toggle failed: %v", name, err)
		}
		if _, err := toggle(); err != nil {
			t.Fatalf("Second %s toggle failed: %v", name, err)
		}

		if !document.Equal(e.Doc(), original) {
			t.Fatalf("Expected %s toggled twice to restore the document\nbefore: %q\nafter:  %q", name, markup, e.Markup())
		}
	})
}
