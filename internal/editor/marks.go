package editor

import (
	"github.com/debemdeboas/notes-editor/internal/document"
)

type textRange struct {
	node     *document.Node
	path     document.Path
	from, to int
}

// textRanges lists the part of every textblock the selection covers.
func textRanges(doc *document.Node, sel Selection) []textRange {
	paths := document.Textblocks(doc)
	from, to := sel.From(), sel.To()

	var out []textRange
	for b := from.Block; b <= to.Block; b++ {
		n := doc.At(paths[b])
		r := textRange{node: n, path: paths[b], from: 0, to: n.InlineLen()}
		if b == from.Block {
			r.from = from.Offset
		}
		if b == to.Block {
			r.to = to.Offset
		}
		out = append(out, r)
	}
	return out
}

// ToggleMark removes mark from the selection when every selected character
// carries it and adds it otherwise. Code blocks are skipped. On a collapsed
// selection it toggles the mark for the next insertion instead.
func (e *Editor) ToggleMark(mark document.Mark) (bool, error) {
	if e.sel.Empty() {
		e.toggleStored(mark)
		return false, nil
	}

	return e.apply("", func(doc *document.Node) (Selection, error) {
		ranges := textRanges(doc, e.sel)

		covered, found := true, false
		for _, r := range ranges {
			if r.node.Type == document.CodeBlock {
				continue
			}
			for _, n := range inlinesOf(r.node, r.from, r.to) {
				if n.Type != document.Text {
					continue
				}
				found = true
				if !document.HasMark(n.Marks, mark.Type) {
					covered = false
				}
			}
		}
		if !found {
			return e.sel, nil
		}

		for _, r := range ranges {
			if r.node.Type == document.CodeBlock {
				continue
			}
			left, rest := splitInline(r.node.Content, r.from)
			mid, right := splitInline(rest, r.to-r.from)
			for _, n := range mid {
				if n.Type != document.Text {
					continue
				}
				if covered {
					n.Marks = document.RemoveMark(n.Marks, mark.Type)
				} else {
					n.Marks = document.AddMark(n.Marks, mark)
				}
			}
			content := append(left, mid...)
			r.node.Content = document.NormalizeInline(append(content, right...))
		}
		return e.sel, nil
	})
}

func (e *Editor) toggleStored(mark document.Mark) {
	if !e.hasStored {
		n := e.doc.At(document.Textblocks(e.doc)[e.sel.Head.Block])
		e.stored = marksAt(n, e.sel.Head.Offset)
		e.hasStored = true
	}
	if document.HasMark(e.stored, mark.Type) {
		e.stored = document.RemoveMark(e.stored, mark.Type)
	} else {
		e.stored = document.AddMark(e.stored, mark)
	}
}

// StoredMarks reports the marks the next insertion will carry, when they
// were set explicitly.
func (e *Editor) StoredMarks() ([]document.Mark, bool) {
	return e.stored, e.hasStored
}
