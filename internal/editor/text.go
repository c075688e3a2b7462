package editor

import (
	"slices"
	"strconv"

	"github.com/debemdeboas/notes-editor/internal/document"
)

// deleteRange removes everything between from and to, joining the two
// textblocks, and returns the resulting cursor position.
func deleteRange(doc *document.Node, from, to Position) Position {
	paths := document.Textblocks(doc)
	first := doc.At(paths[from.Block])
	last := doc.At(paths[to.Block])

	tail := inlinesOf(last, to.Offset, last.InlineLen())
	if first.Type == document.CodeBlock {
		runes := []rune(first.TextContent())
		setCodeText(first, string(runes[:from.Offset])+inlineText(tail))
	} else {
		left, _ := splitInline(first.Content, from.Offset)
		first.Content = document.NormalizeInline(append(left, tail...))
	}

	if to.Block > from.Block {
		start, end := paths[from.Block], paths[to.Block]
		leaves := leafBlocks(doc)
		for i := len(leaves) - 1; i >= 0; i-- {
			p := leaves[i]
			if slices.Compare(p, start) > 0 && slices.Compare(p, end) <= 0 {
				removeAt(doc, p)
			}
		}
	}
	return from
}

// InsertText replaces the selection with text. Consecutive insertions into
// the same textblock share one undo step.
func (e *Editor) InsertText(text string) (bool, error) {
	if text == "" {
		return false, nil
	}

	key := ""
	if e.sel.Empty() {
		key = "insert:" + strconv.Itoa(e.sel.Head.Block)
	}

	marks := e.stored
	if !e.hasStored {
		from := e.sel.From()
		marks = marksAt(e.doc.At(document.Textblocks(e.doc)[from.Block]), from.Offset)
	}

	return e.apply(key, func(doc *document.Node) (Selection, error) {
		pos := e.sel.From()
		if !e.sel.Empty() {
			pos = deleteRange(doc, e.sel.From(), e.sel.To())
		}
		n := doc.At(document.Textblocks(doc)[pos.Block])
		added := insertInto(n, pos.Offset, text, marks)
		return Cursor(pos.Block, pos.Offset+added), nil
	})
}

// DeleteRange removes the selected content. A collapsed selection is left alone.
func (e *Editor) DeleteRange() (bool, error) {
	if e.sel.Empty() {
		return false, nil
	}
	return e.deleteSpan(e.sel.From(), e.sel.To())
}

// Backspace deletes the selection, or the position before the cursor. At the
// start of a textblock it joins the block onto the previous one.
func (e *Editor) Backspace() (bool, error) {
	if !e.sel.Empty() {
		return e.DeleteRange()
	}

	cur := e.sel.Head
	switch {
	case cur.Offset > 0:
		return e.deleteSpan(Position{Block: cur.Block, Offset: cur.Offset - 1}, cur)
	case cur.Block > 0:
		prev := e.doc.At(document.Textblocks(e.doc)[cur.Block-1])
		return e.deleteSpan(Position{Block: cur.Block - 1, Offset: prev.InlineLen()}, cur)
	}
	return false, nil
}

func (e *Editor) deleteSpan(from, to Position) (bool, error) {
	return e.apply("", func(doc *document.Node) (Selection, error) {
		p := deleteRange(doc, from, to)
		return Cursor(p.Block, p.Offset), nil
	})
}

// SplitBlock breaks the textblock at the cursor in two. Inside a list item it
// starts a new item; on an empty item it ends the list instead. In a code
// block it inserts a newline.
func (e *Editor) SplitBlock() (bool, error) {
	return e.apply("", func(doc *document.Node) (Selection, error) {
		pos := e.sel.From()
		if !e.sel.Empty() {
			pos = deleteRange(doc, e.sel.From(), e.sel.To())
		}

		p := document.Textblocks(doc)[pos.Block]
		node := doc.At(p)
		if node.Type == document.CodeBlock {
			insertInto(node, pos.Offset, "\n", nil)
			return Cursor(pos.Block, pos.Offset+1), nil
		}

		itemPath := p.Parent()
		parent := doc.At(itemPath)
		idx := p.Last()

		if isItem(parent) && idx == 0 && len(parent.Content) == 1 && node.InlineLen() == 0 {
			liftItems(doc, itemPath.Parent(), itemPath.Last(), itemPath.Last())
			return Cursor(pos.Block, 0), nil
		}

		left, right := splitInline(node.Content, pos.Offset)
		node.Content = document.NormalizeInline(left)
		next := document.NewParagraph(document.NormalizeInline(right)...)
		if node.Type == document.Heading && len(next.Content) > 0 {
			next.Type = document.Heading
			next.Attrs = node.Attrs
		}

		if isItem(parent) && idx == 0 {
			item := &document.Node{Type: parent.Type, Content: append([]*document.Node{next}, parent.Content[1:]...)}
			parent.Content = parent.Content[:1]
			list := doc.At(itemPath.Parent())
			list.Content = slices.Insert(list.Content, itemPath.Last()+1, item)
		} else {
			parent.Content = slices.Insert(parent.Content, idx+1, next)
		}
		return Cursor(pos.Block+1, 0), nil
	})
}
