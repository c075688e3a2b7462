package editor

import (
	"fmt"
	"slices"

	"github.com/debemdeboas/notes-editor/internal/document"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
)

// ToggleHeading turns the selected paragraphs into headings of level, or back
// into paragraphs when they all already are. Levels above the configured
// maximum are clamped.
func (e *Editor) ToggleHeading(level int) (bool, error) {
	if level < 1 {
		return false, apperrors.NewInvalidInput(fmt.Sprintf("invalid heading level %d", level))
	}
	level = min(level, e.maxHeading)

	return e.apply("", func(doc *document.Node) (Selection, error) {
		var targets []*document.Node
		for _, r := range textRanges(doc, e.sel) {
			if r.node.Type != document.CodeBlock {
				targets = append(targets, r.node)
			}
		}

		all := len(targets) > 0
		for _, n := range targets {
			if n.Type != document.Heading || n.Attrs.Level != level {
				all = false
				break
			}
		}

		for _, n := range targets {
			if all {
				n.Type = document.Paragraph
				n.Attrs = document.Attrs{}
			} else {
				n.Type = document.Heading
				n.Attrs = document.Attrs{Level: level}
			}
		}
		return e.sel, nil
	})
}

// ToggleCodeBlock turns the selected textblocks into code blocks, or back into
// paragraphs when they all already are.
func (e *Editor) ToggleCodeBlock() (bool, error) {
	return e.apply("", func(doc *document.Node) (Selection, error) {
		ranges := textRanges(doc, e.sel)

		all := true
		for _, r := range ranges {
			if r.node.Type != document.CodeBlock {
				all = false
				break
			}
		}

		for _, r := range ranges {
			n := r.node
			text := n.TextContent()
			switch {
			case all:
				n.Type = document.Paragraph
				n.Attrs = document.Attrs{}
				n.Content = textToInline(text, nil)
			case n.Type != document.CodeBlock:
				n.Type = document.CodeBlock
				n.Attrs = document.Attrs{}
				setCodeText(n, text)
			}
		}
		return e.sel, nil
	})
}

// ToggleBlockquote lifts the selection out of its blockquotes when every
// selected textblock is quoted, and wraps it in a new blockquote otherwise.
func (e *Editor) ToggleBlockquote() (bool, error) {
	return e.apply("", func(doc *document.Node) (Selection, error) {
		paths := document.Textblocks(doc)
		from, to := e.sel.From().Block, e.sel.To().Block

		isQuote := func(n *document.Node) bool { return n.Type == document.Blockquote }

		var quotes []document.Path
		quoted := true
		for b := from; b <= to; b++ {
			qp, ok := nearest(doc, paths[b], isQuote)
			if !ok {
				quoted = false
				break
			}
			if !slices.ContainsFunc(quotes, func(p document.Path) bool { return slices.Equal(p, qp) }) {
				quotes = append(quotes, qp)
			}
		}

		if quoted {
			slices.SortFunc(quotes, func(a, b document.Path) int { return slices.Compare(b, a) })
			for _, qp := range quotes {
				replace(doc, qp, doc.At(qp).Content...)
			}
			return e.sel, nil
		}

		c, first, last := blockRange(doc, paths[from], paths[to])
		parent := doc.At(c)
		quote := document.NewBlockquote(slices.Clone(parent.Content[first : last+1])...)
		parent.Content = slices.Replace(parent.Content, first, last+1, quote)
		return e.sel, nil
	})
}

type listGroup struct {
	path        document.Path
	first, last int
}

// selectedLists groups the selected textblocks by their closest list. ok is
// false when some textblock is not inside a list.
func selectedLists(doc *document.Node, sel Selection) (groups []listGroup, ok bool) {
	paths := document.Textblocks(doc)
	isList := func(n *document.Node) bool { return n.IsList() }

	for b := sel.From().Block; b <= sel.To().Block; b++ {
		lp, found := nearest(doc, paths[b], isList)
		if !found {
			return nil, false
		}
		item := paths[b][len(lp)]

		i := slices.IndexFunc(groups, func(g listGroup) bool { return slices.Equal(g.path, lp) })
		if i < 0 {
			groups = append(groups, listGroup{path: lp, first: item, last: item})
			continue
		}
		groups[i].first = min(groups[i].first, item)
		groups[i].last = max(groups[i].last, item)
	}
	return groups, true
}

// ToggleList applies list kind to the selection. Selections already in lists
// of that kind are lifted out, selections in other lists are converted, and
// anything else is wrapped in a new list.
func (e *Editor) ToggleList(kind document.NodeType) (bool, error) {
	if !document.IsListType(kind) {
		return false, apperrors.NewInvalidInput(fmt.Sprintf("%q is not a list kind", kind))
	}

	return e.apply("", func(doc *document.Node) (Selection, error) {
		groups, inLists := selectedLists(doc, e.sel)

		if inLists {
			same := true
			for _, g := range groups {
				if doc.At(g.path).Type != kind {
					same = false
					break
				}
			}

			if same {
				slices.SortFunc(groups, func(a, b listGroup) int { return slices.Compare(b.path, a.path) })
				for _, g := range groups {
					liftItems(doc, g.path, g.first, g.last)
				}
			} else {
				for _, g := range groups {
					convertList(doc.At(g.path), kind)
				}
			}
			return e.sel, nil
		}

		paths := document.Textblocks(doc)
		c, first, last := blockRange(doc, paths[e.sel.From().Block], paths[e.sel.To().Block])
		parent := doc.At(c)

		var items []*document.Node
		for _, child := range parent.Content[first : last+1] {
			if child.IsList() {
				convertList(child, kind)
				items = append(items, child.Content...)
				continue
			}
			items = append(items, newItem(kind, child))
		}
		parent.Content = slices.Replace(parent.Content, first, last+1, document.NewList(kind, items...))
		return e.sel, nil
	})
}

// ToggleTaskItem checks every selected task item, or unchecks them all when
// they are already checked. Outside a task list it starts one.
func (e *Editor) ToggleTaskItem() (bool, error) {
	isTask := func(n *document.Node) bool { return n.Type == document.TaskItem }

	paths := document.Textblocks(e.doc)
	hasTask := false
	for b := e.sel.From().Block; b <= e.sel.To().Block; b++ {
		if _, ok := nearest(e.doc, paths[b], isTask); ok {
			hasTask = true
			break
		}
	}
	if !hasTask {
		return e.ToggleList(document.TaskList)
	}

	return e.apply("", func(doc *document.Node) (Selection, error) {
		var items []*document.Node
		for b := e.sel.From().Block; b <= e.sel.To().Block; b++ {
			if ip, ok := nearest(doc, paths[b], isTask); ok {
				if item := doc.At(ip); !slices.Contains(items, item) {
					items = append(items, item)
				}
			}
		}

		checked := true
		for _, item := range items {
			if !item.Attrs.Checked {
				checked = false
				break
			}
		}
		for _, item := range items {
			item.Attrs.Checked = !checked
		}
		return e.sel, nil
	})
}
