package editor

import (
	"slices"

	"github.com/debemdeboas/notes-editor/internal/document"
)

func isItem(n *document.Node) bool {
	return n != nil && (n.Type == document.ListItem || n.Type == document.TaskItem)
}

// isContainer reports whether n may hold a run of blocks.
func isContainer(n *document.Node) bool {
	return n.Type == document.Doc || n.Type == document.Blockquote || isItem(n)
}

// nearest returns the closest proper ancestor of p that satisfies match.
func nearest(doc *document.Node, p document.Path, match func(*document.Node) bool) (document.Path, bool) {
	for q := p.Parent(); len(q) > 0; q = q.Parent() {
		if match(doc.At(q)) {
			return q, true
		}
	}
	return nil, false
}

// blockRange finds the innermost container holding both textblocks and the
// indexes of its children that span them.
func blockRange(doc *document.Node, from, to document.Path) (container document.Path, first, last int) {
	k := 0
	for k < len(from) && k < len(to) && from[k] == to[k] {
		k++
	}
	c := slices.Clone(from[:k])
	if k == len(from) || k == len(to) {
		c = c.Parent()
	}
	for !isContainer(doc.At(c)) {
		c = c.Parent()
	}
	return c, from[len(c)], to[len(c)]
}

// leafBlocks lists textblocks and horizontal rules in document order.
func leafBlocks(doc *document.Node) []document.Path {
	var out []document.Path
	document.Walk(doc, func(n *document.Node, p document.Path) bool {
		if n.IsTextblock() || n.Type == document.HorizontalRule {
			out = append(out, p)
			return false
		}
		return !n.IsInline()
	})
	return out
}

// removeAt deletes the node at p, then any ancestors left empty.
func removeAt(doc *document.Node, p document.Path) {
	for len(p) > 0 {
		parent := doc.At(p.Parent())
		i := p.Last()
		parent.Content = slices.Delete(parent.Content, i, i+1)

		p = p.Parent()
		if len(p) == 0 || len(parent.Content) > 0 {
			return
		}
		if !parent.IsList() && !isItem(parent) && parent.Type != document.Blockquote {
			return
		}
	}
}

// replace swaps the node at p for nodes.
func replace(doc *document.Node, p document.Path, nodes ...*document.Node) {
	parent := doc.At(p.Parent())
	i := p.Last()
	parent.Content = slices.Replace(parent.Content, i, i+1, nodes...)
}

// liftItems moves the blocks of items first..last out of the list at lp,
// splitting the list around them.
func liftItems(doc *document.Node, lp document.Path, first, last int) {
	list := doc.At(lp)

	var out []*document.Node
	if first > 0 {
		before := &document.Node{Type: list.Type, Attrs: list.Attrs, Content: slices.Clone(list.Content[:first])}
		out = append(out, before)
	}
	for _, item := range list.Content[first : last+1] {
		out = append(out, item.Content...)
	}
	if last+1 < len(list.Content) {
		after := &document.Node{Type: list.Type, Attrs: list.Attrs, Content: slices.Clone(list.Content[last+1:])}
		if after.Type == document.OrderedList {
			after.Attrs.Start = list.Attrs.Start + last + 1
		}
		out = append(out, after)
	}
	replace(doc, lp, out...)
}

func newItem(kind document.NodeType, blocks ...*document.Node) *document.Node {
	if kind == document.TaskList {
		return document.NewTaskItem(false, blocks...)
	}
	return document.NewListItem(blocks...)
}

// convertList changes the kind of list n in place. Checked state survives
// only between task lists.
func convertList(n *document.Node, kind document.NodeType) {
	n.Type = kind
	n.Attrs = document.Attrs{}
	if kind == document.OrderedList {
		n.Attrs.Start = 1
	}
	for _, item := range n.Content {
		item.Type = document.ItemType(kind)
		item.Attrs = document.Attrs{Checked: kind == document.TaskList && item.Attrs.Checked}
	}
}
