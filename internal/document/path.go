package document

import "slices"

// Path addresses a node by child indexes from the document root.
type Path []int

// At returns the node at p, or nil when p does not resolve.
func (n *Node) At(p Path) *Node {
	cur := n
	for _, i := range p {
		if cur == nil || i < 0 || i >= len(cur.Content) {
			return nil
		}
		cur = cur.Content[i]
	}
	return cur
}

func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// HasPrefix reports whether q lies inside p or equals it.
func (p Path) HasPrefix(q Path) bool {
	return len(p) >= len(q) && slices.Equal(p[:len(q)], q)
}

// Textblocks lists the paths of every paragraph, heading and code block in document order.
func Textblocks(doc *Node) []Path {
	var out []Path
	Walk(doc, func(n *Node, p Path) bool {
		if n.IsTextblock() {
			out = append(out, p)
			return false
		}
		return !n.IsInline()
	})
	return out
}
