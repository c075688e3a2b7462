package bridge

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown/ast"

	"github.com/debemdeboas/notes-editor/internal/document"
)

var (
	reEntity   = regexp.MustCompile(`^&#?[A-Za-z0-9]+;$`)
	reSoftWrap = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	reHTMLTag  = regexp.MustCompile(`(?i)^<(/?)\s*(u|ins|strong|b|em|i|s|strike|code|br)\s*/?\s*>$`)
)

var htmlTagMarks = map[string]document.MarkType{
	"u":      document.Underline,
	"ins":    document.Underline,
	"strong": document.Bold,
	"b":      document.Bold,
	"em":     document.Italic,
	"i":      document.Italic,
	"s":      document.Strike,
	"strike": document.Strike,
	"code":   document.Code,
}

// converter walks a gomarkdown tree and builds document nodes.
type converter struct {
	unknown []string
	tasks   taskRunes

	// open counts inline HTML tags such as <u> that are currently open
	// within the textblock being converted.
	open map[document.MarkType]int
}

func (c *converter) blocks(nodes []ast.Node) []*document.Node {
	var out []*document.Node
	for _, n := range nodes {
		out = append(out, c.block(n)...)
	}
	return out
}

func (c *converter) block(n ast.Node) []*document.Node {
	switch v := n.(type) {
	case *ast.Paragraph:
		return []*document.Node{document.NewParagraph(c.textblock(v)...)}

	case *ast.Heading:
		level := min(max(v.Level, 1), MaxHeadingLevel)
		return []*document.Node{document.NewHeading(level, c.textblock(v)...)}

	case *ast.BlockQuote:
		return []*document.Node{document.NewBlockquote(c.blocks(v.Children)...)}

	case *ast.List:
		return c.list(v)

	case *ast.CodeBlock:
		language := ""
		if fields := strings.Fields(string(v.Info)); len(fields) > 0 {
			language = fields[0]
		}
		code := strings.TrimSuffix(string(v.Literal), "\n")
		return []*document.Node{document.NewCodeBlock(language, code)}

	case *ast.HorizontalRule:
		return []*document.Node{document.NewHorizontalRule()}

	case *ast.HTMLBlock:
		return []*document.Node{rawParagraph(string(v.Literal))}

	default:
		c.unknown = append(c.unknown, fmt.Sprintf("%T", n))
		return []*document.Node{rawParagraph(rawText(n))}
	}
}

// list converts an ordered list directly. Bullet lists are split into runs
// of task items and plain items, one list node per run.
func (c *converter) list(l *ast.List) []*document.Node {
	if l.ListFlags&ast.ListTypeOrdered != 0 {
		list := document.NewList(document.OrderedList)
		list.Attrs.Start = max(l.Start, 1)
		for _, child := range l.Children {
			if item, ok := child.(*ast.ListItem); ok {
				list.Content = append(list.Content, document.NewListItem(c.blocks(item.Children)...))
			}
		}
		return []*document.Node{list}
	}

	var out []*document.Node
	var cur *document.Node
	for _, child := range l.Children {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		node := c.item(item)
		kind := document.BulletList
		if node.Type == document.TaskItem {
			kind = document.TaskList
		}
		if cur == nil || cur.Type != kind {
			cur = document.NewList(kind)
			out = append(out, cur)
		}
		cur.Content = append(cur.Content, node)
	}
	return out
}

func (c *converter) item(item *ast.ListItem) *document.Node {
	blocks := c.blocks(item.Children)
	if len(blocks) > 0 && blocks[0].Type == document.Paragraph {
		first := blocks[0]
		if len(first.Content) > 0 && first.Content[0].Type == document.Text {
			if rest, checked, ok := c.tasks.take(first.Content[0].Text); ok {
				first.Content[0].Text = rest
				return document.NewTaskItem(checked, blocks...)
			}
		}
	}
	return document.NewListItem(blocks...)
}

// textblock converts the inline children of a paragraph or heading.
func (c *converter) textblock(n ast.Node) []*document.Node {
	c.open = map[document.MarkType]int{}
	var out []*document.Node
	for _, child := range n.GetChildren() {
		c.inline(child, nil, &out)
	}
	return out
}

func (c *converter) inline(n ast.Node, marks []document.Mark, out *[]*document.Node) {
	switch v := n.(type) {
	case *ast.Text:
		text := string(v.Literal)
		if reEntity.MatchString(text) {
			text = html.UnescapeString(text)
		}
		c.text(reSoftWrap.ReplaceAllString(text, " "), marks, out)

	case *ast.Code:
		c.text(string(v.Literal), withMark(marks, document.Mark{Type: document.Code}), out)

	case *ast.Strong:
		c.children(v, withMark(marks, document.Mark{Type: document.Bold}), out)

	case *ast.Emph:
		c.children(v, withMark(marks, document.Mark{Type: document.Italic}), out)

	case *ast.Del:
		c.children(v, withMark(marks, document.Mark{Type: document.Strike}), out)

	case *ast.Link:
		link := document.Mark{Type: document.Link, Href: string(v.Destination), Title: string(v.Title)}
		c.children(v, withMark(marks, link), out)

	case *ast.Image:
		alt := ""
		for _, child := range v.Children {
			alt += rawText(child)
		}
		c.text("!["+alt+"]("+string(v.Destination)+")", marks, out)

	case *ast.Hardbreak:
		*out = append(*out, document.NewHardBreak())

	case *ast.Softbreak:
		c.text(" ", marks, out)

	case *ast.NonBlockingSpace:
		c.text(" ", marks, out)

	case *ast.HTMLSpan:
		c.htmlSpan(string(v.Literal), marks, out)

	default:
		if container := n.AsContainer(); container != nil && len(container.Children) > 0 {
			c.children(n, marks, out)
			return
		}
		c.text(rawText(n), marks, out)
	}
}

func (c *converter) children(n ast.Node, marks []document.Mark, out *[]*document.Node) {
	for _, child := range n.GetChildren() {
		c.inline(child, marks, out)
	}
}

func withMark(marks []document.Mark, m document.Mark) []document.Mark {
	out := make([]document.Mark, 0, len(marks)+1)
	return append(append(out, marks...), m)
}

func (c *converter) text(text string, marks []document.Mark, out *[]*document.Node) {
	if text == "" {
		return
	}
	all := make([]document.Mark, 0, len(marks)+len(c.open))
	all = append(all, marks...)
	for _, t := range document.MarkOrder {
		if c.open[t] > 0 {
			all = append(all, document.Mark{Type: t})
		}
	}
	*out = append(*out, document.NewText(text, document.SortMarks(all)...))
}

// htmlSpan toggles marks for the small set of inline tags the serialiser
// emits. Any other tag is kept as literal text.
func (c *converter) htmlSpan(tag string, marks []document.Mark, out *[]*document.Node) {
	m := reHTMLTag.FindStringSubmatch(tag)
	if m == nil {
		c.text(tag, marks, out)
		return
	}

	name := strings.ToLower(m[2])
	if name == "br" {
		*out = append(*out, document.NewHardBreak())
		return
	}

	mark := htmlTagMarks[name]
	if m[1] == "" {
		c.open[mark]++
		return
	}
	if c.open[mark] == 0 {
		c.text(tag, marks, out)
		return
	}
	c.open[mark]--
}

// rawText recovers the source text of a node the converter does not model.
func rawText(n ast.Node) string {
	if leaf := n.AsLeaf(); leaf != nil {
		if len(leaf.Literal) > 0 {
			return string(leaf.Literal)
		}
		return string(leaf.Content)
	}
	container := n.AsContainer()
	if container == nil {
		return ""
	}
	if len(container.Literal) > 0 {
		return string(container.Literal)
	}
	var sb strings.Builder
	for _, child := range container.Children {
		sb.WriteString(rawText(child))
	}
	if sb.Len() == 0 {
		return string(container.Content)
	}
	return sb.String()
}
