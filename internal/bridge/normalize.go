package bridge

import (
	"strings"
	"unicode"

	"github.com/debemdeboas/notes-editor/internal/document"
)

// normalizeBlocks rewrites blocks into the shape the markup can express:
// no empty paragraphs or headings, headings clamped to MaxHeadingLevel,
// list items that start with a paragraph, and adjacent lists of one kind or
// adjacent blockquotes merged, since the markup cannot keep them apart.
func normalizeBlocks(blocks []*document.Node) []*document.Node {
	var out []*document.Node
	for _, b := range blocks {
		if b == nil {
			continue
		}
		b = normalizeBlock(b)
		if b == nil {
			continue
		}
		if n := len(out); n > 0 && mergeable(out[n-1], b) {
			prev := out[n-1]
			prev.Content = append(prev.Content, b.Content...)
			if prev.Type == document.Blockquote {
				prev.Content = normalizeBlocks(prev.Content)
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

func mergeable(a, b *document.Node) bool {
	if a.Type != b.Type {
		return false
	}
	return a.Type == document.Blockquote || a.IsList()
}

func normalizeBlock(b *document.Node) *document.Node {
	switch b.Type {
	case document.Paragraph, document.Heading:
		inlines := normalizeInline(b.Content)
		if b.Type == document.Heading {
			inlines = flattenBreaks(inlines)
		}
		b.Content = trimInline(inlines)
		b.Text, b.Marks = "", nil
		if b.Type == document.Heading {
			b.Attrs = document.Attrs{Level: min(max(b.Attrs.Level, 1), MaxHeadingLevel)}
		} else {
			b.Attrs = document.Attrs{}
		}
		if len(b.Content) == 0 {
			return nil
		}
		return b

	case document.CodeBlock:
		code := b.TextContent()
		language := ""
		if fields := strings.Fields(b.Attrs.Language); len(fields) > 0 {
			language = fields[0]
		}
		return document.NewCodeBlock(language, code)

	case document.HorizontalRule:
		return document.NewHorizontalRule()

	case document.Blockquote:
		b.Content = normalizeBlocks(b.Content)
		b.Attrs, b.Text, b.Marks = document.Attrs{}, "", nil
		if len(b.Content) == 0 {
			return nil
		}
		return b

	case document.BulletList, document.OrderedList, document.TaskList:
		return normalizeList(b)

	case document.ListItem, document.TaskItem:
		kind := document.BulletList
		if b.Type == document.TaskItem {
			kind = document.TaskList
		}
		return normalizeList(document.NewList(kind, b))

	case document.Text, document.HardBreak:
		return normalizeBlock(document.NewParagraph(b))

	case document.Doc:
		if len(b.Content) == 0 {
			return nil
		}
		return normalizeBlock(document.NewBlockquote(b.Content...))

	default:
		return normalizeBlock(document.NewParagraph(document.NewText(b.TextContent())))
	}
}

func normalizeList(list *document.Node) *document.Node {
	itemType := document.ItemType(list.Type)
	start := 0
	if list.Type == document.OrderedList {
		start = max(list.Attrs.Start, 1)
	}

	var items []*document.Node
	for _, item := range list.Content {
		if item.Type != document.ListItem && item.Type != document.TaskItem {
			item = document.NewListItem(item)
		}

		checked := item.Attrs.Checked
		content := normalizeBlocks(item.Content)
		for _, b := range content {
			if b.Type == document.CodeBlock && len(b.Content) > 0 {
				b.Content[0].Text = collapseBlankLines(b.Content[0].Text)
			}
		}
		if len(content) == 0 || content[0].Type != document.Paragraph {
			content = append([]*document.Node{document.NewParagraph()}, content...)
		}

		if itemType != document.TaskItem && len(content) == 1 && len(content[0].Content) == 0 {
			continue
		}

		next := &document.Node{Type: itemType, Content: content}
		if itemType == document.TaskItem {
			next.Attrs.Checked = checked
		}
		items = append(items, next)
	}

	if len(items) == 0 {
		return nil
	}
	return &document.Node{Type: list.Type, Attrs: document.Attrs{Start: start}, Content: items}
}

// collapseBlankLines reduces every run of blank lines to one. Inside list
// items the markup cannot say how many blank lines a code block holds.
func collapseBlankLines(code string) string {
	lines := strings.Split(code, "\n")
	out := lines[:0]
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// normalizeInline folds line breaks inside text into hard breaks and merges
// text runs.
func normalizeInline(inlines []*document.Node) []*document.Node {
	var out []*document.Node
	for _, n := range inlines {
		switch n.Type {
		case document.HardBreak:
			out = append(out, document.NewHardBreak())
		case document.Text:
			for i, part := range strings.Split(n.Text, "\n") {
				if i > 0 {
					out = append(out, document.NewHardBreak())
				}
				if part != "" {
					out = append(out, document.NewText(part, n.Marks...))
				}
			}
		default:
			if t := n.TextContent(); t != "" {
				out = append(out, document.NewText(t, n.Marks...))
			}
		}
	}
	return document.NormalizeInline(out)
}

// flattenBreaks turns hard breaks into spaces. Headings are single-line.
func flattenBreaks(inlines []*document.Node) []*document.Node {
	for i, n := range inlines {
		if n.Type == document.HardBreak {
			inlines[i] = document.NewText(" ")
		}
	}
	return document.NormalizeInline(inlines)
}

// trimInline drops whitespace and hard breaks at the edges of a textblock
// and whitespace around every hard break.
func trimInline(inlines []*document.Node) []*document.Node {
	for len(inlines) > 0 && inlines[0].Type == document.HardBreak {
		inlines = inlines[1:]
	}
	for len(inlines) > 0 && inlines[len(inlines)-1].Type == document.HardBreak {
		inlines = inlines[:len(inlines)-1]
	}

	out := make([]*document.Node, 0, len(inlines))
	for i, n := range inlines {
		if n.Type != document.Text {
			out = append(out, n)
			continue
		}
		if i == 0 || inlines[i-1].Type == document.HardBreak {
			n.Text = strings.TrimLeftFunc(n.Text, unicode.IsSpace)
		}
		if i == len(inlines)-1 || inlines[i+1].Type == document.HardBreak {
			n.Text = strings.TrimRightFunc(n.Text, unicode.IsSpace)
		}
		if n.Text != "" {
			out = append(out, n)
		}
	}

	out = document.NormalizeInline(out)
	if len(out) != len(inlines) {
		// A text run that trimmed away can expose new edges.
		return trimInline(out)
	}
	return out
}
