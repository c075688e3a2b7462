package bridge

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/debemdeboas/notes-editor/internal/document"
)

// itemIndent is how far content nested under a list marker is indented.
// Four spaces keeps every level apart however deep the nesting goes.
const itemIndent = "    "

var reFenceRun = regexp.MustCompile("(?m)^[ \t]*(`{3,})")

func renderBlocks(blocks []*document.Node) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderBlock(b *document.Node) string {
	switch b.Type {
	case document.Paragraph:
		return renderInline(b.Content, false)
	case document.Heading:
		return strings.Repeat("#", b.Attrs.Level) + " " + renderInline(b.Content, true)
	case document.CodeBlock:
		return renderCode(b)
	case document.HorizontalRule:
		return "---"
	case document.Blockquote:
		return prefixLines(renderBlocks(b.Content), "> ", ">")
	case document.BulletList, document.OrderedList, document.TaskList:
		return renderList(b)
	}
	return ""
}

func renderCode(b *document.Node) string {
	code := b.TextContent()
	n := 3
	for _, m := range reFenceRun.FindAllStringSubmatch(code, -1) {
		n = max(n, len(m[1])+1)
	}
	fence := strings.Repeat("`", n)
	return fence + b.Attrs.Language + "\n" + code + "\n" + fence
}

func renderList(list *document.Node) string {
	items := make([]string, 0, len(list.Content))
	for i, item := range list.Content {
		items = append(items, renderItem(listMarker(list, i), item))
	}
	return strings.Join(items, "\n")
}

func listMarker(list *document.Node, i int) string {
	switch list.Type {
	case document.OrderedList:
		return strconv.Itoa(list.Attrs.Start+i) + ". "
	case document.TaskList:
		if list.Content[i].Attrs.Checked {
			return "- " + taskMarkerChecked + " "
		}
		return "- " + taskMarkerUnchecked + " "
	}
	return "- "
}

// renderItem writes the marker, the first paragraph on the marker line and
// everything else indented below it. A list that directly follows the first
// paragraph is written without a blank line so the item stays tight, unless
// it is an ordered list that does not start at 1: such a list cannot
// interrupt a paragraph and would be read back as a continuation line.
func renderItem(marker string, item *document.Node) string {
	first := renderInline(item.Content[0].Content, false)
	rest := item.Content[1:]

	var sb strings.Builder
	sb.WriteString(marker)
	if first == "" {
		if len(rest) > 0 {
			sb.WriteString("\n\n")
			sb.WriteString(prefixLines(renderBlocks(rest), itemIndent, ""))
		}
		return sb.String()
	}

	sb.WriteString(prefixLines(first, itemIndent, "")[len(itemIndent):])
	if len(rest) > 0 && tightList(rest[0]) {
		sb.WriteString("\n")
		sb.WriteString(prefixLines(renderList(rest[0]), itemIndent, ""))
		rest = rest[1:]
	}
	if len(rest) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(prefixLines(renderBlocks(rest), itemIndent, ""))
	}
	return sb.String()
}

func tightList(b *document.Node) bool {
	if !b.IsList() {
		return false
	}
	return b.Type != document.OrderedList || b.Attrs.Start == 1
}

// prefixLines puts prefix in front of every line, or empty on blank lines.
func prefixLines(text, prefix, empty string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = empty
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
