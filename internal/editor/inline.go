package editor

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/debemdeboas/notes-editor/internal/document"
)

func nodeLen(n *document.Node) int {
	switch n.Type {
	case document.Text:
		return utf8.RuneCountInString(n.Text)
	case document.HardBreak:
		return 1
	}
	return 0
}

// splitInline cuts inlines at off. Both halves are copies.
func splitInline(inlines []*document.Node, off int) (left, right []*document.Node) {
	pos := 0
	for _, n := range inlines {
		size := nodeLen(n)
		switch {
		case pos+size <= off:
			left = append(left, n.Clone())
		case pos >= off:
			right = append(right, n.Clone())
		default:
			runes := []rune(n.Text)
			cut := off - pos
			l, r := n.Clone(), n.Clone()
			l.Text = string(runes[:cut])
			r.Text = string(runes[cut:])
			left = append(left, l)
			right = append(right, r)
		}
		pos += size
	}
	return left, right
}

// textToInline turns plain text into text nodes separated by hard breaks.
func textToInline(text string, marks []document.Mark) []*document.Node {
	var out []*document.Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, document.NewHardBreak())
		}
		if line != "" {
			out = append(out, document.NewText(line, slices.Clone(marks)...))
		}
	}
	return document.NormalizeInline(out)
}

func inlineText(inlines []*document.Node) string {
	return document.NewParagraph(inlines...).TextContent()
}

func setCodeText(n *document.Node, text string) {
	n.Content = nil
	if text != "" {
		n.Content = []*document.Node{document.NewText(text)}
	}
}

// inlinesOf copies the inline content of textblock n between from and to.
func inlinesOf(n *document.Node, from, to int) []*document.Node {
	if n.Type == document.CodeBlock {
		runes := []rune(n.TextContent())
		return textToInline(string(runes[from:to]), nil)
	}
	_, rest := splitInline(n.Content, from)
	mid, _ := splitInline(rest, to-from)
	return mid
}

// marksAt returns the marks text typed at off would inherit: those of the
// preceding character, or of the following one at the start of a block.
func marksAt(n *document.Node, off int) []document.Mark {
	if n.Type == document.CodeBlock {
		return nil
	}
	left, right := splitInline(n.Content, off)
	if len(left) > 0 {
		if last := left[len(left)-1]; last.Type == document.Text {
			return last.Marks
		}
		return nil
	}
	if len(right) > 0 && right[0].Type == document.Text {
		return right[0].Marks
	}
	return nil
}

// insertInto writes text at off and returns the number of positions added.
func insertInto(n *document.Node, off int, text string, marks []document.Mark) int {
	if n.Type == document.CodeBlock {
		runes := []rune(n.TextContent())
		setCodeText(n, string(runes[:off])+text+string(runes[off:]))
		return utf8.RuneCountInString(text)
	}

	left, right := splitInline(n.Content, off)
	content := append(left, textToInline(text, marks)...)
	n.Content = document.NormalizeInline(append(content, right...))
	return utf8.RuneCountInString(text)
}
