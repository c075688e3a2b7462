// Package document defines the structured, tree-shaped representation the
// editor mutates. The shape mirrors the node/mark schema used by rich-text
// editors so documents can be exchanged as JSON with a browser front end.
package document

import (
	"slices"
	"strings"
	"unicode/utf8"
)

type NodeType string

const (
	Doc            NodeType = "doc"
	Paragraph      NodeType = "paragraph"
	Heading        NodeType = "heading"
	BulletList     NodeType = "bulletList"
	OrderedList    NodeType = "orderedList"
	TaskList       NodeType = "taskList"
	ListItem       NodeType = "listItem"
	TaskItem       NodeType = "taskItem"
	Blockquote     NodeType = "blockquote"
	CodeBlock      NodeType = "codeBlock"
	HorizontalRule NodeType = "horizontalRule"
	Text           NodeType = "text"
	HardBreak      NodeType = "hardBreak"
)

type MarkType string

const (
	Link      MarkType = "link"
	Bold      MarkType = "bold"
	Italic    MarkType = "italic"
	Strike    MarkType = "strike"
	Underline MarkType = "underline"
	Code      MarkType = "code"
)

// MarkOrder is the canonical nesting order, outermost first.
var MarkOrder = []MarkType{Link, Bold, Italic, Strike, Underline, Code}

type Mark struct {
	Type  MarkType `json:"type"`
	Href  string   `json:"href,omitempty"`
	Title string   `json:"title,omitempty"`
}

type Attrs struct {
	Level    int    `json:"level,omitempty"`
	Checked  bool   `json:"checked,omitempty"`
	Language string `json:"language,omitempty"`
	Start    int    `json:"start,omitempty"`
}

type Node struct {
	Type    NodeType `json:"type"`
	Attrs   Attrs    `json:"attrs"`
	Content []*Node  `json:"content,omitempty"`
	Text    string   `json:"text,omitempty"`
	Marks   []Mark   `json:"marks,omitempty"`
}

func New(blocks ...*Node) *Node {
	return &Node{Type: Doc, Content: blocks}
}

func NewParagraph(inlines ...*Node) *Node {
	return &Node{Type: Paragraph, Content: inlines}
}

func NewHeading(level int, inlines ...*Node) *Node {
	return &Node{Type: Heading, Attrs: Attrs{Level: level}, Content: inlines}
}

func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: Text, Text: text, Marks: marks}
}

func NewHardBreak() *Node {
	return &Node{Type: HardBreak}
}

func NewCodeBlock(language, code string) *Node {
	n := &Node{Type: CodeBlock, Attrs: Attrs{Language: language}}
	if code != "" {
		n.Content = []*Node{NewText(code)}
	}
	return n
}

func NewList(kind NodeType, items ...*Node) *Node {
	n := &Node{Type: kind, Content: items}
	if kind == OrderedList {
		n.Attrs.Start = 1
	}
	return n
}

func NewListItem(blocks ...*Node) *Node {
	return &Node{Type: ListItem, Content: blocks}
}

func NewTaskItem(checked bool, blocks ...*Node) *Node {
	return &Node{Type: TaskItem, Attrs: Attrs{Checked: checked}, Content: blocks}
}

func NewBlockquote(blocks ...*Node) *Node {
	return &Node{Type: Blockquote, Content: blocks}
}

func NewHorizontalRule() *Node {
	return &Node{Type: HorizontalRule}
}

func (n *Node) IsTextblock() bool {
	switch n.Type {
	case Paragraph, Heading, CodeBlock:
		return true
	}
	return false
}

func (n *Node) IsList() bool {
	return IsListType(n.Type)
}

func IsListType(t NodeType) bool {
	switch t {
	case BulletList, OrderedList, TaskList:
		return true
	}
	return false
}

func (n *Node) IsInline() bool {
	return n.Type == Text || n.Type == HardBreak
}

// ItemType returns the item node type a list of kind t holds.
func ItemType(t NodeType) NodeType {
	if t == TaskList {
		return TaskItem
	}
	return ListItem
}

func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Attrs: n.Attrs, Text: n.Text}
	if len(n.Marks) > 0 {
		c.Marks = slices.Clone(n.Marks)
	}
	if len(n.Content) > 0 {
		c.Content = make([]*Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = child.Clone()
		}
	}
	return c
}

// Equal reports structural equality. Nil and empty content or mark slices compare equal.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Attrs != b.Attrs || a.Text != b.Text {
		return false
	}
	if !slices.Equal(a.Marks, b.Marks) {
		return false
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !Equal(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

// TextContent concatenates the text of n. Hard breaks read as newlines.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	switch n.Type {
	case Text:
		sb.WriteString(n.Text)
	case HardBreak:
		sb.WriteByte('\n')
	default:
		for _, c := range n.Content {
			c.writeText(sb)
		}
	}
}

// InlineLen is the length of a textblock in positions: one per rune, one per hard break.
func (n *Node) InlineLen() int {
	total := 0
	for _, c := range n.Content {
		switch c.Type {
		case Text:
			total += utf8.RuneCountInString(c.Text)
		case HardBreak:
			total++
		}
	}
	return total
}

// Walk visits n and its descendants depth first. Returning false skips the children.
func Walk(n *Node, fn func(n *Node, path Path) bool) {
	walk(n, nil, fn)
}

func walk(n *Node, path Path, fn func(*Node, Path) bool) {
	if !fn(n, path) {
		return
	}
	for i, c := range n.Content {
		walk(c, append(slices.Clone(path), i), fn)
	}
}
