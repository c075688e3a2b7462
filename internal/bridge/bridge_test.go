package bridge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/document"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	SetLogger(logger)
	if bridgeLogger.GetLevel() != zerolog.Disabled {
		t.Error("Expected logger to be set")
	}
}

func dump(n *document.Node) string {
	b, _ := json.MarshalIndent(n, "", "  ")
	return string(b)
}

func TestToDocument(t *testing.T) {
	bold := document.Mark{Type: document.Bold}
	italic := document.Mark{Type: document.Italic}
	underline := document.Mark{Type: document.Underline}

	tests := []struct {
		name   string
		markup string
		want   *document.Node
	}{
		{
			name:   "checked task item",
			markup: "- [x] Buy milk",
			want: document.New(document.NewList(document.TaskList,
				document.NewTaskItem(true, document.NewParagraph(document.NewText("Buy milk"))))),
		},
		{
			name:   "upper case checked marker",
			markup: "- [X] Buy milk",
			want: document.New(document.NewList(document.TaskList,
				document.NewTaskItem(true, document.NewParagraph(document.NewText("Buy milk"))))),
		},
		{
			name:   "mixed task and plain items split into two lists",
			markup: "- [ ] todo\n- plain",
			want: document.New(
				document.NewList(document.TaskList,
					document.NewTaskItem(false, document.NewParagraph(document.NewText("todo")))),
				document.NewList(document.BulletList,
					document.NewListItem(document.NewParagraph(document.NewText("plain")))),
			),
		},
		{
			name:   "headings deeper than three are clamped",
			markup: "##### Deep",
			want:   document.New(document.NewHeading(3, document.NewText("Deep"))),
		},
		{
			name:   "marks",
			markup: "Some **bold**, _italic_ and <u>under</u>.",
			want: document.New(document.NewParagraph(
				document.NewText("Some "),
				document.NewText("bold", bold),
				document.NewText(", "),
				document.NewText("italic", italic),
				document.NewText(" and "),
				document.NewText("under", underline),
				document.NewText("."),
			)),
		},
		{
			name:   "nested marks",
			markup: "**_both_**",
			want:   document.New(document.NewParagraph(document.NewText("both", bold, italic))),
		},
		{
			name:   "ordered list keeps its start",
			markup: "3. three\n4. four",
			want: func() *document.Node {
				list := document.NewList(document.OrderedList,
					document.NewListItem(document.NewParagraph(document.NewText("three"))),
					document.NewListItem(document.NewParagraph(document.NewText("four"))))
				list.Attrs.Start = 3
				return document.New(list)
			}(),
		},
		{
			name:   "fenced code",
			markup: "```go\nfmt.Println(\"- [ ] not a task\")\n```",
			want:   document.New(document.NewCodeBlock("go", "fmt.Println(\"- [ ] not a task\")")),
		},
		{
			name:   "blockquote",
			markup: "> quoted\n> text",
			want:   document.New(document.NewBlockquote(document.NewParagraph(document.NewText("quoted text")))),
		},
		{
			name:   "hard break",
			markup: "one\\\ntwo",
			want: document.New(document.NewParagraph(
				document.NewText("one"), document.NewHardBreak(), document.NewText("two"))),
		},
		{
			name:   "empty",
			markup: "  \n\n ",
			want:   document.New(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDocument(tt.markup)
			if !document.Equal(got, tt.want) {
				t.Errorf("ToDocument(%q)\n got: %s\nwant: %s", tt.markup, dump(got), dump(tt.want))
			}
		})
	}
}

func orderedFrom(start int, items ...*document.Node) *document.Node {
	list := document.NewList(document.OrderedList, items...)
	list.Attrs.Start = start
	return list
}

func TestToMarkup(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Node
		want string
	}{
		{
			name: "task items reflect their state",
			doc: document.New(document.NewList(document.TaskList,
				document.NewTaskItem(true, document.NewParagraph(document.NewText("Buy milk"))),
				document.NewTaskItem(false, document.NewParagraph(document.NewText("Bake bread"))))),
			want: "- [x] Buy milk\n- [ ] Bake bread",
		},
		{
			name: "blocks are separated by blank lines",
			doc: document.New(
				document.NewHeading(2, document.NewText("Plan")),
				document.NewParagraph(document.NewText("Text")),
				document.NewHorizontalRule(),
				document.NewCodeBlock("", "x := 1"),
			),
			want: "## Plan\n\nText\n\n---\n\n```\nx := 1\n```",
		},
		{
			name: "nested list",
			doc: document.New(document.NewList(document.BulletList,
				document.NewListItem(document.NewParagraph(document.NewText("a")),
					document.NewList(document.OrderedList,
						document.NewListItem(document.NewParagraph(document.NewText("b"))))))),
			want: "- a\n    1. b",
		},
		{
			name: "nested ordered list starting past one",
			doc: document.New(document.NewList(document.BulletList,
				document.NewListItem(document.NewParagraph(document.NewText("parent")),
					orderedFrom(2, document.NewListItem(document.NewParagraph(document.NewText("child"))))))),
			want: "- parent\n\n    2. child",
		},
		{
			name: "block syntax in text is escaped",
			doc:  document.New(document.NewParagraph(document.NewText("# not a heading *nor* this"))),
			want: "\\# not a heading \\*nor\\* this",
		},
		{
			name: "dot before hash at line start is escaped",
			doc:  document.New(document.NewParagraph(document.NewText(".# not special"))),
			want: "\\.# not special",
		},
		{
			name: "backslash before a closing delimiter",
			doc: document.New(document.NewParagraph(
				document.NewText("a\\", document.Mark{Type: document.Italic}),
				document.NewText(" b"))),
			want: "_a&#92;_ b",
		},
		{
			name: "intraword italic uses tags",
			doc: document.New(document.NewParagraph(
				document.NewText("in", document.Mark{Type: document.Italic}),
				document.NewText("word"))),
			want: "<em>in</em>word",
		},
		{
			name: "marks do not swallow surrounding spaces",
			doc: document.New(document.NewParagraph(
				document.NewText("a "),
				document.NewText(" b ", document.Mark{Type: document.Bold}),
				document.NewText(" c"))),
			want: "a  **b**  c",
		},
		{
			name: "code span with backticks",
			doc: document.New(document.NewParagraph(
				document.NewText("a`b", document.Mark{Type: document.Code}))),
			want: "``a`b``",
		},
		{
			name: "link",
			doc: document.New(document.NewParagraph(
				document.NewText("site", document.Mark{Type: document.Link, Href: "https://example.com/a b"}))),
			want: "[site](https://example.com/a%20b)",
		},
		{
			name: "empty paragraphs are dropped",
			doc:  document.New(document.NewParagraph(), document.NewParagraph(document.NewText("x"))),
			want: "x",
		},
		{
			name: "nil document",
			doc:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMarkup(tt.doc); got != tt.want {
				t.Errorf("ToMarkup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToMarkupDoesNotModifyDocument(t *testing.T) {
	doc := document.New(document.NewParagraph(document.NewText("  padded  ")), document.NewParagraph())
	before := doc.Clone()
	ToMarkup(doc)
	if !document.Equal(doc, before) {
		t.Error("Expected ToMarkup to leave its argument untouched")
	}
}

var canonicalInputs = []string{
	"",
	"plain",
	"# Title\n\nSome **bold** and _italic_ text.",
	"* a\n* b\n\n1. one\n2. two",
	"- [x] Buy milk\n- [ ] Bake bread\n    - [x] Flour",
	"> quote\n>\n> - item",
	"```go\nfunc main() {\n\n}\n```",
	"Hello  \nworld",
	"a_b_c and 2*3*4",
	"__strong__ *em* ~~gone~~ `code` <u>under</u>",
	"1) first\n2) second",
	"Setext\n===",
	"- a\n\n  b",
	"- item\n\n    ```\n    code\n\n    more\n    ```",
	"<div>\nraw html\n</div>",
	"text with &amp; and &copy; and \\&lt;",
	"[link](http://example.com \"title\") and ![image](/img.png)",
	"- \n- [ ]\n-",
	"line\n---\n\n***",
	"#hashtag and #another",
	"9. nine\n10. ten",
	"> > nested\n> quote",
	"- parent\n\n    2. child",
	"- parent\n    2. child",
	".#\n!",
	".# special",
	"~\\  \n!~",
	"<strong>a\\\\</strong> and <s>b\\\\</s>",
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	for _, in := range canonicalInputs {
		t.Run(in, func(t *testing.T) {
			once := Canonicalize(in)
			twice := Canonicalize(once)
			if once != twice {
				t.Errorf("Canonicalize not idempotent\n once: %q\ntwice: %q", once, twice)
			}
		})
	}
}

func TestRoundTripPreservesSemantics(t *testing.T) {
	for _, in := range canonicalInputs {
		t.Run(in, func(t *testing.T) {
			doc := ToDocument(in)
			back := ToDocument(ToMarkup(doc))
			if !document.Equal(doc, back) {
				t.Errorf("round trip changed the document\n got: %s\nwant: %s", dump(back), dump(doc))
			}
		})
	}
}

func TestTaskFidelity(t *testing.T) {
	doc := ToDocument("- [x] Buy milk")

	item := doc.Content[0].Content[0]
	if item.Type != document.TaskItem || !item.Attrs.Checked {
		t.Fatalf("Expected a checked task item, got %s", dump(item))
	}

	markup := ToMarkup(doc)
	if !strings.Contains(markup, "[x]") || strings.Contains(markup, "[ ]") {
		t.Errorf("Expected checked marker in %q", markup)
	}
}

func TestTaskMarkersInsideCodeAreLiteral(t *testing.T) {
	doc := ToDocument("```\n- [x] literal\n```\n\n- [x] real")
	if got := doc.Content[0].TextContent(); got != "- [x] literal" {
		t.Errorf("code block = %q", got)
	}
	if doc.Content[1].Type != document.TaskList {
		t.Errorf("Expected a task list after the code block, got %s", doc.Content[1].Type)
	}
}

func TestParseKeepsRawHTMLAsText(t *testing.T) {
	doc, err := Parse("<div>\nraw html\n</div>")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := doc.TextContent(); !strings.Contains(got, "<div>") || !strings.Contains(got, "raw html") {
		t.Errorf("Expected raw html to be kept, got %q", got)
	}
}

func TestPlainDocument(t *testing.T) {
	doc := plainDocument("first line\nsecond\r\n\r\n- [ ] third")

	if len(doc.Content) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d", len(doc.Content))
	}
	if got := doc.Content[0].TextContent(); got != "first line\nsecond" {
		t.Errorf("first paragraph = %q", got)
	}
	if got := doc.Content[1].TextContent(); got != "- [ ] third" {
		t.Errorf("second paragraph = %q", got)
	}
}

func TestMarkTasks(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"- [ ] a", "- \uE000a"},
		{"* [x] a", "* \uE001a"},
		{"> - [X] a", "> - \uE002a"},
		{"    - [ ]", "    - \uE000"},
		{"[ ] not in a list", "[ ] not in a list"},
		{"1. [x] ordered", "1. [x] ordered"},
		{"```\n- [ ] code\n```", "```\n- [ ] code\n```"},
		{"private \uE001 rune", "private \uE001 rune"},
		{"- [x] a \uE000\uE001", "- \uE003a \uE000\uE001"},
	}
	for _, tt := range tests {
		if got, _ := markTasks(tt.in); got != tt.want {
			t.Errorf("markTasks(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPickTaskRunes(t *testing.T) {
	var sb strings.Builder
	for r := rune(0xE000); r <= 0xF8FF; r++ {
		sb.WriteRune(r)
	}
	tr := pickTaskRunes(sb.String())
	want := taskRunes{unchecked: 0xF0000, checked: 0xF0001, checkedUpper: 0xF0002}
	if tr != want {
		t.Errorf("Expected runes past the BMP private-use area, got %+v", tr)
	}
}

func TestPrivateUseRunesSurvive(t *testing.T) {
	t.Run("Markup", func(t *testing.T) {
		markup := "- [x] a \uE000 b\n\n\uE001 plain\n\n```\n\uE002\n```"
		doc := ToDocument(markup)

		if len(doc.Content) != 3 {
			t.Fatalf("Expected 3 blocks, got %d", len(doc.Content))
		}
		task := doc.Content[0].Content[0]
		if task.Type != document.TaskItem || !task.Attrs.Checked {
			t.Errorf("Expected a checked task item, got %s", task.Type)
		}
		if got := task.TextContent(); got != "a \uE000 b" {
			t.Errorf("Expected task text to keep its rune, got %q", got)
		}
		if got := doc.Content[1].TextContent(); got != "\uE001 plain" {
			t.Errorf("Expected paragraph text to keep its rune, got %q", got)
		}
		if got := doc.Content[2].TextContent(); got != "\uE002" {
			t.Errorf("Expected code block to keep its rune, got %q", got)
		}
		if got := Canonicalize(markup); got != markup {
			t.Errorf("Expected canonical form %q, got %q", markup, got)
		}
	})

	t.Run("Document", func(t *testing.T) {
		doc := document.New(
			document.NewParagraph(document.NewText("\uE000 start")),
			document.NewCodeBlock("", "\uE001"),
		)
		markup := ToMarkup(doc)
		if markup != "\uE000 start\n\n```\n\uE001\n```" {
			t.Errorf("Expected runes written as is, got %q", markup)
		}
		if !document.Equal(ToDocument(markup), doc) {
			t.Errorf("Expected document to survive a round trip through %q", markup)
		}
	})
}

func TestNormalizeBlocks(t *testing.T) {
	t.Run("adjacent lists of one kind merge", func(t *testing.T) {
		blocks := normalizeBlocks([]*document.Node{
			document.NewList(document.BulletList, document.NewListItem(document.NewParagraph(document.NewText("a")))),
			document.NewList(document.BulletList, document.NewListItem(document.NewParagraph(document.NewText("b")))),
		})
		if len(blocks) != 1 || len(blocks[0].Content) != 2 {
			t.Errorf("Expected one list with two items, got %s", dump(document.New(blocks...)))
		}
	})

	t.Run("items gain a leading paragraph", func(t *testing.T) {
		blocks := normalizeBlocks([]*document.Node{
			document.NewList(document.BulletList, document.NewListItem(document.NewCodeBlock("", "x"))),
		})
		item := blocks[0].Content[0]
		if len(item.Content) != 2 || item.Content[0].Type != document.Paragraph {
			t.Errorf("Expected empty paragraph before the code block, got %s", dump(item))
		}
	})

	t.Run("whitespace around hard breaks is trimmed", func(t *testing.T) {
		blocks := normalizeBlocks([]*document.Node{document.NewParagraph(
			document.NewHardBreak(),
			document.NewText(" a "),
			document.NewHardBreak(),
			document.NewText(" b"),
			document.NewHardBreak(),
		)})
		want := document.NewParagraph(document.NewText("a"), document.NewHardBreak(), document.NewText("b"))
		if len(blocks) != 1 || !document.Equal(blocks[0], want) {
			t.Errorf("got %s", dump(document.New(blocks...)))
		}
	})

	t.Run("code blank lines collapse inside items", func(t *testing.T) {
		if got := collapseBlankLines("a\n\n\n  \nb"); got != "a\n\nb" {
			t.Errorf("collapseBlankLines() = %q", got)
		}
	})
}
