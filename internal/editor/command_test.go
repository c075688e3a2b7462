package editor

import (
	"encoding/json"
	"testing"

	"github.com/debemdeboas/notes-editor/internal/document"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
)

func TestExec(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		command string
		want    string
	}{
		{"Bold", "abc", `{"name":"toggle-bold","selection":{"anchor":{"block":0,"offset":0},"head":{"block":0,"offset":3}}}`, "**abc**"},
		{"Reversed selection", "abc", `{"name":"toggle-strike","selection":{"anchor":{"block":0,"offset":3},"head":{"block":0,"offset":0}}}`, "~~abc~~"},
		{"Underline", "abc", `{"name":"toggle-underline","selection":{"anchor":{"block":0,"offset":0},"head":{"block":0,"offset":3}}}`, "<u>abc</u>"},
		{"Heading with level field", "abc", `{"name":"toggle-heading","level":2}`, "## abc"},
		{"Heading level in name", "abc", `{"name":"toggle-heading-3"}`, "### abc"},
		{"Ordered list", "abc", `{"name":"toggle-list-kind","kind":"ordered"}`, "1. abc"},
		{"Task list by node type", "abc", `{"name":"toggle-list-kind","kind":"taskList"}`, "- [ ] abc"},
		{"Task item", "- [ ] abc", `{"name":"toggle-task-item"}`, "- [x] abc"},
		{"Blockquote", "abc", `{"name":"insert-blockquote"}`, "> abc"},
		{"Code block", "abc", `{"name":"insert-code-block"}`, "```\nabc\n```"},
		{"Insert text", "abc", `{"name":"insert-text","text":"x","selection":{"anchor":{"block":0,"offset":3},"head":{"block":0,"offset":3}}}`, "abcx"},
		{"Link", "abc", `{"name":"toggle-link","href":"https://example.com","selection":{"anchor":{"block":0,"offset":0},"head":{"block":0,"offset":3}}}`, "[abc](https://example.com)"},
		{"Split", "abc", `{"name":"split-block","selection":{"anchor":{"block":0,"offset":1},"head":{"block":0,"offset":1}}}`, "a\n\nbc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			if err := json.Unmarshal([]byte(tt.command), &cmd); err != nil {
				t.Fatalf("Failed to decode command: %v", err)
			}

			e, _ := newEditor(t, tt.markup)
			if _, err := e.Exec(cmd); err != nil {
				t.Fatalf("Exec failed: %v", err)
			}
			expectMarkup(t, e, tt.want)
		})
	}
}

func TestExecUndoRedo(t *testing.T) {
	e, _ := newEditor(t, "abc")
	e.Exec(Command{Name: CmdToggleHeading, Level: 1})

	if changed, _ := e.Exec(Command{Name: CmdUndo}); !changed {
		t.Error("Expected undo to report a change")
	}
	expectMarkup(t, e, "abc")

	e.Exec(Command{Name: CmdRedo})
	expectMarkup(t, e, "# abc")
}

func TestExecErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"Unknown command", Command{Name: "explode"}},
		{"Bad heading suffix", Command{Name: "toggle-heading-x"}},
		{"Unknown list kind", Command{Name: CmdToggleList, Kind: "spiral"}},
		{"Link without href", Command{Name: CmdToggleLink}},
		{"Select without selection", Command{Name: CmdSelect}},
		{"Selection out of range", Command{Name: CmdToggleBold, Selection: &Selection{Head: Position{Block: 5}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEditor(t, "abc")
			if _, err := e.Exec(tt.cmd); !apperrors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("Expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestParseListKind(t *testing.T) {
	tests := map[string]document.NodeType{
		"bullet":      document.BulletList,
		"BulletList":  document.BulletList,
		"ordered":     document.OrderedList,
		"orderedList": document.OrderedList,
		"task":        document.TaskList,
	}
	for in, want := range tests {
		got, err := ParseListKind(in)
		if err != nil || got != want {
			t.Errorf("ParseListKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}
