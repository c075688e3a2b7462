package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/debemdeboas/notes-editor/internal/document"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
)

type CommandName string

const (
	CmdToggleBold       CommandName = "toggle-bold"
	CmdToggleItalic     CommandName = "toggle-italic"
	CmdToggleUnderline  CommandName = "toggle-underline"
	CmdToggleStrike     CommandName = "toggle-strike"
	CmdToggleCode       CommandName = "toggle-code"
	CmdToggleLink       CommandName = "toggle-link"
	CmdToggleHeading    CommandName = "toggle-heading"
	CmdToggleList       CommandName = "toggle-list-kind"
	CmdToggleTaskItem   CommandName = "toggle-task-item"
	CmdToggleBlockquote CommandName = "insert-blockquote"
	CmdToggleCodeBlock  CommandName = "insert-code-block"
	CmdInsertText       CommandName = "insert-text"
	CmdDeleteRange      CommandName = "delete-range"
	CmdBackspace        CommandName = "backspace"
	CmdSplitBlock       CommandName = "split-block"
	CmdSelect           CommandName = "select"
	CmdSelectAll        CommandName = "select-all"
	CmdUndo             CommandName = "undo"
	CmdRedo             CommandName = "redo"
)

// Command is the wire form of an editor command. Selection, when present, is
// applied before the command runs.
type Command struct {
	Name      CommandName `json:"name"`
	Level     int         `json:"level,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	Href      string      `json:"href,omitempty"`
	Title     string      `json:"title,omitempty"`
	Text      string      `json:"text,omitempty"`
	Selection *Selection  `json:"selection,omitempty"`
}

var markCommands = map[CommandName]document.MarkType{
	CmdToggleBold:      document.Bold,
	CmdToggleItalic:    document.Italic,
	CmdToggleUnderline: document.Underline,
	CmdToggleStrike:    document.Strike,
	CmdToggleCode:      document.Code,
}

// ParseListKind accepts both short (bullet, ordered, task) and node type names.
func ParseListKind(s string) (document.NodeType, error) {
	switch strings.ToLower(s) {
	case "bullet", "bulletlist":
		return document.BulletList, nil
	case "ordered", "orderedlist":
		return document.OrderedList, nil
	case "task", "tasklist":
		return document.TaskList, nil
	}
	return "", apperrors.NewInvalidInput(fmt.Sprintf("unknown list kind %q", s))
}

// Exec runs cmd and reports whether the document changed.
func (e *Editor) Exec(cmd Command) (bool, error) {
	if cmd.Selection != nil {
		if err := e.Select(*cmd.Selection); err != nil {
			return false, err
		}
	}

	if mark, ok := markCommands[cmd.Name]; ok {
		return e.ToggleMark(document.Mark{Type: mark})
	}

	// toggle-heading-N carries its level in the name.
	if rest, ok := strings.CutPrefix(string(cmd.Name), string(CmdToggleHeading)+"-"); ok {
		level, err := strconv.Atoi(rest)
		if err != nil {
			return false, apperrors.NewInvalidInput(fmt.Sprintf("unknown command %q", cmd.Name))
		}
		return e.ToggleHeading(level)
	}

	switch cmd.Name {
	case CmdToggleLink:
		if cmd.Href == "" {
			return false, apperrors.NewInvalidInput("toggle-link needs an href")
		}
		return e.ToggleMark(document.Mark{Type: document.Link, Href: cmd.Href, Title: cmd.Title})
	case CmdToggleHeading:
		return e.ToggleHeading(cmd.Level)
	case CmdToggleList:
		kind, err := ParseListKind(cmd.Kind)
		if err != nil {
			return false, err
		}
		return e.ToggleList(kind)
	case CmdToggleTaskItem:
		return e.ToggleTaskItem()
	case CmdToggleBlockquote:
		return e.ToggleBlockquote()
	case CmdToggleCodeBlock:
		return e.ToggleCodeBlock()
	case CmdInsertText:
		return e.InsertText(cmd.Text)
	case CmdDeleteRange:
		return e.DeleteRange()
	case CmdBackspace:
		return e.Backspace()
	case CmdSplitBlock:
		return e.SplitBlock()
	case CmdSelect:
		if cmd.Selection == nil {
			return false, apperrors.NewInvalidInput("select needs a selection")
		}
		return false, nil
	case CmdSelectAll:
		e.SelectAll()
		return false, nil
	case CmdUndo:
		return e.Undo(), nil
	case CmdRedo:
		return e.Redo(), nil
	}
	return false, apperrors.NewInvalidInput(fmt.Sprintf("unknown command %q", cmd.Name))
}
