package bridge

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/debemdeboas/notes-editor/internal/document"
)

const (
	taskMarkerUnchecked    = "[ ]"
	taskMarkerChecked      = "[x]"
	taskMarkerCheckedUpper = "[X]"
)

var (
	reTaskLine  = regexp.MustCompile(`^((?:[ \t]*>[ \t]?)*[ \t]*[-*+][ \t]+)\[([ xX])\](?:[ \t]+|$)`)
	reFenceLine = regexp.MustCompile("^(?:[ \\t]*>[ \\t]?)*[ \\t]*(?:(?:[-*+]|\\d+[.)])[ \\t]+)*(`{3,}|~{3,})")
)

// taskRunes stand in for task markers while parsing so the checkbox survives
// inline parsing as plain text at the start of the item. They are private-use
// runes that do not occur in the markup being parsed.
type taskRunes struct {
	unchecked, checked, checkedUpper rune
}

func pickTaskRunes(markup string) taskRunes {
	used := make(map[rune]bool)
	for _, r := range markup {
		if r >= 0xE000 {
			used[r] = true
		}
	}
	picked := make([]rune, 0, 3)
	for r := rune(0xE000); len(picked) < 3; r = nextPrivateUse(r) {
		if !used[r] {
			picked = append(picked, r)
		}
	}
	return taskRunes{unchecked: picked[0], checked: picked[1], checkedUpper: picked[2]}
}

// nextPrivateUse steps through the BMP private-use area and then the
// supplementary private-use planes.
func nextPrivateUse(r rune) rune {
	switch r {
	case 0xF8FF:
		return 0xF0000
	case 0xFFFFD:
		return 0x100000
	}
	return r + 1
}

// markTasks rewrites bullet task markers outside fenced code into stand-in
// runes. Everything else in markup is left alone.
func markTasks(markup string) (string, taskRunes) {
	tr := pickTaskRunes(markup)

	lines := strings.Split(markup, "\n")
	var fence string
	for i, line := range lines {
		if m := reFenceLine.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case m[1][0] == fence[0] && len(m[1]) >= len(fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		lines[i] = reTaskLine.ReplaceAllStringFunc(line, func(s string) string {
			m := reTaskLine.FindStringSubmatch(s)
			return m[1] + string(tr.runeFor(m[2]))
		})
	}
	return strings.Join(lines, "\n"), tr
}

func (tr taskRunes) runeFor(mark string) rune {
	switch mark {
	case "x":
		return tr.checked
	case "X":
		return tr.checkedUpper
	}
	return tr.unchecked
}

// take reports whether text starts with a task rune and strips it.
func (tr taskRunes) take(text string) (rest string, checked, ok bool) {
	r, size := utf8.DecodeRuneInString(text)
	switch r {
	case tr.unchecked:
		return text[size:], false, true
	case tr.checked, tr.checkedUpper:
		return text[size:], true, true
	}
	return text, false, false
}

// restore turns task runes that did not land at the start of an item back
// into markers.
func (tr taskRunes) restore(text string) string {
	if !strings.ContainsAny(text, string([]rune{tr.unchecked, tr.checked, tr.checkedUpper})) {
		return text
	}
	r := strings.NewReplacer(
		string(tr.unchecked), taskMarkerUnchecked+" ",
		string(tr.checked), taskMarkerChecked+" ",
		string(tr.checkedUpper), taskMarkerCheckedUpper+" ",
	)
	return r.Replace(text)
}

// restoreAll applies restore to every text node under blocks.
func (tr taskRunes) restoreAll(blocks []*document.Node) {
	for _, b := range blocks {
		document.Walk(b, func(n *document.Node, _ document.Path) bool {
			if n.Type == document.Text {
				n.Text = tr.restore(n.Text)
			}
			return true
		})
	}
}
