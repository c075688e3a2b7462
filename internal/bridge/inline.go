package bridge

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/debemdeboas/notes-editor/internal/document"
)

var (
	reEntityPrefix = regexp.MustCompile(`^&#?[A-Za-z0-9]+;`)
	reOrderedStart = regexp.MustCompile(`^\d+[.)]`)
	reBackticks    = regexp.MustCompile("`+")
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokOpen
	tokClose
	tokBreak
)

type token struct {
	kind tokenKind
	mark document.Mark
	text string

	// lineStart is set on text that begins a line of output.
	lineStart bool
	// pair links an opening token to its closing token and back.
	pair int
	// html selects the tag form of a delimiter for italic and strike.
	html bool
}

// inlineWriter lays out the inline content of one textblock as a token
// stream first, so delimiters can look at their neighbours before anything
// is written.
type inlineWriter struct {
	heading bool
	tokens  []token
	stack   []int
	pending string
}

func renderInline(inlines []*document.Node, heading bool) string {
	w := &inlineWriter{heading: heading}
	for _, n := range inlines {
		switch n.Type {
		case document.HardBreak:
			if heading {
				w.text(" ", nil)
				continue
			}
			w.closeTo(0)
			w.pending = ""
			w.tokens = append(w.tokens, token{kind: tokBreak})
		case document.Text:
			w.text(n.Text, n.Marks)
		}
	}
	w.closeTo(0)
	w.pending = ""
	return w.String()
}

func (w *inlineWriter) text(text string, marks []document.Mark) {
	marks = document.SortMarks(marks)
	core := strings.TrimFunc(text, unicode.IsSpace)
	if core == "" {
		w.closeTo(w.shared(marks))
		w.emit(text)
		return
	}
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]

	w.closeTo(w.shared(marks))
	w.emit(lead)
	for _, m := range marks[len(w.stack):] {
		w.open(m)
	}
	w.emit(core)
	if document.HasMark(marks, document.Code) {
		w.closeTo(len(w.stack) - 1)
	}
	w.pending = trail
}

// shared is the length of the common prefix of the open marks and marks.
func (w *inlineWriter) shared(marks []document.Mark) int {
	k := 0
	for k < len(w.stack) && k < len(marks) && w.tokens[w.stack[k]].mark == marks[k] {
		k++
	}
	return k
}

func (w *inlineWriter) open(m document.Mark) {
	w.flush()
	w.stack = append(w.stack, len(w.tokens))
	w.tokens = append(w.tokens, token{kind: tokOpen, mark: m})
}

func (w *inlineWriter) closeTo(depth int) {
	for len(w.stack) > depth {
		top := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.tokens[top].pair = len(w.tokens)
		w.tokens = append(w.tokens, token{kind: tokClose, mark: w.tokens[top].mark, pair: top})
	}
}

func (w *inlineWriter) emit(text string) {
	w.flush()
	if text == "" {
		return
	}
	lineStart := len(w.tokens) == 0 || w.tokens[len(w.tokens)-1].kind == tokBreak
	w.tokens = append(w.tokens, token{kind: tokText, text: text, lineStart: lineStart})
}

func (w *inlineWriter) flush() {
	if w.pending == "" {
		return
	}
	text := w.pending
	w.pending = ""
	w.emit(text)
}

func (w *inlineWriter) String() string {
	w.chooseDelimiters()

	var sb strings.Builder
	for i, t := range w.tokens {
		switch t.kind {
		case tokBreak:
			sb.WriteString("\\\n")
		case tokText:
			if w.inCode(i) {
				sb.WriteString(t.text)
				continue
			}
			beforeLink := i+1 < len(w.tokens) && w.tokens[i+1].kind == tokOpen && w.tokens[i+1].mark.Type == document.Link
			text := escapeText(t.text, t.lineStart, w.heading, beforeLink)
			// The parser takes any delimiter right after a backslash as
			// escaped, even when that backslash is itself escaped.
			if i+1 < len(w.tokens) && w.tokens[i+1].kind == tokClose && strings.HasSuffix(text, `\\`) {
				text = strings.TrimSuffix(text, `\\`) + "&#92;"
			}
			sb.WriteString(text)
		case tokOpen:
			sb.WriteString(w.opener(i))
		case tokClose:
			sb.WriteString(w.closer(i))
		}
	}
	return sb.String()
}

// chooseDelimiters falls back to tags for italic spans whose closing
// underscore would sit inside a word, where it is not recognised.
func (w *inlineWriter) chooseDelimiters() {
	for i, t := range w.tokens {
		if t.kind != tokClose || t.mark.Type != document.Italic {
			continue
		}
		if i+1 < len(w.tokens) && w.tokens[i+1].kind == tokText && !w.inCode(i+1) {
			r, _ := utf8.DecodeRuneInString(w.tokens[i+1].text)
			if !endsWord(r) {
				w.tokens[i].html = true
				w.tokens[t.pair].html = true
			}
		}
	}
}

// endsWord matches the characters the parser accepts right after a closing
// underscore.
func endsWord(r rune) bool {
	switch {
	case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
		return true
	case r < utf8.RuneSelf:
		return strings.ContainsRune(asciiPunct, r)
	}
	return unicode.IsPunct(r)
}

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func (w *inlineWriter) inCode(i int) bool {
	return i > 0 && w.tokens[i-1].kind == tokOpen && w.tokens[i-1].mark.Type == document.Code
}

func (w *inlineWriter) opener(i int) string {
	t := w.tokens[i]
	switch t.mark.Type {
	case document.Link:
		return "["
	case document.Bold:
		return "**"
	case document.Italic:
		if t.html {
			return "<em>"
		}
		return "_"
	case document.Strike:
		return "~~"
	case document.Underline:
		return "<u>"
	case document.Code:
		fence, pad := codeFence(w.tokens[i+1].text)
		return fence + pad
	}
	return ""
}

func (w *inlineWriter) closer(i int) string {
	t := w.tokens[i]
	switch t.mark.Type {
	case document.Link:
		return "](" + linkDestination(t.mark) + ")"
	case document.Bold:
		return "**"
	case document.Italic:
		if t.html {
			return "</em>"
		}
		return "_"
	case document.Strike:
		return "~~"
	case document.Underline:
		return "</u>"
	case document.Code:
		fence, pad := codeFence(w.tokens[i-1].text)
		return pad + fence
	}
	return ""
}

// codeFence picks a backtick run longer than any run inside code. Content
// that starts or ends with a backtick is padded with a space, which the
// parser trims again.
func codeFence(code string) (fence, pad string) {
	longest := 0
	for _, run := range reBackticks.FindAllString(code, -1) {
		longest = max(longest, len(run))
	}
	n := longest + 1
	if n == 3 {
		n = 4
	}
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		pad = " "
	}
	return strings.Repeat("`", n), pad
}

func linkDestination(m document.Mark) string {
	var sb strings.Builder
	for _, r := range m.Href {
		switch {
		case r == ' ':
			sb.WriteString("%20")
		case strings.ContainsRune(`\()"'<>`, r):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			continue
		default:
			sb.WriteRune(r)
		}
	}
	if m.Title != "" && !strings.ContainsAny(m.Title, `")`+"\n") {
		sb.WriteString(` "` + m.Title + `"`)
	}
	return sb.String()
}

// escapable lists the characters escaped wherever they appear in text.
const escapable = "\\*_`[]<~"

// escapeText escapes text so it reads back as the same literal characters.
// Block syntax is only recognised at the start of a line, so those
// characters are escaped there alone.
func escapeText(text string, lineStart, heading, beforeLink bool) string {
	var sb strings.Builder
	if lineStart {
		switch {
		case reOrderedStart.MatchString(text):
			digits := reOrderedStart.FindString(text)
			sb.WriteString(digits[:len(digits)-1] + "\\" + digits[len(digits)-1:])
			text = text[len(digits):]
		case strings.HasPrefix(text, ".#"):
			sb.WriteString("\\.")
			text = text[1:]
		case strings.HasPrefix(text, "="):
			sb.WriteString("&#61;")
			text = text[1:]
		case text != "" && strings.ContainsRune("#>-+", rune(text[0])):
			sb.WriteString("\\" + text[:1])
			text = text[1:]
		}
	}

	for i, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte(' ')
		case strings.ContainsRune(escapable, r):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '&' && reEntityPrefix.MatchString(text[i:]):
			sb.WriteString("\\&")
		case r == '#' && heading:
			sb.WriteString("\\#")
		case (r == '!' || r == '^') && beforeLink && i == len(text)-1:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
