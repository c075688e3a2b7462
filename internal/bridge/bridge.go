// Package bridge converts between canonical markup and the structured
// editor document.
package bridge

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/document"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
)

var bridgeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	bridgeLogger = l
}

// Extensions is the markup dialect the bridge reads. Autolinks, tables and
// math are left out so that plain text never changes meaning.
const Extensions = parser.FencedCode |
	parser.Strikethrough |
	parser.SpaceHeadings |
	parser.NoIntraEmphasis |
	parser.BackslashLineBreak |
	parser.OrderedListStart

// MaxHeadingLevel is the deepest heading the document model keeps.
const MaxHeadingLevel = 3

// Parse converts markup into a document. A non-nil error is always a
// ConversionFailure and the returned document is still usable: it holds
// whatever could be recovered, with unrecognised blocks kept as plain
// paragraphs.
func Parse(markup string) (doc *document.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			bridgeLogger.Error().Any("panic", r).Msg("Markup parser panicked, falling back to plain paragraphs")
			doc = plainDocument(markup)
			err = apperrors.NewConversionFailure(fmt.Errorf("parser panic: %v", r))
		}
	}()

	marked, tasks := markTasks(markup)
	src := markdown.NormalizeNewlines([]byte(marked))
	if len(src) == 0 || src[len(src)-1] != '\n' {
		src = append(src, '\n')
	}

	root := parser.NewWithExtensions(Extensions).Parse(src)

	c := &converter{tasks: tasks}
	blocks := c.blocks(root.GetChildren())
	tasks.restoreAll(blocks)
	doc = document.New(normalizeBlocks(blocks)...)
	if len(c.unknown) > 0 {
		err = apperrors.NewConversionFailure(fmt.Errorf("unrecognised blocks: %s", strings.Join(c.unknown, ", ")))
	}
	return doc, err
}

// ToDocument is Parse without the diagnostic.
func ToDocument(markup string) *document.Node {
	doc, err := Parse(markup)
	if err != nil {
		bridgeLogger.Warn().Err(err).Msg("Markup converted in degraded form")
	}
	return doc
}

// ToMarkup serialises doc. The document is normalised on a copy first, so
// the caller's tree is never modified.
func ToMarkup(doc *document.Node) string {
	if doc == nil {
		return ""
	}
	blocks := normalizeBlocks(doc.Clone().Content)
	return renderBlocks(blocks)
}

// Canonicalize is ToMarkup(ToDocument(markup)). It is meant for comparisons.
func Canonicalize(markup string) string {
	return ToMarkup(ToDocument(markup))
}

// plainDocument splits markup on blank lines and keeps every chunk as a
// paragraph of raw text.
func plainDocument(markup string) *document.Node {
	markup = strings.ReplaceAll(markup, "\r\n", "\n")
	var blocks []*document.Node
	for _, chunk := range strings.Split(markup, "\n\n") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		blocks = append(blocks, rawParagraph(chunk))
	}
	return document.New(normalizeBlocks(blocks)...)
}

// rawParagraph keeps text verbatim, one hard break per line break.
func rawParagraph(text string) *document.Node {
	p := document.NewParagraph()
	for i, line := range strings.Split(strings.Trim(text, "\n"), "\n") {
		if i > 0 {
			p.Content = append(p.Content, document.NewHardBreak())
		}
		p.Content = append(p.Content, document.NewText(line))
	}
	return p
}
