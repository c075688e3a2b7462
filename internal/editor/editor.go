// Package editor applies formatting and text commands to a document and keeps
// a linear undo history of the results.
package editor

import (
	"strings"
	"time"

	"github.com/debemdeboas/notes-editor/internal/bridge"
	"github.com/debemdeboas/notes-editor/internal/document"
)

const (
	DefaultGroupDelay   = 500 * time.Millisecond
	DefaultHistoryDepth = 100
)

type Options struct {
	MaxHeadingLevel int
	GroupDelay      time.Duration
	HistoryDepth    int
	Now             func() time.Time
}

// Editor is not safe for concurrent use.
type Editor struct {
	doc *document.Node
	sel Selection

	// Marks toggled on a collapsed selection, applied to the next insertion.
	stored    []document.Mark
	hasStored bool

	history    *History
	maxHeading int
	now        func() time.Time
}

func New(doc *document.Node, opts Options) *Editor {
	if opts.MaxHeadingLevel <= 0 || opts.MaxHeadingLevel > bridge.MaxHeadingLevel {
		opts.MaxHeadingLevel = bridge.MaxHeadingLevel
	}
	if opts.GroupDelay <= 0 {
		opts.GroupDelay = DefaultGroupDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Editor{
		history:    NewHistory(opts.HistoryDepth, opts.GroupDelay),
		maxHeading: opts.MaxHeadingLevel,
		now:        opts.Now,
	}
	e.load(doc)
	return e
}

// FromMarkup builds an editor over the document parsed from markup.
func FromMarkup(markup string, opts Options) *Editor {
	return New(bridge.ToDocument(markup), opts)
}

func (e *Editor) load(doc *document.Node) {
	if doc == nil {
		doc = document.New()
	}
	e.doc = ensureTextblock(doc.Clone())
	e.sel = Cursor(0, 0)
	e.clearStored()
}

// ensureTextblock guarantees a place for the cursor.
func ensureTextblock(doc *document.Node) *document.Node {
	if len(document.Textblocks(doc)) == 0 {
		doc.Content = append(doc.Content, document.NewParagraph())
	}
	return doc
}

// Doc returns a copy of the current document.
func (e *Editor) Doc() *document.Node {
	return e.doc.Clone()
}

func (e *Editor) Markup() string {
	return bridge.ToMarkup(e.doc)
}

func (e *Editor) Selection() Selection {
	return e.sel
}

func (e *Editor) Select(sel Selection) error {
	if err := sel.validate(e.doc); err != nil {
		return err
	}
	if sel != e.sel {
		e.sel = sel
		e.clearStored()
		e.history.breakGroup()
	}
	return nil
}

func (e *Editor) SelectAll() {
	paths := document.Textblocks(e.doc)
	last := len(paths) - 1
	_ = e.Select(Range(Position{}, Position{Block: last, Offset: e.doc.At(paths[last]).InlineLen()}))
}

// Reset replaces the document and forgets all history.
func (e *Editor) Reset(doc *document.Node) {
	e.load(doc)
	e.history.Reset()
}

// Sync replaces the document with markup unless it already matches the
// canonical form of the current document, ignoring surrounding whitespace.
// It reports whether the document was replaced.
func (e *Editor) Sync(markup string) bool {
	current := bridge.Canonicalize(bridge.ToMarkup(e.doc))
	if strings.TrimSpace(current) == strings.TrimSpace(markup) {
		return false
	}
	e.Reset(bridge.ToDocument(markup))
	return true
}

func (e *Editor) snapshot() snapshot {
	return snapshot{doc: e.doc, sel: e.sel}
}

func (e *Editor) restore(s snapshot) {
	e.doc = s.doc
	e.sel = s.sel.clamp(s.doc)
	e.clearStored()
}

func (e *Editor) Undo() bool {
	prev, ok := e.history.stepBack(e.snapshot())
	if ok {
		e.restore(prev)
	}
	return ok
}

func (e *Editor) Redo() bool {
	next, ok := e.history.stepForward(e.snapshot())
	if ok {
		e.restore(next)
	}
	return ok
}

func (e *Editor) CanUndo() bool { return e.history.UndoDepth() > 0 }
func (e *Editor) CanRedo() bool { return e.history.RedoDepth() > 0 }

// apply runs fn against a copy of the document and commits the copy as one
// undo step when it differs from the current document. The committed
// document is never mutated afterwards, so snapshots share it.
func (e *Editor) apply(key string, fn func(doc *document.Node) (Selection, error)) (bool, error) {
	doc := e.doc.Clone()
	sel, err := fn(doc)
	if err != nil {
		return false, err
	}
	doc = ensureTextblock(doc)

	if document.Equal(doc, e.doc) {
		return false, nil
	}

	e.history.record(e.snapshot(), key, e.now())
	e.doc = doc
	e.sel = sel.clamp(doc)
	return true, nil
}

func (e *Editor) clearStored() {
	e.stored = nil
	e.hasStored = false
}
