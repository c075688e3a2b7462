package editor

import (
	"time"

	"github.com/debemdeboas/notes-editor/internal/document"
)

type snapshot struct {
	doc *document.Node
	sel Selection
}

// History is a linear undo stack. A new step discards the redo branch.
// Steps recorded with the same non-empty group key within delay of each other
// collapse into one.
type History struct {
	undo  []snapshot
	redo  []snapshot
	depth int
	delay time.Duration

	lastKey string
	lastAt  time.Time
}

func NewHistory(depth int, delay time.Duration) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth, delay: delay}
}

func (h *History) record(prev snapshot, key string, now time.Time) {
	h.redo = nil

	if key != "" && key == h.lastKey && now.Sub(h.lastAt) <= h.delay {
		h.lastAt = now
		return
	}

	h.undo = append(h.undo, prev)
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
	h.lastKey = key
	h.lastAt = now
}

// breakGroup ends the current coalescing group.
func (h *History) breakGroup() {
	h.lastKey = ""
}

func (h *History) stepBack(current snapshot) (snapshot, bool) {
	if len(h.undo) == 0 {
		return snapshot{}, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	h.breakGroup()
	return prev, true
}

func (h *History) stepForward(current snapshot) (snapshot, bool) {
	if len(h.redo) == 0 {
		return snapshot{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	h.breakGroup()
	return next, true
}

func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
	h.breakGroup()
}

func (h *History) UndoDepth() int { return len(h.undo) }
func (h *History) RedoDepth() int { return len(h.redo) }
