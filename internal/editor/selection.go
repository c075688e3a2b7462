package editor

import (
	"fmt"

	"github.com/debemdeboas/notes-editor/internal/document"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
)

// Position addresses a point inside a textblock. Block indexes the textblocks
// in document order; Offset counts runes, with a hard break counting as one.
type Position struct {
	Block  int `json:"block"`
	Offset int `json:"offset"`
}

func (p Position) Compare(q Position) int {
	if p.Block != q.Block {
		return p.Block - q.Block
	}
	return p.Offset - q.Offset
}

type Selection struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

func Cursor(block, offset int) Selection {
	p := Position{Block: block, Offset: offset}
	return Selection{Anchor: p, Head: p}
}

func Range(from, to Position) Selection {
	return Selection{Anchor: from, Head: to}
}

func (s Selection) From() Position {
	if s.Anchor.Compare(s.Head) <= 0 {
		return s.Anchor
	}
	return s.Head
}

func (s Selection) To() Position {
	if s.Anchor.Compare(s.Head) <= 0 {
		return s.Head
	}
	return s.Anchor
}

func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

func validatePosition(doc *document.Node, paths []document.Path, p Position) error {
	if p.Block < 0 || p.Block >= len(paths) {
		return apperrors.NewInvalidInput(fmt.Sprintf("block %d out of range [0, %d)", p.Block, len(paths)))
	}
	if n := doc.At(paths[p.Block]).InlineLen(); p.Offset < 0 || p.Offset > n {
		return apperrors.NewInvalidInput(fmt.Sprintf("offset %d out of range [0, %d] in block %d", p.Offset, n, p.Block))
	}
	return nil
}

func (s Selection) validate(doc *document.Node) error {
	paths := document.Textblocks(doc)
	if err := validatePosition(doc, paths, s.Anchor); err != nil {
		return err
	}
	return validatePosition(doc, paths, s.Head)
}

func clampPosition(doc *document.Node, paths []document.Path, p Position) Position {
	p.Block = max(0, min(p.Block, len(paths)-1))
	p.Offset = max(0, min(p.Offset, doc.At(paths[p.Block]).InlineLen()))
	return p
}

// clamp moves s inside doc, which must hold at least one textblock.
func (s Selection) clamp(doc *document.Node) Selection {
	paths := document.Textblocks(doc)
	return Selection{
		Anchor: clampPosition(doc, paths, s.Anchor),
		Head:   clampPosition(doc, paths, s.Head),
	}
}
