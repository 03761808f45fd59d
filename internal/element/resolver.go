package element

import (
	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/docx"
)

// Resolve walks path segments left to right, narrowing scope at each step,
// and returns the addressed node. Any segment whose kind is not valid at
// the current scope, or whose index falls outside the collection, yields
// apperr.ErrNotFound, never a partial result. Resolution is read-only.
func Resolve(doc *docx.Document, path Path) (docx.Node, error) {
	if len(path) == 0 {
		return nil, apperr.ErrNotFound
	}

	var current docx.Node
	for _, seg := range path {
		next, ok := step(doc, current, seg)
		if !ok {
			return nil, apperr.ErrNotFound
		}
		current = next
	}
	return current, nil
}

// ResolveRef parses ref and resolves it in one call; a malformed reference
// resolves to NotFound like an out-of-range one.
func ResolveRef(doc *docx.Document, ref string) (docx.Node, error) {
	path, ok := ParsePath(ref)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return Resolve(doc, path)
}

// step selects one child from the current scope. A nil scope is the
// document body.
func step(doc *docx.Document, scope docx.Node, seg Segment) (docx.Node, bool) {
	switch s := scope.(type) {
	case nil:
		switch seg.Kind {
		case docx.KindParagraph:
			return pick(doc.Paragraphs(), seg.Index)
		case docx.KindTable:
			return pick(doc.Tables(), seg.Index)
		}
	case *docx.Paragraph:
		if seg.Kind == docx.KindRun {
			return pick(s.Runs(), seg.Index)
		}
	case *docx.Table:
		if seg.Kind == docx.KindRow {
			return pick(s.Rows(), seg.Index)
		}
	case *docx.Row:
		if seg.Kind == docx.KindCell {
			return pick(s.Cells(), seg.Index)
		}
	case *docx.Cell:
		if seg.Kind == docx.KindParagraph {
			return pick(s.Paragraphs(), seg.Index)
		}
	}
	return nil, false
}

// pick indexes into a typed node slice with bounds checking.
func pick[N docx.Node](nodes []N, idx int) (docx.Node, bool) {
	if idx < 0 || idx >= len(nodes) {
		return nil, false
	}
	return nodes[idx], true
}
