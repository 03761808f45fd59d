package element

import (
	"strings"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/docx"
)

// matchTier scans the document for a node matching target, returning nil
// when the tier has no hit. Ties within a tier resolve to the first node in
// document order.
type matchTier func(doc *docx.Document, target string) docx.Node

// matchTiers is the fixed fallback order: positional addressing failed, so
// try the most specific textual interpretation first. The order is part of
// the contract and is exercised directly by tests.
var matchTiers = []matchTier{
	matchParagraphExact,
	matchParagraphContains,
	matchHeadingExact,
	matchCellExact,
}

// FindByContent scans the tree for a node whose text equals or contains
// target. An empty or whitespace-only target yields NotFound so that blank
// audit data never matches empty paragraphs.
func FindByContent(doc *docx.Document, target string) (docx.Node, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, apperr.ErrNotFound
	}
	for _, tier := range matchTiers {
		if n := tier(doc, target); n != nil {
			return n, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func matchParagraphExact(doc *docx.Document, target string) docx.Node {
	for _, p := range doc.Paragraphs() {
		if strings.TrimSpace(p.Text()) == target {
			return p
		}
	}
	return nil
}

func matchParagraphContains(doc *docx.Document, target string) docx.Node {
	for _, p := range doc.Paragraphs() {
		if strings.Contains(p.Text(), target) {
			return p
		}
	}
	return nil
}

func matchHeadingExact(doc *docx.Document, target string) docx.Node {
	for _, p := range doc.Paragraphs() {
		if p.IsHeading() && strings.TrimSpace(p.Text()) == target {
			return p
		}
	}
	return nil
}

func matchCellExact(doc *docx.Document, target string) docx.Node {
	for _, t := range doc.Tables() {
		for _, row := range t.Rows() {
			for _, cell := range row.Cells() {
				if strings.TrimSpace(cell.Text()) == target {
					return cell
				}
			}
		}
	}
	return nil
}
