package docx

import (
	"strings"
)

// Kind identifies an addressable unit of document content.
type Kind string

// Node kinds.
const (
	KindParagraph Kind = "paragraph"
	KindRun       Kind = "run"
	KindTable     Kind = "table"
	KindRow       Kind = "row"
	KindCell      Kind = "cell"
)

// Node is any addressable unit of document content.
type Node interface {
	Kind() Kind
}

// TextReader is a node whose textual content can be read.
type TextReader interface {
	Node
	Text() string
}

// TextSetter is a node whose textual content can be overwritten directly,
// e.g. a table cell or a single run.
type TextSetter interface {
	TextReader
	SetText(text string) error
}

// RunHolder is a node that carries formatted runs which can be cleared and
// replaced wholesale, e.g. a paragraph. Capability is decided by the
// concrete type at construction, never probed at call time.
type RunHolder interface {
	Node
	ReplaceRuns(text string) error
}

// Compile-time capability checks.
var (
	_ RunHolder  = (*Paragraph)(nil)
	_ TextReader = (*Paragraph)(nil)
	_ TextSetter = (*Run)(nil)
	_ TextSetter = (*Cell)(nil)
	_ Node       = (*Table)(nil)
	_ Node       = (*Row)(nil)
)

// Paragraph is a block-level run container.
type Paragraph struct {
	n *node
}

// Kind implements Node.
func (p *Paragraph) Kind() Kind { return KindParagraph }

// Text returns the concatenated text of every run in the paragraph.
func (p *Paragraph) Text() string { return collectText(p.n) }

// Runs returns the paragraph's direct runs in order.
func (p *Paragraph) Runs() []*Run {
	nodes := childElems(p.n, "r")
	out := make([]*Run, len(nodes))
	for i, n := range nodes {
		out[i] = &Run{n: n}
	}
	return out
}

// StyleID returns the paragraph style identifier from pPr/pStyle, or "".
func (p *Paragraph) StyleID() string {
	pPr := firstChild(p.n, "pPr")
	if pPr == nil {
		return ""
	}
	style := firstChild(pPr, "pStyle")
	if style == nil {
		return ""
	}
	return attrValue(style, "val")
}

// IsHeading reports whether the paragraph carries a heading or title style.
func (p *Paragraph) IsHeading() bool {
	style := p.StyleID()
	return strings.HasPrefix(style, "Heading") || style == "Title"
}

// ReplaceRuns removes every run (and hyperlink-wrapped run) from the
// paragraph and inserts a single unformatted run carrying text. Paragraph
// properties are preserved; run-level formatting splits are lost.
func (p *Paragraph) ReplaceRuns(text string) error {
	kept := p.n.children[:0]
	for _, c := range p.n.children {
		if isElem(c, "r") || isElem(c, "hyperlink") {
			continue
		}
		kept = append(kept, c)
	}
	p.n.children = kept

	run := wmlElem("r", textElem(text))
	// Keep pPr first; WordprocessingML requires paragraph properties to
	// precede content.
	if pPr := firstChild(p.n, "pPr"); pPr != nil {
		insertAfter(p.n, pPr, run)
	} else {
		p.n.children = append([]*node{run}, p.n.children...)
	}
	return nil
}

// AppendRun appends a new unformatted run carrying text to the paragraph.
func (p *Paragraph) AppendRun(text string) *Run {
	run := wmlElem("r", textElem(text))
	p.n.children = append(p.n.children, run)
	return &Run{n: run}
}

// Run is a contiguous span of text with uniform formatting.
type Run struct {
	n *node
}

// Kind implements Node.
func (r *Run) Kind() Kind { return KindRun }

// Text returns the run's text content.
func (r *Run) Text() string { return collectText(r.n) }

// SetText overwrites the run's text in place, preserving run properties.
// Extra text elements beyond the first are removed.
func (r *Run) SetText(text string) error {
	kept := r.n.children[:0]
	for _, c := range r.n.children {
		if isElem(c, "t") {
			continue
		}
		kept = append(kept, c)
	}
	r.n.children = append(kept, textElem(text))
	return nil
}

// Table is an ordered grid of rows.
type Table struct {
	n *node
}

// Kind implements Node.
func (t *Table) Kind() Kind { return KindTable }

// Rows returns the table's rows in order.
func (t *Table) Rows() []*Row {
	nodes := childElems(t.n, "tr")
	out := make([]*Row, len(nodes))
	for i, n := range nodes {
		out[i] = &Row{n: n}
	}
	return out
}

// Row is one table row.
type Row struct {
	n *node
}

// Kind implements Node.
func (r *Row) Kind() Kind { return KindRow }

// Cells returns the row's cells in order.
func (r *Row) Cells() []*Cell {
	nodes := childElems(r.n, "tc")
	out := make([]*Cell, len(nodes))
	for i, n := range nodes {
		out[i] = &Cell{n: n}
	}
	return out
}

// Cell is one table cell; it behaves like a paragraph container.
type Cell struct {
	n *node
}

// Kind implements Node.
func (c *Cell) Kind() Kind { return KindCell }

// Paragraphs returns the cell's paragraphs in order.
func (c *Cell) Paragraphs() []*Paragraph {
	nodes := childElems(c.n, "p")
	out := make([]*Paragraph, len(nodes))
	for i, n := range nodes {
		out[i] = &Paragraph{n: n}
	}
	return out
}

// Text returns the cell's paragraphs joined by newlines.
func (c *Cell) Text() string {
	paras := c.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text()
	}
	return strings.Join(texts, "\n")
}

// SetText collapses the cell to a single paragraph carrying text. A cell
// must contain at least one paragraph, so one is created when missing.
func (c *Cell) SetText(text string) error {
	paras := c.Paragraphs()
	if len(paras) == 0 {
		p := wmlElem("p")
		c.n.children = append(c.n.children, p)
		paras = []*Paragraph{{n: p}}
	}
	if err := paras[0].ReplaceRuns(text); err != nil {
		return err
	}
	if len(paras) > 1 {
		first := paras[0].n
		kept := c.n.children[:0]
		for _, child := range c.n.children {
			if isElem(child, "p") && child != first {
				continue
			}
			kept = append(kept, child)
		}
		c.n.children = kept
	}
	return nil
}

// insertAfter inserts newChild immediately after ref among parent's children.
func insertAfter(parent, ref, newChild *node) {
	for i, c := range parent.children {
		if c == ref {
			parent.children = append(parent.children[:i+1], append([]*node{newChild}, parent.children[i+1:]...)...)
			return
		}
	}
	parent.children = append(parent.children, newChild)
}
