// Package docx reads, mutates, and writes DOCX packages. A DOCX file is a
// ZIP archive of XML parts; only word/document.xml is parsed into a node
// tree, every other part is carried through byte-for-byte.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

const documentPart = "word/document.xml"

// part is one ZIP entry, kept in archive order.
type part struct {
	name string
	data []byte
}

// Document is an open DOCX package with its main document part parsed.
type Document struct {
	parts []part
	tree  *tree
	body  *node
}

// OpenBytes parses a DOCX package from raw bytes.
func OpenBytes(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: open package: %w", err)
	}

	d := &Document{}
	var docXML []byte
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("docx: open part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docx: read part %s: %w", f.Name, err)
		}
		d.parts = append(d.parts, part{name: f.Name, data: content})
		if f.Name == documentPart {
			docXML = content
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("docx: package has no %s", documentPart)
	}

	t, err := parseTree(docXML)
	if err != nil {
		return nil, err
	}
	body := firstChild(t.root, "body")
	if body == nil {
		return nil, fmt.Errorf("docx: document has no body")
	}
	d.tree = t
	d.body = body
	return d, nil
}

// Marshal serializes the package, replacing word/document.xml with the
// current state of the tree and carrying all other parts through verbatim.
func (d *Document) Marshal() ([]byte, error) {
	docXML, err := d.tree.encode()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	wroteDoc := false
	for _, p := range d.parts {
		content := p.data
		if p.name == documentPart {
			content = docXML
			wroteDoc = true
		}
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docx: create part %s: %w", p.name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("docx: write part %s: %w", p.name, err)
		}
	}
	if !wroteDoc {
		w, err := zw.Create(documentPart)
		if err != nil {
			return nil, fmt.Errorf("docx: create part %s: %w", documentPart, err)
		}
		if _, err := w.Write(docXML); err != nil {
			return nil, fmt.Errorf("docx: write part %s: %w", documentPart, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close package: %w", err)
	}
	return buf.Bytes(), nil
}

// Paragraphs returns the body's block-level paragraphs in document order.
// Paragraphs nested inside tables are reachable through Tables.
func (d *Document) Paragraphs() []*Paragraph {
	nodes := childElems(d.body, "p")
	out := make([]*Paragraph, len(nodes))
	for i, n := range nodes {
		out[i] = &Paragraph{n: n}
	}
	return out
}

// Tables returns the body's tables in document order.
func (d *Document) Tables() []*Table {
	nodes := childElems(d.body, "tbl")
	out := make([]*Table, len(nodes))
	for i, n := range nodes {
		out[i] = &Table{n: n}
	}
	return out
}
