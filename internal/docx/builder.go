package docx

import (
	"encoding/xml"
	"fmt"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`
)

// New creates an empty document with the minimal set of package parts.
// It is used by tests and the sample command to build fixtures without a
// word processor.
func New() *Document {
	root := &node{name: xml.Name{Space: wmlNS, Local: "document"}}
	body := wmlElem("body")
	root.children = append(root.children, body)

	return &Document{
		parts: []part{
			{name: "[Content_Types].xml", data: []byte(contentTypesXML)},
			{name: "_rels/.rels", data: []byte(packageRelsXML)},
		},
		tree: &tree{
			root:      root,
			header:    `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`,
			rootStart: fmt.Sprintf(`<w:document xmlns:w=%q>`, wmlNS),
			rootEnd:   `</w:document>`,
			prefixes:  map[string]string{wmlNS: "w", xmlNS: "xml"},
		},
		body: body,
	}
}

// AddParagraph appends a body paragraph carrying text in a single run.
func (d *Document) AddParagraph(text string) *Paragraph {
	p := wmlElem("p", wmlElem("r", textElem(text)))
	d.body.children = append(d.body.children, p)
	return &Paragraph{n: p}
}

// AddHeading appends a heading-styled paragraph. Level 0 produces a Title,
// levels 1 through 9 produce Heading1 through Heading9.
func (d *Document) AddHeading(text string, level int) *Paragraph {
	style := "Title"
	if level > 0 {
		style = fmt.Sprintf("Heading%d", level)
	}
	pStyle := wmlElem("pStyle")
	pStyle.attrs = append(pStyle.attrs, xml.Attr{Name: xml.Name{Space: wmlNS, Local: "val"}, Value: style})
	p := wmlElem("p", wmlElem("pPr", pStyle), wmlElem("r", textElem(text)))
	d.body.children = append(d.body.children, p)
	return &Paragraph{n: p}
}

// AddTable appends a rows-by-cols table of empty cells.
func (d *Document) AddTable(rows, cols int) *Table {
	tbl := wmlElem("tbl")
	for i := 0; i < rows; i++ {
		tr := wmlElem("tr")
		for j := 0; j < cols; j++ {
			tr.children = append(tr.children, wmlElem("tc", wmlElem("p")))
		}
		tbl.children = append(tbl.children, tr)
	}
	d.body.children = append(d.body.children, tbl)
	return &Table{n: tbl}
}
