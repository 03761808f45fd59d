package docx

import (
	"html"
	"strconv"
	"strings"
)

// HTML renders the document body as a simple HTML fragment: heading-styled
// paragraphs become <h1>..<h6>, other paragraphs <p>, tables <table> grids.
// Text is escaped; run-level formatting is not carried over.
func (d *Document) HTML() string {
	var b strings.Builder
	for _, child := range d.body.children {
		switch {
		case isElem(child, "p"):
			writeParagraphHTML(&b, &Paragraph{n: child})
		case isElem(child, "tbl"):
			writeTableHTML(&b, &Table{n: child})
		}
	}
	return b.String()
}

func writeParagraphHTML(b *strings.Builder, p *Paragraph) {
	tag := "p"
	if p.IsHeading() {
		tag = "h" + strconv.Itoa(headingLevel(p.StyleID()))
	}
	b.WriteString("<" + tag + ">")
	b.WriteString(html.EscapeString(p.Text()))
	b.WriteString("</" + tag + ">")
}

func writeTableHTML(b *strings.Builder, t *Table) {
	b.WriteString("<table>")
	for _, row := range t.Rows() {
		b.WriteString("<tr>")
		for _, cell := range row.Cells() {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell.Text()))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
}

// headingLevel maps a heading style to an HTML level. Title renders as h1;
// levels past h6 clamp to h6.
func headingLevel(styleID string) int {
	if styleID == "Title" {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(styleID, "Heading"))
	if err != nil || n < 1 {
		return 1
	}
	if n > 6 {
		return 6
	}
	return n
}
