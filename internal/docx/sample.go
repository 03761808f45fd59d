package docx

import "fmt"

// NewSample builds a document seeded with the content the audit catalog
// flags: a title, a paragraph posing as a heading, a misplaced heading
// level, low-contrast and tiny text, a vague reference, a "click here"
// link sentence, and a headerless data table.
func NewSample() *Document {
	d := New()
	d.AddHeading("Sample Document with Accessibility Issues", 0)
	d.AddParagraph("This is a paragraph that should be a heading.")
	d.AddHeading("Subsection", 3)
	d.AddParagraph("This text has insufficient color contrast.")
	d.AddParagraph("Please refer to the chart below for more information.")

	link := d.AddParagraph("Click ")
	link.AppendRun("here")
	link.AppendRun(" for more information.")

	d.AddParagraph("This text is too small to read easily.")

	tbl := d.AddTable(3, 3)
	for i, row := range tbl.Rows() {
		for j, cell := range row.Cells() {
			_ = cell.SetText(fmt.Sprintf("Data %d-%d", i+1, j+1))
		}
	}
	return d
}
