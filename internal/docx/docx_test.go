package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func roundTrip(t *testing.T, d *Document) *Document {
	t.Helper()
	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	reopened, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	return reopened
}

func TestBuilderRoundTrip(t *testing.T) {
	d := New()
	d.AddParagraph("first")
	d.AddHeading("Section", 2)
	d.AddTable(2, 2)

	got := roundTrip(t, d)
	paras := got.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(paras))
	}
	if paras[0].Text() != "first" {
		t.Errorf("paragraph text = %q", paras[0].Text())
	}
	if paras[1].StyleID() != "Heading2" {
		t.Errorf("style = %q, want Heading2", paras[1].StyleID())
	}
	if !paras[1].IsHeading() {
		t.Error("Heading2 paragraph should report IsHeading")
	}
	tables := got.Tables()
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	rows := tables[0].Rows()
	if len(rows) != 2 || len(rows[0].Cells()) != 2 {
		t.Errorf("table shape = %dx%d, want 2x2", len(rows), len(rows[0].Cells()))
	}
}

func TestTitleIsHeading(t *testing.T) {
	d := New()
	p := d.AddHeading("Doc Title", 0)
	if p.StyleID() != "Title" {
		t.Errorf("style = %q, want Title", p.StyleID())
	}
	if !p.IsHeading() {
		t.Error("Title paragraph should report IsHeading")
	}
}

func TestReplaceRunsSurvivesRoundTrip(t *testing.T) {
	d := New()
	p := d.AddHeading("old heading", 1)
	p.AppendRun(" extra")
	if err := p.ReplaceRuns("new heading"); err != nil {
		t.Fatalf("ReplaceRuns: %v", err)
	}

	got := roundTrip(t, d)
	para := got.Paragraphs()[0]
	if para.Text() != "new heading" {
		t.Errorf("text = %q, want %q", para.Text(), "new heading")
	}
	if len(para.Runs()) != 1 {
		t.Errorf("runs = %d, want 1", len(para.Runs()))
	}
	// Paragraph properties survive the run replacement.
	if para.StyleID() != "Heading1" {
		t.Errorf("style = %q, want Heading1", para.StyleID())
	}
}

func TestRunSetText(t *testing.T) {
	d := New()
	p := d.AddParagraph("keep ")
	p.AppendRun("change me")

	runs := roundTrip(t, d).Paragraphs()[0].Runs()
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if err := runs[1].SetText("changed"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if runs[1].Text() != "changed" {
		t.Errorf("run text = %q", runs[1].Text())
	}
	if runs[0].Text() != "keep " {
		t.Errorf("sibling run mutated: %q", runs[0].Text())
	}
}

func TestCellSetTextCollapsesParagraphs(t *testing.T) {
	d := New()
	tbl := d.AddTable(1, 1)
	cell := tbl.Rows()[0].Cells()[0]
	if err := cell.SetText("first line"); err != nil {
		t.Fatalf("SetText: %v", err)
	}

	got := roundTrip(t, d)
	cell = got.Tables()[0].Rows()[0].Cells()[0]
	if cell.Text() != "first line" {
		t.Errorf("cell text = %q", cell.Text())
	}
	if err := cell.SetText("second"); err != nil {
		t.Fatalf("SetText again: %v", err)
	}
	if len(cell.Paragraphs()) != 1 {
		t.Errorf("paragraphs = %d, want 1", len(cell.Paragraphs()))
	}
}

func TestTextWhitespacePreserved(t *testing.T) {
	d := New()
	d.AddParagraph("  leading and trailing  ")
	got := roundTrip(t, d)
	if text := got.Paragraphs()[0].Text(); text != "  leading and trailing  " {
		t.Errorf("text = %q, whitespace lost", text)
	}
}

func TestMarshalPreservesForeignParts(t *testing.T) {
	d := New()
	d.AddParagraph("body")
	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Repack with an extra part the codec knows nothing about.
	withExtra := addZipPart(t, data, "word/styles.xml", []byte("<styles/>"))

	doc, err := OpenBytes(withExtra)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if err := doc.Paragraphs()[0].ReplaceRuns("mutated"); err != nil {
		t.Fatalf("ReplaceRuns: %v", err)
	}
	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal after mutation: %v", err)
	}

	parts := readZip(t, out)
	if string(parts["word/styles.xml"]) != "<styles/>" {
		t.Errorf("foreign part not carried through: %q", parts["word/styles.xml"])
	}
	if !strings.Contains(string(parts["word/document.xml"]), "mutated") {
		t.Error("document part missing mutation")
	}
}

func TestOpenBytesRejectsNonZip(t *testing.T) {
	if _, err := OpenBytes([]byte("not a zip")); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestOpenBytesRejectsMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/other.xml")
	_, _ = w.Write([]byte("<x/>"))
	_ = zw.Close()

	if _, err := OpenBytes(buf.Bytes()); err == nil {
		t.Error("expected error for package without word/document.xml")
	}
}

func TestSampleContent(t *testing.T) {
	got := roundTrip(t, NewSample())
	paras := got.Paragraphs()
	if len(paras) != 7 {
		t.Fatalf("paragraphs = %d, want 7", len(paras))
	}
	if paras[0].Text() != "Sample Document with Accessibility Issues" {
		t.Errorf("title = %q", paras[0].Text())
	}
	if paras[2].StyleID() != "Heading3" {
		t.Errorf("subsection style = %q, want Heading3", paras[2].StyleID())
	}
	if paras[5].Text() != "Click here for more information." {
		t.Errorf("link paragraph = %q", paras[5].Text())
	}
	if len(paras[5].Runs()) != 3 {
		t.Errorf("link runs = %d, want 3", len(paras[5].Runs()))
	}
	tbl := got.Tables()
	if len(tbl) != 1 {
		t.Fatalf("tables = %d, want 1", len(tbl))
	}
	cell := tbl[0].Rows()[1].Cells()[2]
	if cell.Text() != "Data 2-3" {
		t.Errorf("cell text = %q, want Data 2-3", cell.Text())
	}
}

func addZipPart(t *testing.T, pkg []byte, name string, content []byte) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	w, err := zw.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readZip(t *testing.T, pkg []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = data
	}
	return out
}
