package element

import (
	"errors"
	"testing"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/docx"
)

// fixture builds three paragraphs and one 2x2 table with known text.
func fixture(t *testing.T) *docx.Document {
	t.Helper()
	d := docx.New()
	d.AddParagraph("alpha")
	p := d.AddParagraph("beta ")
	p.AppendRun("gamma")
	d.AddHeading("Heading Text", 1)
	tbl := d.AddTable(2, 2)
	for i, row := range tbl.Rows() {
		for j, cell := range row.Cells() {
			if err := cell.SetText("cell " + string(rune('a'+i)) + string(rune('0'+j))); err != nil {
				t.Fatalf("SetText: %v", err)
			}
		}
	}
	return d
}

func TestResolveRef(t *testing.T) {
	doc := fixture(t)

	cases := []struct {
		name     string
		ref      string
		wantKind docx.Kind
		wantText string
	}{
		{"first paragraph", "//w:p[1]", docx.KindParagraph, "alpha"},
		{"second run of second paragraph", "//w:p[2]/w:r[2]", docx.KindRun, "gamma"},
		{"run via trailing text element", "//w:p[2]/w:r[1]/w:t", docx.KindRun, "beta "},
		{"table", "//w:tbl[1]", docx.KindTable, ""},
		{"cell", "//w:tbl[1]/w:tr[2]/w:tc[1]", docx.KindCell, "cell b0"},
		{"paragraph inside cell", "//w:tbl[1]/w:tr[1]/w:tc[2]/w:p[1]", docx.KindParagraph, "cell a1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			node, err := ResolveRef(doc, tc.ref)
			if err != nil {
				t.Fatalf("ResolveRef(%q): %v", tc.ref, err)
			}
			if node.Kind() != tc.wantKind {
				t.Errorf("kind = %q, want %q", node.Kind(), tc.wantKind)
			}
			if tc.wantText != "" {
				reader, ok := node.(docx.TextReader)
				if !ok {
					t.Fatalf("node %T is not a TextReader", node)
				}
				if reader.Text() != tc.wantText {
					t.Errorf("text = %q, want %q", reader.Text(), tc.wantText)
				}
			}
		})
	}
}

func TestResolveRefNotFound(t *testing.T) {
	doc := fixture(t)

	cases := []struct {
		name string
		ref  string
	}{
		{"empty reference", ""},
		{"paragraph out of range", "//w:p[99]"},
		{"run out of range", "//w:p[1]/w:r[5]"},
		{"table out of range", "//w:tbl[2]"},
		{"row out of range", "//w:tbl[1]/w:tr[3]"},
		{"wrong kind at body scope", "//w:tr[1]"},
		{"wrong kind under paragraph", "//w:p[1]/w:tc[1]"},
		{"wrong kind under table", "//w:tbl[1]/w:p[1]"},
		{"malformed reference", "//w:p[zero]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ResolveRef(doc, tc.ref); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("ResolveRef(%q) err = %v, want ErrNotFound", tc.ref, err)
			}
		})
	}
}

func TestResolveEmptyPath(t *testing.T) {
	doc := fixture(t)
	if _, err := Resolve(doc, nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Resolve(nil) err = %v, want ErrNotFound", err)
	}
}
