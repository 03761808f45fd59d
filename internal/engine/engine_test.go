package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/docx"
	"github.com/oskarb/docmend/internal/models"
	"github.com/oskarb/docmend/internal/registry"
	"github.com/oskarb/docmend/internal/storage"
	"github.com/oskarb/docmend/internal/testutil"
)

func testEngine(t *testing.T) (*Engine, *registry.DB, storage.Provider) {
	t.Helper()
	db := testutil.TestDB(t)
	_, store := testutil.TestWorkspace(t)
	return New(store, db), db, store
}

func addTestDoc(t *testing.T, e *Engine, paragraphs ...string) *models.Document {
	t.Helper()
	doc, err := e.AddDocument(context.Background(), "test.docx", testutil.BuildDocument(t, paragraphs...))
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	return doc
}

func seedFinding(t *testing.T, db *registry.DB, docID, path, original string) models.Finding {
	t.Helper()
	f := models.Finding{
		ID:              uuid.NewString(),
		DocumentID:      docID,
		Category:        "heading_structure",
		Clause:          "WCAG 2.1 A 1.3.1",
		Description:     "test finding",
		WCAGLevel:       "A",
		OriginalContent: original,
		ElementPath:     path,
	}
	existing, err := db.ListFindings(docID)
	if err != nil {
		t.Fatalf("ListFindings: %v", err)
	}
	if err := db.ReplaceFindings(docID, append(existing, f)); err != nil {
		t.Fatalf("ReplaceFindings: %v", err)
	}
	return f
}

func stage(t *testing.T, e *Engine, findingID, newContent string) *models.ChangeRequest {
	t.Helper()
	change, err := e.StageChange(context.Background(), findingID, newContent, "manual")
	if err != nil {
		t.Fatalf("StageChange: %v", err)
	}
	return change
}

func storedParagraphs(t *testing.T, store storage.Provider, doc *models.Document) []string {
	t.Helper()
	data, err := store.Read(doc.Path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	pkg, err := docx.OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	paras := pkg.Paragraphs()
	out := make([]string, len(paras))
	for i, p := range paras {
		out[i] = p.Text()
	}
	return out
}

func TestAddDocument(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "hello")

	if doc.Status != models.DocStatusUploaded {
		t.Errorf("status = %q", doc.Status)
	}
	if !store.Exists(doc.Path) {
		t.Error("document bytes not persisted")
	}
	got, err := db.GetDocument(doc.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Checksum != doc.Checksum || got.Checksum == "" {
		t.Errorf("checksum = %q, want %q", got.Checksum, doc.Checksum)
	}
}

func TestAddDocumentRejectsBadInput(t *testing.T) {
	e, _, _ := testEngine(t)

	if _, err := e.AddDocument(context.Background(), "notes.txt", testutil.BuildDocument(t, "x")); err == nil {
		t.Error("expected error for non-docx extension")
	}
	if _, err := e.AddDocument(context.Background(), "bad.docx", []byte("not a zip")); err == nil {
		t.Error("expected error for unparseable content")
	}
	if _, err := e.AddDocument(context.Background(), "", nil); err == nil {
		t.Error("expected error for empty filename")
	}
}

func TestRender(t *testing.T) {
	e, db, _ := testEngine(t)
	doc, err := e.AddDocument(context.Background(), "sample.docx", testutil.SampleDocument(t))
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	html, err := e.Render(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<h1>Sample Document with Accessibility Issues</h1>") {
		t.Errorf("html missing title heading: %q", html)
	}
	if !strings.Contains(html, "<td>Data 1-1</td>") {
		t.Errorf("html missing table cell: %q", html)
	}

	got, _ := db.GetDocument(doc.ID)
	if got.Status != models.DocStatusReady {
		t.Errorf("status = %q, want ready after render", got.Status)
	}
}

func TestRenderUnknownDocument(t *testing.T) {
	e, _, _ := testEngine(t)
	if _, err := e.Render(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveDocument(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "short lived")
	finding := seedFinding(t, db, doc.ID, "//w:p[1]", "short lived")
	stage(t, e, finding.ID, "edited")
	if _, err := e.ApplyStaged(context.Background(), doc.ID); err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}

	if err := e.RemoveDocument(context.Background(), doc.ID); err != nil {
		t.Fatalf("RemoveDocument: %v", err)
	}
	if store.Exists(doc.Path) {
		t.Error("working copy should be deleted")
	}
	if store.Exists(backupPath(doc.ID)) {
		t.Error("backup should be deleted")
	}
	if _, err := db.GetDocument(doc.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("document err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetFinding(finding.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("finding should cascade, err = %v", err)
	}
}

func TestRemoveDocumentWithoutBackup(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "never applied")

	if err := e.RemoveDocument(context.Background(), doc.ID); err != nil {
		t.Fatalf("RemoveDocument: %v", err)
	}
	if store.Exists(doc.Path) {
		t.Error("working copy should be deleted")
	}
	if _, err := db.GetDocument(doc.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStageChangeValidation(t *testing.T) {
	e, db, _ := testEngine(t)
	doc := addTestDoc(t, e, "alpha")
	finding := seedFinding(t, db, doc.ID, "//w:p[1]", "alpha")

	if _, err := e.StageChange(context.Background(), finding.ID, "   ", "manual"); err == nil {
		t.Error("expected error for blank content")
	}
	if _, err := e.StageChange(context.Background(), "missing", "text", "manual"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	change := stage(t, e, finding.ID, "Alpha Heading")
	if change.OriginalContent != "alpha" {
		t.Errorf("original content = %q, want copied from finding", change.OriginalContent)
	}
	if change.ElementPath != "//w:p[1]" {
		t.Errorf("element path = %q", change.ElementPath)
	}
}

func TestApplyStagedByPath(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "A1", "B1", "C1")
	finding := seedFinding(t, db, doc.ID, "//w:p[2]", "B1")
	change := stage(t, e, finding.ID, "B2")

	outcome, err := e.ApplyStaged(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}
	if len(outcome.Applied) != 1 || outcome.Applied[0] != change.ID {
		t.Errorf("applied = %v", outcome.Applied)
	}
	if len(outcome.Failed) != 0 {
		t.Errorf("failed = %v", outcome.Failed)
	}
	if outcome.BackupRef == "" || !store.Exists(outcome.BackupRef) {
		t.Errorf("backup ref %q missing", outcome.BackupRef)
	}

	paras := storedParagraphs(t, store, doc)
	want := []string{"A1", "B2", "C1"}
	for i := range want {
		if paras[i] != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i+1, paras[i], want[i])
		}
	}

	got, _ := db.GetChange(change.ID)
	if got.Status != models.ChangeStatusApplied {
		t.Errorf("change status = %q", got.Status)
	}
	f, _ := db.GetFinding(finding.ID)
	if !f.Fixed {
		t.Error("finding should be fixed")
	}
	updated, _ := db.GetDocument(doc.ID)
	if updated.Status != models.DocStatusRemediated {
		t.Errorf("document status = %q", updated.Status)
	}
	if updated.Checksum == doc.Checksum {
		t.Error("checksum should change after mutation")
	}
}

func TestApplyFallsBackToContentMatch(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "first", "second")
	// Stale path, valid original content.
	finding := seedFinding(t, db, doc.ID, "//w:p[99]", "second")
	stage(t, e, finding.ID, "second fixed")

	outcome, err := e.ApplyStaged(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}
	if len(outcome.Applied) != 1 {
		t.Fatalf("applied = %v, failed = %v", outcome.Applied, outcome.Failed)
	}
	paras := storedParagraphs(t, store, doc)
	if paras[1] != "second fixed" {
		t.Errorf("paragraph 2 = %q", paras[1])
	}
}

func TestApplyPartitionsOutcome(t *testing.T) {
	e, db, _ := testEngine(t)
	doc := addTestDoc(t, e, "good paragraph")

	okFinding := seedFinding(t, db, doc.ID, "//w:p[1]", "good paragraph")
	missing := seedFinding(t, db, doc.ID, "//w:p[42]", "no such text anywhere")

	okChange := stage(t, e, okFinding.ID, "good fixed")
	missingChange := stage(t, e, missing.ID, "whatever")

	outcome, err := e.ApplyStaged(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}
	if len(outcome.Applied) != 1 || outcome.Applied[0] != okChange.ID {
		t.Errorf("applied = %v", outcome.Applied)
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0].ID != missingChange.ID {
		t.Fatalf("failed = %v", outcome.Failed)
	}
	if outcome.Failed[0].Reason != "element not found" {
		t.Errorf("reason = %q", outcome.Failed[0].Reason)
	}

	got, _ := db.GetChange(missingChange.ID)
	if got.Status != models.ChangeStatusFailed {
		t.Errorf("failed change status = %q", got.Status)
	}
	// A partially successful batch still remediates the document.
	updated, _ := db.GetDocument(doc.ID)
	if updated.Status != models.DocStatusRemediated {
		t.Errorf("document status = %q", updated.Status)
	}
}

func TestApplyUnsupportedNodeKind(t *testing.T) {
	e, db, _ := testEngine(t)
	doc, err := e.AddDocument(context.Background(), "sample.docx", testutil.SampleDocument(t))
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	finding := seedFinding(t, db, doc.ID, "//w:tbl[1]", "whole-table target nothing matches")
	change := stage(t, e, finding.ID, "new text")

	outcome, err := e.ApplyStaged(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0].ID != change.ID {
		t.Fatalf("failed = %v", outcome.Failed)
	}
	if outcome.Failed[0].Reason != "unsupported node kind" {
		t.Errorf("reason = %q", outcome.Failed[0].Reason)
	}
}

func TestApplyStagedRequiresStagedChanges(t *testing.T) {
	e, _, _ := testEngine(t)
	doc := addTestDoc(t, e, "alpha")
	if _, err := e.ApplyStaged(context.Background(), doc.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBackupIdempotentAcrossApplies(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "original one", "original two")
	originalBytes, err := store.Read(doc.Path)
	if err != nil {
		t.Fatal(err)
	}

	f1 := seedFinding(t, db, doc.ID, "//w:p[1]", "original one")
	stage(t, e, f1.ID, "edited one")
	if _, err := e.ApplyStaged(context.Background(), doc.ID); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	f2 := seedFinding(t, db, doc.ID, "//w:p[2]", "original two")
	stage(t, e, f2.ID, "edited two")
	if _, err := e.ApplyStaged(context.Background(), doc.ID); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	// The backup still holds the pre-first-apply bytes.
	backup, err := store.Read(backupPath(doc.ID))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != string(originalBytes) {
		t.Error("backup was overwritten by the second apply")
	}
}

func TestRestore(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "restore me")
	finding := seedFinding(t, db, doc.ID, "//w:p[1]", "restore me")
	change := stage(t, e, finding.ID, "mutated")

	if _, err := e.ApplyStaged(context.Background(), doc.ID); err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}
	if err := e.Restore(context.Background(), doc.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	paras := storedParagraphs(t, store, doc)
	if paras[0] != "restore me" {
		t.Errorf("paragraph = %q, want original content back", paras[0])
	}
	got, _ := db.GetChange(change.ID)
	if got.Status != models.ChangeStatusReverted {
		t.Errorf("change status = %q", got.Status)
	}
	f, _ := db.GetFinding(finding.ID)
	if f.Fixed {
		t.Error("finding should be unfixed after restore")
	}
	updated, _ := db.GetDocument(doc.ID)
	if updated.Status != models.DocStatusReady {
		t.Errorf("document status = %q", updated.Status)
	}

	// The snapshot is retained; restore is repeatable.
	if err := e.Restore(context.Background(), doc.ID); err != nil {
		t.Errorf("second Restore: %v", err)
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	e, _, _ := testEngine(t)
	doc := addTestDoc(t, e, "never applied")
	if err := e.Restore(context.Background(), doc.ID); !errors.Is(err, apperr.ErrNoBackup) {
		t.Errorf("err = %v, want ErrNoBackup", err)
	}
}

func TestRestoreUnknownDocument(t *testing.T) {
	e, _, _ := testEngine(t)
	if err := e.Restore(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApplyBatchFailureClassificationIsStable(t *testing.T) {
	e, db, _ := testEngine(t)
	doc := addTestDoc(t, e, "stable text")

	requests := []models.ChangeRequest{
		{
			ID:              uuid.NewString(),
			OriginalContent: "stable text",
			NewContent:      "stable text", // same text keeps the tree unchanged
			ElementPath:     "//w:p[1]",
		},
		{
			ID:              uuid.NewString(),
			OriginalContent: "matches nothing at all",
			NewContent:      "x",
			ElementPath:     "//w:p[42]",
		},
	}

	first, err := e.ApplyBatch(context.Background(), doc, requests)
	if err != nil {
		t.Fatalf("first ApplyBatch: %v", err)
	}
	doc, err = db.GetDocument(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.ApplyBatch(context.Background(), doc, requests)
	if err != nil {
		t.Fatalf("second ApplyBatch: %v", err)
	}

	if len(first.Applied) != 1 || len(first.Failed) != 1 {
		t.Fatalf("first partition: applied = %v, failed = %v", first.Applied, first.Failed)
	}
	if len(second.Applied) != len(first.Applied) || len(second.Failed) != len(first.Failed) {
		t.Errorf("partition changed on re-run: %v/%v vs %v/%v",
			first.Applied, first.Failed, second.Applied, second.Failed)
	}
	if second.Failed[0].ID != first.Failed[0].ID || second.Failed[0].Reason != first.Failed[0].Reason {
		t.Errorf("failure classification changed: %+v vs %+v", first.Failed[0], second.Failed[0])
	}
}

func TestLastWriteWinsOnSameNode(t *testing.T) {
	e, db, store := testEngine(t)
	doc := addTestDoc(t, e, "contested")

	f1 := seedFinding(t, db, doc.ID, "//w:p[1]", "contested")
	f2 := seedFinding(t, db, doc.ID, "//w:p[1]", "contested")
	stage(t, e, f1.ID, "first write")
	stage(t, e, f2.ID, "second write")

	outcome, err := e.ApplyStaged(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}
	if len(outcome.Applied) != 2 {
		t.Fatalf("applied = %v, failed = %v", outcome.Applied, outcome.Failed)
	}
	paras := storedParagraphs(t, store, doc)
	if paras[0] != "second write" {
		t.Errorf("paragraph = %q, want the later change to win", paras[0])
	}
}
