// Package testutil provides shared test helpers for setting up workspaces,
// registries, and document fixtures.
package testutil

import (
	"os"
	"testing"

	"github.com/oskarb/docmend/internal/docx"
	"github.com/oskarb/docmend/internal/registry"
	"github.com/oskarb/docmend/internal/storage"
)

// TestDB creates a temporary SQLite registry that is automatically cleaned up.
func TestDB(t *testing.T) *registry.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "docmend-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := registry.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory with a storage.Provider.
func TestWorkspace(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// SampleDocument builds the fixture the audit catalog addresses: title,
// body paragraphs with known defects, and a 3x3 data table.
func SampleDocument(t *testing.T) []byte {
	t.Helper()
	data, err := docx.NewSample().Marshal()
	if err != nil {
		t.Fatalf("marshal sample document: %v", err)
	}
	return data
}

// BuildDocument assembles a minimal package whose body paragraphs carry the
// given texts.
func BuildDocument(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	d := docx.New()
	for _, text := range paragraphs {
		d.AddParagraph(text)
	}
	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	return data
}

