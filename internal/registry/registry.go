// Package registry provides the SQLite-backed store for documents, audit
// findings, and staged changes, with key uniqueness and status-transition
// invariants enforced at the query level.
package registry

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oskarb/docmend/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	path          TEXT NOT NULL,
	checksum      TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'uploaded',
	uploaded_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	remediated_at DATETIME
);

CREATE TABLE IF NOT EXISTS findings (
	id               TEXT PRIMARY KEY,
	document_id      TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	category         TEXT NOT NULL DEFAULT '',
	clause           TEXT NOT NULL,
	description      TEXT NOT NULL,
	wcag_level       TEXT NOT NULL,
	original_content TEXT NOT NULL DEFAULT '',
	element_path     TEXT NOT NULL DEFAULT '',
	fixed            INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS changes (
	id               TEXT PRIMARY KEY,
	finding_id       TEXT NOT NULL REFERENCES findings(id) ON DELETE CASCADE,
	document_id      TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	original_content TEXT NOT NULL DEFAULT '',
	new_content      TEXT NOT NULL,
	change_type      TEXT NOT NULL DEFAULT 'manual',
	status           TEXT NOT NULL DEFAULT 'staged',
	failure_reason   TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	applied_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_findings_document ON findings(document_id);
CREATE INDEX IF NOT EXISTS idx_changes_document ON changes(document_id, status);
`

// DB wraps a sql.DB with registry-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("registry: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registry: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registry: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Store defines the registry operations consumed by the engine, audit, and
// CLI layers. Consumers should depend on this interface rather than the
// concrete *DB type to facilitate testing with fakes.
type Store interface {
	InsertDocument(doc models.Document) error
	GetDocument(id string) (*models.Document, error)
	ListDocuments() ([]models.Document, error)
	DeleteDocument(id string) error
	SetDocumentStatus(id, status string) error
	SetDocumentChecksum(id, checksum string) error
	MarkRemediated(id string) error

	ReplaceFindings(documentID string, findings []models.Finding) error
	GetFinding(id string) (*models.Finding, error)
	ListFindings(documentID string) ([]models.Finding, error)
	SetFindingFixed(id string, fixed bool) error
	ResetFindings(documentID string) error

	StageChange(c models.ChangeRequest) error
	GetChange(id string) (*models.ChangeRequest, error)
	ListChanges(documentID, status string) ([]models.ChangeRequest, error)
	TransitionChange(id, from, to, reason string) error
	RevertAppliedChanges(documentID string) (int64, error)
	CancelChange(id string) error

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
