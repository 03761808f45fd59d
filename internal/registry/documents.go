package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/models"
)

// InsertDocument registers a new document. The id must be unique.
func (db *DB) InsertDocument(doc models.Document) error {
	_, err := db.conn.Exec(`
		INSERT INTO documents (id, filename, path, checksum, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Filename, doc.Path, doc.Checksum, doc.Status, doc.UploadedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("registry: insert document: %w", err)
	}
	return nil
}

// GetDocument returns one document by id.
func (db *DB) GetDocument(id string) (*models.Document, error) {
	row := db.conn.QueryRow(`
		SELECT id, filename, path, checksum, status, uploaded_at, remediated_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// ListDocuments returns all registered documents, newest first.
func (db *DB) ListDocuments() ([]models.Document, error) {
	rows, err := db.conn.Query(`
		SELECT id, filename, path, checksum, status, uploaded_at, remediated_at
		FROM documents ORDER BY uploaded_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("registry: list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

// SetDocumentStatus updates a document's lifecycle status.
func (db *DB) SetDocumentStatus(id, status string) error {
	res, err := db.conn.Exec(`UPDATE documents SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("registry: set document status: %w", err)
	}
	return requireAffected(res, apperr.ErrNotFound)
}

// SetDocumentChecksum records the checksum of the persisted document bytes.
func (db *DB) SetDocumentChecksum(id, checksum string) error {
	res, err := db.conn.Exec(`UPDATE documents SET checksum = ? WHERE id = ?`, checksum, id)
	if err != nil {
		return fmt.Errorf("registry: set document checksum: %w", err)
	}
	return requireAffected(res, apperr.ErrNotFound)
}

// DeleteDocument removes a document row; findings and changes cascade.
func (db *DB) DeleteDocument(id string) error {
	res, err := db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("registry: delete document: %w", err)
	}
	return requireAffected(res, apperr.ErrNotFound)
}

// MarkRemediated transitions a document to remediated and stamps the time.
func (db *DB) MarkRemediated(id string) error {
	res, err := db.conn.Exec(`
		UPDATE documents SET status = ?, remediated_at = ? WHERE id = ?
	`, models.DocStatusRemediated, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("registry: mark remediated: %w", err)
	}
	return requireAffected(res, apperr.ErrNotFound)
}

func scanDocument(row *sql.Row) (*models.Document, error) {
	var doc models.Document
	var remediated sql.NullTime
	err := row.Scan(&doc.ID, &doc.Filename, &doc.Path, &doc.Checksum, &doc.Status, &doc.UploadedAt, &remediated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry: scan document: %w", err)
	}
	if remediated.Valid {
		doc.RemediatedAt = &remediated.Time
	}
	return &doc, nil
}

func scanDocumentRow(rows *sql.Rows) (*models.Document, error) {
	var doc models.Document
	var remediated sql.NullTime
	if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Path, &doc.Checksum, &doc.Status, &doc.UploadedAt, &remediated); err != nil {
		return nil, fmt.Errorf("registry: scan document: %w", err)
	}
	if remediated.Valid {
		doc.RemediatedAt = &remediated.Time
	}
	return &doc, nil
}
