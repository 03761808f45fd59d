package registry

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/models"
)

// ReplaceFindings swaps a document's findings for a fresh set in one
// transaction, so re-scanning replaces rather than accumulates.
func (db *DB) ReplaceFindings(documentID string, findings []models.Finding) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("registry: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM findings WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("registry: clear findings: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO findings (id, document_id, category, clause, description, wcag_level, original_content, element_path, fixed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("registry: prepare finding insert: %w", err)
	}
	defer stmt.Close()
	for _, f := range findings {
		if _, err := stmt.Exec(f.ID, documentID, f.Category, f.Clause, f.Description, f.WCAGLevel, f.OriginalContent, f.ElementPath, f.Fixed); err != nil {
			return fmt.Errorf("registry: insert finding: %w", err)
		}
	}
	return tx.Commit()
}

// GetFinding returns one finding by id.
func (db *DB) GetFinding(id string) (*models.Finding, error) {
	var f models.Finding
	err := db.conn.QueryRow(`
		SELECT id, document_id, category, clause, description, wcag_level, original_content, element_path, fixed
		FROM findings WHERE id = ?
	`, id).Scan(&f.ID, &f.DocumentID, &f.Category, &f.Clause, &f.Description, &f.WCAGLevel, &f.OriginalContent, &f.ElementPath, &f.Fixed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry: get finding: %w", err)
	}
	return &f, nil
}

// ListFindings returns a document's findings in insertion order.
func (db *DB) ListFindings(documentID string) ([]models.Finding, error) {
	rows, err := db.conn.Query(`
		SELECT id, document_id, category, clause, description, wcag_level, original_content, element_path, fixed
		FROM findings WHERE document_id = ? ORDER BY rowid
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("registry: list findings: %w", err)
	}
	defer rows.Close()

	var out []models.Finding
	for rows.Next() {
		var f models.Finding
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Category, &f.Clause, &f.Description, &f.WCAGLevel, &f.OriginalContent, &f.ElementPath, &f.Fixed); err != nil {
			return nil, fmt.Errorf("registry: scan finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SetFindingFixed flips a finding's fixed flag.
func (db *DB) SetFindingFixed(id string, fixed bool) error {
	res, err := db.conn.Exec(`UPDATE findings SET fixed = ? WHERE id = ?`, fixed, id)
	if err != nil {
		return fmt.Errorf("registry: set finding fixed: %w", err)
	}
	return requireAffected(res, apperr.ErrNotFound)
}

// ResetFindings marks all of a document's findings unfixed; restore uses it
// to return dependent audit state to its pre-apply shape.
func (db *DB) ResetFindings(documentID string) error {
	if _, err := db.conn.Exec(`UPDATE findings SET fixed = 0 WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("registry: reset findings: %w", err)
	}
	return nil
}
