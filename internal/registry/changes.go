package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/models"
)

// validTransitions encodes the change lifecycle: exactly one mutation
// attempt per apply pass moves staged → applied or failed; restore moves
// applied → reverted; cancellation is only possible while staged.
var validTransitions = map[string][]string{
	models.ChangeStatusStaged:  {models.ChangeStatusApplied, models.ChangeStatusFailed, models.ChangeStatusCancelled},
	models.ChangeStatusApplied: {models.ChangeStatusReverted},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// StageChange inserts a new staged change.
func (db *DB) StageChange(c models.ChangeRequest) error {
	_, err := db.conn.Exec(`
		INSERT INTO changes (id, finding_id, document_id, original_content, new_content, change_type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.FindingID, c.DocumentID, c.OriginalContent, c.NewContent, c.ChangeType, models.ChangeStatusStaged, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("registry: stage change: %w", err)
	}
	return nil
}

// GetChange returns one change by id, joined with its finding's element
// path so the engine can resolve positionally.
func (db *DB) GetChange(id string) (*models.ChangeRequest, error) {
	row := db.conn.QueryRow(changeSelect+` WHERE c.id = ?`, id)
	c, err := scanChange(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListChanges returns a document's changes in creation order, optionally
// filtered by status.
func (db *DB) ListChanges(documentID, status string) ([]models.ChangeRequest, error) {
	query := changeSelect + ` WHERE c.document_id = ?`
	args := []any{documentID}
	if status != "" {
		query += ` AND c.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY c.created_at, c.rowid`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("registry: list changes: %w", err)
	}
	defer rows.Close()

	var out []models.ChangeRequest
	for rows.Next() {
		c, err := scanChange(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// TransitionChange moves a change from one status to another, enforcing the
// lifecycle. A disallowed transition is a conflict; a missing change is not
// found. The applied timestamp is stamped when entering applied.
func (db *DB) TransitionChange(id, from, to, reason string) error {
	if !transitionAllowed(from, to) {
		return fmt.Errorf("registry: transition %s → %s: %w", from, to, apperr.ErrConflict)
	}

	var appliedAt any
	if to == models.ChangeStatusApplied {
		appliedAt = time.Now().UTC()
	}
	res, err := db.conn.Exec(`
		UPDATE changes SET status = ?, failure_reason = ?, applied_at = COALESCE(?, applied_at)
		WHERE id = ? AND status = ?
	`, to, reason, appliedAt, id, from)
	if err != nil {
		return fmt.Errorf("registry: transition change: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("registry: transition change: %w", err)
	}
	if n == 0 {
		// Distinguish a missing row from a row in the wrong state.
		if _, getErr := db.GetChange(id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("registry: change %s is not %s: %w", id, from, apperr.ErrConflict)
	}
	return nil
}

// RevertAppliedChanges transitions every applied change of a document to
// reverted, returning how many rows moved.
func (db *DB) RevertAppliedChanges(documentID string) (int64, error) {
	res, err := db.conn.Exec(`
		UPDATE changes SET status = ? WHERE document_id = ? AND status = ?
	`, models.ChangeStatusReverted, documentID, models.ChangeStatusApplied)
	if err != nil {
		return 0, fmt.Errorf("registry: revert changes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("registry: revert changes: %w", err)
	}
	return n, nil
}

// CancelChange removes a staged change; anything past staged is a conflict.
func (db *DB) CancelChange(id string) error {
	return db.TransitionChange(id, models.ChangeStatusStaged, models.ChangeStatusCancelled, "")
}

const changeSelect = `
	SELECT c.id, c.finding_id, c.document_id, c.original_content, c.new_content,
	       c.change_type, c.status, c.created_at, c.applied_at, f.element_path
	FROM changes c
	JOIN findings f ON f.id = c.finding_id`

func scanChange(scan func(dest ...any) error) (*models.ChangeRequest, error) {
	var c models.ChangeRequest
	var appliedAt sql.NullTime
	err := scan(&c.ID, &c.FindingID, &c.DocumentID, &c.OriginalContent, &c.NewContent,
		&c.ChangeType, &c.Status, &c.CreatedAt, &appliedAt, &c.ElementPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("registry: scan change: %w", err)
	}
	if appliedAt.Valid {
		c.AppliedAt = &appliedAt.Time
	}
	return &c, nil
}

// requireAffected maps a zero-row UPDATE to the given sentinel.
func requireAffected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("registry: rows affected: %w", err)
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite uniqueness error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
