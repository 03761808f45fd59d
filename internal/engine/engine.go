// Package engine orchestrates document remediation: batch application of
// staged changes with backup, single-save persistence, and restore.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/checksum"
	"github.com/oskarb/docmend/internal/docx"
	"github.com/oskarb/docmend/internal/element"
	"github.com/oskarb/docmend/internal/models"
	"github.com/oskarb/docmend/internal/registry"
	"github.com/oskarb/docmend/internal/storage"
)

const (
	documentsDir = "documents"
	backupsDir   = "backups"
)

// Engine coordinates storage and registry operations for one workspace.
// Callers must serialize mutating operations per document id; the engine
// provides no internal locking.
type Engine struct {
	store storage.Provider
	reg   registry.Store
}

// New creates an engine over the given storage provider and registry.
func New(store storage.Provider, reg registry.Store) *Engine {
	return &Engine{store: store, reg: reg}
}

// AddDocument registers an uploaded DOCX payload: the content is validated
// as a parseable package, persisted under documents/, and recorded in the
// registry.
func (e *Engine) AddDocument(_ context.Context, filename string, content []byte) (*models.Document, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("engine: filename is required")
	}
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		return nil, fmt.Errorf("engine: only DOCX files are allowed: %s", name)
	}
	if _, err := docx.OpenBytes(content); err != nil {
		return nil, fmt.Errorf("engine: invalid document: %w", err)
	}

	doc := models.Document{
		ID:         uuid.NewString(),
		Filename:   name,
		Checksum:   checksum.Sum(content),
		Status:     models.DocStatusUploaded,
		UploadedAt: time.Now().UTC(),
	}
	doc.Path = filepath.ToSlash(filepath.Join(documentsDir, doc.ID+"_"+name))

	if err := e.store.Write(doc.Path, content); err != nil {
		return nil, err
	}
	if err := e.reg.InsertDocument(doc); err != nil {
		return nil, err
	}

	slog.Info("document registered",
		slog.String("document_id", doc.ID),
		slog.String("filename", name))
	return &doc, nil
}

// Render converts the document's current working copy to an HTML fragment
// and marks the document ready for review.
func (e *Engine) Render(_ context.Context, documentID string) (string, error) {
	doc, err := e.reg.GetDocument(documentID)
	if err != nil {
		return "", err
	}
	content, err := e.store.Read(doc.Path)
	if err != nil {
		return "", fmt.Errorf("engine: load document: %w", err)
	}
	pkg, err := docx.OpenBytes(content)
	if err != nil {
		return "", fmt.Errorf("engine: parse document: %w", err)
	}
	if err := e.reg.SetDocumentStatus(documentID, models.DocStatusReady); err != nil {
		return "", err
	}
	return pkg.HTML(), nil
}

// RemoveDocument deletes a document's working copy, its backup snapshot if
// one exists, and its registry rows (findings and changes cascade).
func (e *Engine) RemoveDocument(_ context.Context, documentID string) error {
	doc, err := e.reg.GetDocument(documentID)
	if err != nil {
		return err
	}
	if err := e.store.Delete(doc.Path); err != nil {
		return fmt.Errorf("engine: remove document: %w", err)
	}
	if ref := backupPath(doc.ID); e.store.Exists(ref) {
		if err := e.store.Delete(ref); err != nil {
			return fmt.Errorf("engine: remove backup: %w", err)
		}
	}
	if err := e.reg.DeleteDocument(documentID); err != nil {
		return err
	}
	slog.Info("document removed", slog.String("document_id", documentID))
	return nil
}

// StageChange records a textual remediation against a finding. The
// original content is taken from the finding so the content-match fallback
// always has audit-sourced data.
func (e *Engine) StageChange(_ context.Context, findingID, newContent, changeType string) (*models.ChangeRequest, error) {
	if strings.TrimSpace(newContent) == "" {
		return nil, fmt.Errorf("engine: new content is required")
	}
	finding, err := e.reg.GetFinding(findingID)
	if err != nil {
		return nil, err
	}
	if changeType == "" {
		changeType = "manual"
	}

	change := models.ChangeRequest{
		ID:              uuid.NewString(),
		FindingID:       finding.ID,
		DocumentID:      finding.DocumentID,
		OriginalContent: finding.OriginalContent,
		NewContent:      newContent,
		ChangeType:      changeType,
		Status:          models.ChangeStatusStaged,
		ElementPath:     finding.ElementPath,
		CreatedAt:       time.Now().UTC(),
	}
	if err := e.reg.StageChange(change); err != nil {
		return nil, err
	}
	return &change, nil
}

// backupPath returns the single backup slot for a document.
func backupPath(documentID string) string {
	return filepath.ToSlash(filepath.Join(backupsDir, documentID+".docx"))
}

// EnsureBackup creates the document's backup snapshot if absent and returns
// its reference. An existing snapshot is never overwritten, so repeated
// apply passes keep rolling back to the state before the first one.
func (e *Engine) EnsureBackup(doc *models.Document) (string, error) {
	ref := backupPath(doc.ID)
	if err := e.store.Copy(doc.Path, ref, false); err != nil {
		return "", fmt.Errorf("engine: ensure backup: %w", err)
	}
	return ref, nil
}

// ApplyBatch applies an ordered snapshot of change requests to a document.
// It creates the backup, attempts every change independently via
// resolver → matcher → mutator, persists the document exactly once after
// all attempts, and returns the full applied/failed partition. Only a
// whole-document failure (cannot load, parse, or save) aborts the batch.
// When two requests address the same node the last write in request order
// wins.
func (e *Engine) ApplyBatch(_ context.Context, doc *models.Document, changes []models.ChangeRequest) (*models.Outcome, error) {
	content, err := e.store.Read(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("engine: load document: %w", err)
	}
	if doc.Checksum != "" && checksum.Sum(content) != doc.Checksum {
		slog.Warn("document modified outside the engine",
			slog.String("document_id", doc.ID))
	}
	pkg, err := docx.OpenBytes(content)
	if err != nil {
		return nil, fmt.Errorf("engine: parse document: %w", err)
	}

	backupRef, err := e.EnsureBackup(doc)
	if err != nil {
		return nil, err
	}

	outcome := &models.Outcome{
		Applied:   []string{},
		Failed:    []models.ChangeFailure{},
		BackupRef: backupRef,
	}
	for _, change := range changes {
		if reason, ok := applyOne(pkg, change); !ok {
			outcome.Failed = append(outcome.Failed, models.ChangeFailure{ID: change.ID, Reason: reason})
			continue
		}
		outcome.Applied = append(outcome.Applied, change.ID)
	}

	// One aggregate save: the store has no per-node transactions, so saving
	// per change would risk partial-write inconsistency.
	updated, err := pkg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("engine: serialize document: %w", err)
	}
	if err := e.store.Write(doc.Path, updated); err != nil {
		return nil, fmt.Errorf("engine: save document: %w", err)
	}
	if err := e.reg.SetDocumentChecksum(doc.ID, checksum.Sum(updated)); err != nil {
		return nil, err
	}

	slog.Info("batch apply finished",
		slog.String("document_id", doc.ID),
		slog.Int("applied", len(outcome.Applied)),
		slog.Int("failed", len(outcome.Failed)))
	return outcome, nil
}

// applyOne locates and mutates the node for a single change, reporting a
// failure reason instead of an error: per-item failures never abort the
// batch.
func applyOne(pkg *docx.Document, change models.ChangeRequest) (string, bool) {
	node, err := element.ResolveRef(pkg, change.ElementPath)
	if err != nil {
		node, err = element.FindByContent(pkg, change.OriginalContent)
	}
	if err != nil {
		return "element not found", false
	}
	if err := element.Replace(node, change.NewContent); err != nil {
		if errors.Is(err, apperr.ErrUnsupportedNode) {
			return "unsupported node kind", false
		}
		return "mutation failed: " + err.Error(), false
	}
	return "", true
}

// ApplyStaged gathers a document's staged changes in creation order,
// applies them as one batch, and records the registry transitions:
// staged → applied (finding marked fixed) or staged → failed with reason.
func (e *Engine) ApplyStaged(ctx context.Context, documentID string) (*models.Outcome, error) {
	doc, err := e.reg.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	changes, err := e.reg.ListChanges(documentID, models.ChangeStatusStaged)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("engine: no staged changes for document %s: %w", documentID, apperr.ErrNotFound)
	}

	outcome, err := e.ApplyBatch(ctx, doc, changes)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.ChangeRequest, len(changes))
	for _, c := range changes {
		byID[c.ID] = c
	}
	for _, id := range outcome.Applied {
		if err := e.reg.TransitionChange(id, models.ChangeStatusStaged, models.ChangeStatusApplied, ""); err != nil {
			return nil, err
		}
		if err := e.reg.SetFindingFixed(byID[id].FindingID, true); err != nil {
			return nil, err
		}
	}
	for _, f := range outcome.Failed {
		if err := e.reg.TransitionChange(f.ID, models.ChangeStatusStaged, models.ChangeStatusFailed, f.Reason); err != nil {
			return nil, err
		}
	}
	if len(outcome.Applied) > 0 {
		if err := e.reg.MarkRemediated(documentID); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// Restore rolls the working copy back to its backup snapshot. Applied
// changes become reverted and fixed findings are reset, so audit state
// matches the restored content. The snapshot is retained, which makes
// restore repeatable. Restoring a never-backed-up document reports
// apperr.ErrNoBackup.
func (e *Engine) Restore(_ context.Context, documentID string) error {
	doc, err := e.reg.GetDocument(documentID)
	if err != nil {
		return err
	}
	ref := backupPath(doc.ID)
	if !e.store.Exists(ref) {
		return fmt.Errorf("engine: restore %s: %w", documentID, apperr.ErrNoBackup)
	}

	if err := e.store.Copy(ref, doc.Path, true); err != nil {
		return fmt.Errorf("engine: restore copy: %w", err)
	}
	restored, err := e.store.Read(doc.Path)
	if err != nil {
		return fmt.Errorf("engine: read restored document: %w", err)
	}
	if err := e.reg.SetDocumentChecksum(doc.ID, checksum.Sum(restored)); err != nil {
		return err
	}

	reverted, err := e.reg.RevertAppliedChanges(documentID)
	if err != nil {
		return err
	}
	if err := e.reg.ResetFindings(documentID); err != nil {
		return err
	}
	if err := e.reg.SetDocumentStatus(documentID, models.DocStatusReady); err != nil {
		return err
	}

	slog.Info("document restored",
		slog.String("document_id", documentID),
		slog.Int64("changes_reverted", reverted))
	return nil
}
