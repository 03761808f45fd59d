package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oskarb/docmend/internal/models"
	"github.com/oskarb/docmend/internal/registry"
)

// Service produces findings and suggestions against registered documents.
type Service struct {
	store registry.Store
}

// NewService creates an audit service over the given registry.
func NewService(store registry.Store) *Service {
	return &Service{store: store}
}

// Scan records the catalog findings against a document, replacing any
// previous scan. The document moves through scanning back to ready.
func (s *Service) Scan(_ context.Context, documentID string) ([]models.Finding, error) {
	if _, err := s.store.GetDocument(documentID); err != nil {
		return nil, err
	}
	if err := s.store.SetDocumentStatus(documentID, models.DocStatusScanning); err != nil {
		return nil, err
	}

	findings := make([]models.Finding, len(catalog))
	for i, entry := range catalog {
		findings[i] = models.Finding{
			ID:              uuid.NewString(),
			DocumentID:      documentID,
			Category:        entry.category,
			Clause:          entry.clause,
			Description:     entry.description,
			WCAGLevel:       entry.wcagLevel,
			OriginalContent: entry.originalContent,
			ElementPath:     entry.elementPath,
		}
	}
	if err := s.store.ReplaceFindings(documentID, findings); err != nil {
		return nil, err
	}
	if err := s.store.SetDocumentStatus(documentID, models.DocStatusReady); err != nil {
		return nil, err
	}

	slog.Info("scan complete",
		slog.String("document_id", documentID),
		slog.Int("findings", len(findings)))
	return findings, nil
}

// ScanAll scans several documents concurrently. Scans never touch document
// bytes, so fan-out is safe; mutation stays serialized per document.
func (s *Service) ScanAll(ctx context.Context, documentIDs []string) (map[string][]models.Finding, error) {
	results := make([][]models.Finding, len(documentIDs))

	g, gCtx := errgroup.WithContext(ctx)
	for i, id := range documentIDs {
		i, id := i, id
		g.Go(func() error {
			findings, err := s.Scan(gCtx, id)
			if err != nil {
				return fmt.Errorf("audit: scan %s: %w", id, err)
			}
			results[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]models.Finding, len(documentIDs))
	for i, id := range documentIDs {
		out[id] = results[i]
	}
	return out, nil
}

// Suggest returns the canned fix for a finding, keyed by its category, or
// the manual-review fallback when the category is unknown.
func (s *Service) Suggest(_ context.Context, findingID string) (*models.Suggestion, error) {
	finding, err := s.store.GetFinding(findingID)
	if err != nil {
		return nil, err
	}
	suggestion := SuggestionFor(finding.Category)
	suggestion.FindingID = finding.ID
	return &suggestion, nil
}

// SuggestionFor returns the catalog suggestion for a category.
func SuggestionFor(category string) models.Suggestion {
	for _, entry := range catalog {
		if entry.category == category {
			return entry.suggestion
		}
	}
	return fallbackSuggestion
}
