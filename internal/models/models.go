// Package models defines the domain types for docmend.
package models

import "time"

// Document statuses.
const (
	DocStatusUploaded   = "uploaded"
	DocStatusScanning   = "scanning"
	DocStatusReady      = "ready"
	DocStatusRemediated = "remediated"
)

// Change statuses.
const (
	ChangeStatusStaged    = "staged"
	ChangeStatusApplied   = "applied"
	ChangeStatusFailed    = "failed"
	ChangeStatusCancelled = "cancelled"
	ChangeStatusReverted  = "reverted"
)

// Document is a registered DOCX file in the workspace.
type Document struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	Path         string     `json:"path"` // relative to the workspace root
	Checksum     string     `json:"checksum"`
	Status       string     `json:"status"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	RemediatedAt *time.Time `json:"remediated_at,omitempty"`
}

// Finding is one accessibility issue reported against a document.
// ElementPath is a positional address into the document tree in
// WordprocessingML notation, e.g. "//w:p[2]/w:r[1]". It may be stale or
// absent; OriginalContent is the content-match fallback.
type Finding struct {
	ID              string `json:"id"`
	DocumentID      string `json:"document_id"`
	Category        string `json:"category"`
	Clause          string `json:"clause"`
	Description     string `json:"description"`
	WCAGLevel       string `json:"wcag_level"`
	OriginalContent string `json:"original_content"`
	ElementPath     string `json:"element_path,omitempty"`
	Fixed           bool   `json:"fixed"`
}

// ChangeRequest is a staged textual remediation for one finding.
type ChangeRequest struct {
	ID              string     `json:"id"`
	FindingID       string     `json:"finding_id"`
	DocumentID      string     `json:"document_id"`
	OriginalContent string     `json:"original_content"`
	NewContent      string     `json:"new_content"`
	ChangeType      string     `json:"change_type"`
	Status          string     `json:"status"`
	ElementPath     string     `json:"element_path,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	AppliedAt       *time.Time `json:"applied_at,omitempty"`
}

// ChangeFailure pairs a change id with the reason it was not applied.
type ChangeFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Outcome is the full partition of a batch apply: every requested change
// appears in exactly one of Applied or Failed.
type Outcome struct {
	Applied   []string        `json:"applied"`
	Failed    []ChangeFailure `json:"failed"`
	BackupRef string          `json:"backup_ref"`
}

// Suggestion is a canned remediation proposal for a finding.
type Suggestion struct {
	FindingID     string  `json:"finding_id"`
	SuggestedText string  `json:"suggested_text"`
	Confidence    float64 `json:"confidence"`
	FixType       string  `json:"fix_type"`
	OldValue      string  `json:"old_value"`
	NewValue      string  `json:"new_value"`
	ElementPath   string  `json:"element_path,omitempty"`
}
