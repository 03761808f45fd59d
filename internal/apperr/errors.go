// Package apperr defines sentinel errors shared across the application.
package apperr

import "errors"

var (
	// ErrNotFound signals that a document, finding, change, or addressed
	// element could not be located. For element resolution during a batch
	// apply this is an expected, recoverable per-item condition.
	ErrNotFound = errors.New("not found")

	// ErrNoBackup signals a restore attempt against a document that has
	// never been backed up.
	ErrNoBackup = errors.New("no backup found")

	// ErrUnsupportedNode signals that the mutator does not know how to
	// rewrite the located node kind.
	ErrUnsupportedNode = errors.New("unsupported node kind")

	// ErrConflict signals an invalid state transition, e.g. cancelling a
	// change that is no longer staged.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyExists signals a uniqueness violation on insert.
	ErrAlreadyExists = errors.New("already exists")
)
