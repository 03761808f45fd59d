// Package storage defines the workspace file-system abstraction.
package storage

// Provider is the interface for workspace file operations. All paths are
// relative to the workspace root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Copy duplicates src to dst without loading intermediate state; it is
	// used for backup snapshots and must not overwrite an existing dst
	// unless overwrite is true.
	Copy(src, dst string, overwrite bool) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
}
