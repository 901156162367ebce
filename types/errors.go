package types

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a file_id has no metadata entry.
var ErrNotFound = errors.New("document not found")

// ValidationError means the uploaded file itself is bad (type, size, name,
// magic bytes). The user must fix the input; retrying is pointless.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// DuplicateError means byte-identical content is already stored. It carries
// the existing record so callers can point the user at it.
type DuplicateError struct {
	Existing *DocumentRecord
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate content: already uploaded as %q at %s",
		e.Existing.OriginalFilename, e.Existing.UploadTime)
}

// StorageError wraps a disk write/delete failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IndexingError wraps an embedding or parsing failure for a single file.
// The coordinator responds with best-effort cleanup of already-saved bytes.
type IndexingError struct {
	File string
	Err  error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing %s failed: %v", e.File, e.Err)
}

func (e *IndexingError) Unwrap() error { return e.Err }

// MetadataError wraps a metadata-file rewrite failure. Surfaced distinctly
// because it can leave index and disk ahead of recorded metadata.
type MetadataError struct {
	Err error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata persistence failed: %v", e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }
