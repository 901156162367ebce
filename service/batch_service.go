package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sort"

	"coursebot/types"
)

// BatchFile is one selected file awaiting upload.
type BatchFile struct {
	Name         string
	DeclaredType string
	Content      []byte
}

// documentStore is the slice of the Document Store the coordinator drives.
type documentStore interface {
	Upload(originalFilename, declaredType string, content []byte) (*types.DocumentRecord, error)
	Delete(fileID string) error
	MarkIndexed(fileID string) error
}

// userIndexer is the slice of the Dual Vector Index the coordinator drives.
type userIndexer interface {
	AddUserDocument(ctx context.Context, path, originalFilename, uploadTime string, fileSize int64) (int, error)
}

// BatchService sequences multiple uploads through save -> index -> persist,
// tracking per-file status. Files are processed strictly sequentially: the
// vector index and the metadata store assume single-writer access. One
// file's failure never aborts the rest of the batch.
type BatchService struct {
	store   documentStore
	indexer userIndexer

	files []BatchFile
	state *types.BatchUploadState
}

func NewBatchService(store documentStore, indexer userIndexer) *BatchService {
	return &BatchService{
		store:   store,
		indexer: indexer,
	}
}

// Fingerprint derives the stable batch identity from the selected file
// set: same names and sizes, same batch, regardless of selection order.
func Fingerprint(files []BatchFile) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s\x00%d", f.Name, len(f.Content)))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SetFiles selects the batch's file set. A selection with a new fingerprint
// starts a fresh batch and discards the prior in-memory state; re-selecting
// the same set keeps the existing state so a retry continues where it was.
// On-disk artifacts of an earlier batch are untouched either way.
func (s *BatchService) SetFiles(files []BatchFile) *types.BatchUploadState {
	id := Fingerprint(files)
	if s.state != nil && s.state.BatchID == id {
		return s.state
	}

	fileStates := make([]types.BatchFileState, len(files))
	for i, f := range files {
		fileStates[i] = types.BatchFileState{
			Name:   f.Name,
			Status: types.BatchFilePending,
		}
	}
	s.files = files
	s.state = &types.BatchUploadState{
		BatchID: id,
		Files:   fileStates,
	}
	s.refreshCounts()
	return s.state
}

// Process runs every pending file through save -> index -> persist. Each
// failure is recorded per file; indexing failures roll the just-saved file
// back best-effort before moving on.
func (s *BatchService) Process(ctx context.Context) (*types.BatchUploadState, error) {
	if s.state == nil {
		return nil, fmt.Errorf("no batch selected")
	}

	for i := range s.state.Files {
		fs := &s.state.Files[i]
		if fs.Status != types.BatchFilePending {
			continue
		}
		fs.Status = types.BatchFileProcessing
		file := s.files[i]

		record, err := s.store.Upload(file.Name, file.DeclaredType, file.Content)
		if err != nil {
			s.fail(fs, err)
			continue
		}

		chunks, err := s.indexer.AddUserDocument(ctx, record.StoragePath, record.OriginalFilename, record.UploadTime, record.Size)
		if err != nil {
			// Best-effort cleanup of the saved bytes; a failed cleanup is
			// reported but does not escalate.
			if cleanupErr := s.store.Delete(record.FileID); cleanupErr != nil {
				log.Printf("Warning: failed to clean up %s after indexing failure: %v", record.FileID, cleanupErr)
			}
			s.fail(fs, err)
			continue
		}

		if err := s.store.MarkIndexed(record.FileID); err != nil {
			// The file is on disk and indexed but the metadata is behind:
			// surfaced to the operator instead of silently accepted.
			fs.Record = record
			fs.Chunks = chunks
			s.fail(fs, err)
			continue
		}

		record.Indexed = true
		fs.Record = record
		fs.Chunks = chunks
		fs.Status = types.BatchFileSuccess
		fs.Error = ""
		s.refreshCounts()
	}

	s.refreshCounts()
	return s.state, nil
}

// ResetFailed flips failed files back to pending for a retry of the same
// batch; the fingerprint does not change.
func (s *BatchService) ResetFailed() *types.BatchUploadState {
	if s.state == nil {
		return nil
	}
	for i := range s.state.Files {
		if s.state.Files[i].Status == types.BatchFileFailed {
			s.state.Files[i].Status = types.BatchFilePending
			s.state.Files[i].Error = ""
		}
	}
	s.refreshCounts()
	return s.state
}

// State returns the current batch snapshot, nil when no batch is selected.
func (s *BatchService) State() *types.BatchUploadState {
	return s.state
}

func (s *BatchService) fail(fs *types.BatchFileState, err error) {
	fs.Status = types.BatchFileFailed
	fs.Error = err.Error()
	s.refreshCounts()
}

func (s *BatchService) refreshCounts() {
	success, failed, pending := 0, 0, 0
	for _, fs := range s.state.Files {
		switch fs.Status {
		case types.BatchFileSuccess:
			success++
		case types.BatchFileFailed:
			failed++
		case types.BatchFilePending:
			pending++
		}
	}
	s.state.SuccessCount = success
	s.state.FailedCount = failed
	s.state.PendingCount = pending
}
