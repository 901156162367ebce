package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursebot/types"
)

// stubIndexer indexes everything except filenames listed in fail.
type stubIndexer struct {
	fail    map[string]bool
	indexed []string
}

func (s *stubIndexer) AddUserDocument(ctx context.Context, path, originalFilename, uploadTime string, fileSize int64) (int, error) {
	if s.fail[originalFilename] {
		return 0, &types.IndexingError{File: originalFilename, Err: errors.New("no indexable text extracted")}
	}
	s.indexed = append(s.indexed, originalFilename)
	return 4, nil
}

// markIndexedFailingStore wraps a real DocumentService but refuses the
// final metadata persist.
type markIndexedFailingStore struct {
	*DocumentService
}

func (s *markIndexedFailingStore) MarkIndexed(fileID string) error {
	return &types.MetadataError{Err: errors.New("disk full")}
}

func batchFiles(names ...string) []BatchFile {
	files := make([]BatchFile, len(names))
	for i, name := range names {
		files[i] = BatchFile{
			Name:         name,
			DeclaredType: "application/pdf",
			Content:      pdfBytes(name),
		}
	}
	return files
}

func TestBatchPartialFailure(t *testing.T) {
	store := newTestDocumentService(t)
	batch := NewBatchService(store, &stubIndexer{})

	// File two fails validation: wrong magic bytes.
	files := []BatchFile{
		{Name: "one.pdf", DeclaredType: "application/pdf", Content: pdfBytes("one")},
		{Name: "two.pdf", DeclaredType: "application/pdf", Content: []byte("not a pdf")},
		{Name: "three.pdf", DeclaredType: "application/pdf", Content: pdfBytes("three")},
	}

	batch.SetFiles(files)
	state, err := batch.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, state.SuccessCount)
	assert.Equal(t, 1, state.FailedCount)
	assert.Equal(t, 3, state.SuccessCount+state.FailedCount, "every file reaches a terminal state")

	assert.Equal(t, types.BatchFileSuccess, state.Files[0].Status)
	assert.Equal(t, types.BatchFileFailed, state.Files[1].Status)
	assert.Contains(t, state.Files[1].Error, "validation failed")
	assert.Equal(t, types.BatchFileSuccess, state.Files[2].Status)

	// Successful files carry their record, marked indexed.
	require.NotNil(t, state.Files[0].Record)
	assert.True(t, state.Files[0].Record.Indexed)
	assert.Equal(t, 4, state.Files[0].Chunks)
}

func TestBatchIndexingFailureRollsBackStoredFile(t *testing.T) {
	store := newTestDocumentService(t)
	indexer := &stubIndexer{fail: map[string]bool{"bad.pdf": true}}
	batch := NewBatchService(store, indexer)

	batch.SetFiles(batchFiles("good.pdf", "bad.pdf"))
	state, err := batch.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, state.SuccessCount)
	assert.Equal(t, 1, state.FailedCount)

	// The failed file's saved bytes and record were rolled back.
	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good.pdf", list[0].OriginalFilename)
}

func TestBatchMarkIndexedFailureSurfaced(t *testing.T) {
	store := newTestDocumentService(t)
	batch := NewBatchService(&markIndexedFailingStore{store}, &stubIndexer{})

	batch.SetFiles(batchFiles("stuck.pdf"))
	state, err := batch.Process(context.Background())
	require.NoError(t, err)

	// File is saved and indexed but the metadata flip failed: reported as
	// failed, not silently accepted.
	require.Equal(t, types.BatchFileFailed, state.Files[0].Status)
	assert.Contains(t, state.Files[0].Error, "metadata persistence failed")
	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 1, "the stored file is intentionally left in place")
}

func TestBatchFingerprintIdentity(t *testing.T) {
	a := Fingerprint(batchFiles("a.pdf", "b.pdf"))
	b := Fingerprint(batchFiles("b.pdf", "a.pdf"))
	c := Fingerprint(batchFiles("a.pdf", "c.pdf"))

	assert.Equal(t, a, b, "fingerprint is order-independent")
	assert.NotEqual(t, a, c)
}

func TestBatchRetryKeepsFingerprint(t *testing.T) {
	store := newTestDocumentService(t)
	indexer := &stubIndexer{fail: map[string]bool{"flaky.pdf": true}}
	batch := NewBatchService(store, indexer)

	files := batchFiles("ok.pdf", "flaky.pdf")
	first := batch.SetFiles(files)
	_, err := batch.Process(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, batch.State().FailedCount)

	// Re-selecting the same set keeps the batch; resetting failed files
	// and reprocessing retries only them under the same fingerprint.
	indexer.fail = nil
	same := batch.SetFiles(files)
	assert.Equal(t, first.BatchID, same.BatchID)
	assert.Equal(t, 1, same.FailedCount, "state survives re-selection of the same set")

	state := batch.ResetFailed()
	assert.Equal(t, 1, state.PendingCount)
	state, err = batch.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.BatchID, state.BatchID)
	assert.Equal(t, 2, state.SuccessCount)
	assert.Zero(t, state.FailedCount)
}

func TestBatchNewSelectionDiscardsState(t *testing.T) {
	store := newTestDocumentService(t)
	batch := NewBatchService(store, &stubIndexer{})

	batch.SetFiles(batchFiles("a.pdf"))
	_, err := batch.Process(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, batch.State().SuccessCount)

	state := batch.SetFiles(batchFiles("b.pdf"))
	assert.Zero(t, state.SuccessCount, "a new file set starts a fresh batch")
	assert.Equal(t, 1, state.PendingCount)

	// The prior batch's on-disk artifacts are untouched.
	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBatchProcessWithoutSelection(t *testing.T) {
	batch := NewBatchService(newTestDocumentService(t), &stubIndexer{})
	_, err := batch.Process(context.Background())
	assert.Error(t, err)
}

func TestBatchRetrySkipsSucceededFiles(t *testing.T) {
	store := newTestDocumentService(t)
	indexer := &stubIndexer{fail: map[string]bool{"flaky.pdf": true}}
	batch := NewBatchService(store, indexer)

	batch.SetFiles(batchFiles("ok.pdf", "flaky.pdf"))
	_, err := batch.Process(context.Background())
	require.NoError(t, err)

	indexer.fail = nil
	indexer.indexed = nil
	batch.ResetFailed()
	_, err = batch.Process(context.Background())
	require.NoError(t, err)

	// Only the previously failed file went through indexing again; a
	// retried ok.pdf would have been rejected as a duplicate anyway.
	assert.Equal(t, []string{"flaky.pdf"}, indexer.indexed)
}
