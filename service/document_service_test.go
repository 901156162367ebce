package service

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursebot/types"
)

func pdfBytes(payload string) []byte {
	return append([]byte("%PDF-1.4\n"), []byte(payload)...)
}

func newTestDocumentService(t *testing.T) *DocumentService {
	t.Helper()
	s, err := NewDocumentService(t.TempDir(), 50)
	require.NoError(t, err)
	return s
}

func TestValidate(t *testing.T) {
	s := newTestDocumentService(t)

	assert.NoError(t, s.Validate("a.pdf", "application/pdf", pdfBytes("ok")))

	var vErr *types.ValidationError

	err := s.Validate("a.pdf", "text/plain", pdfBytes("ok"))
	require.ErrorAs(t, err, &vErr)

	err = s.Validate("", "application/pdf", pdfBytes("ok"))
	require.ErrorAs(t, err, &vErr)

	// Wrong magic bytes fail regardless of declared type and size.
	err = s.Validate("a.pdf", "application/pdf", []byte("not a pdf at all"))
	require.ErrorAs(t, err, &vErr)
}

func TestValidateSizeCeiling(t *testing.T) {
	s, err := NewDocumentService(t.TempDir(), 1)
	require.NoError(t, err)

	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2<<20)...)
	var vErr *types.ValidationError
	require.ErrorAs(t, s.Validate("big.pdf", "application/pdf", big), &vErr)
}

func TestUploadAndDuplicate(t *testing.T) {
	s := newTestDocumentService(t)
	content := pdfBytes("same bytes")

	record, err := s.Upload("first.pdf", "application/pdf", content)
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", record.OriginalFilename)
	assert.False(t, record.Indexed)
	assert.FileExists(t, record.StoragePath)

	// Byte-identical content under a different filename is a duplicate
	// referencing the first record.
	_, err = s.Upload("second.pdf", "application/pdf", content)
	var dup *types.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, record.FileID, dup.Existing.FileID)

	// Different content under the same original name is not a duplicate.
	other, err := s.Upload("first.pdf", "application/pdf", pdfBytes("other bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, record.FileID, other.FileID)
}

func TestUploadValidationDoesNotTouchStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDocumentService(dir, 50)
	require.NoError(t, err)

	_, err = s.Upload("bad.pdf", "application/pdf", []byte("no magic"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a rejected upload must not write anything")
}

func TestDeleteUnknownLeavesMetadataUntouched(t *testing.T) {
	s := newTestDocumentService(t)
	_, err := s.Upload("keep.pdf", "application/pdf", pdfBytes("keep"))
	require.NoError(t, err)

	before, err := os.ReadFile(s.metadataPath)
	require.NoError(t, err)

	err = s.Delete("no-such-id")
	assert.ErrorIs(t, err, types.ErrNotFound)

	after, err := os.ReadFile(s.metadataPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed delete must leave the metadata file byte-for-byte unchanged")
}

func TestDeleteRemovesFileAndRecord(t *testing.T) {
	s := newTestDocumentService(t)
	record, err := s.Upload("gone.pdf", "application/pdf", pdfBytes("gone"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(record.FileID))
	assert.NoFileExists(t, record.StoragePath)

	got, err := s.Get(record.FileID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteMissingBackingFileIsFailure(t *testing.T) {
	s := newTestDocumentService(t)
	record, err := s.Upload("vanished.pdf", "application/pdf", pdfBytes("vanished"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(record.StoragePath))

	err = s.Delete(record.FileID)
	var sErr *types.StorageError
	require.ErrorAs(t, err, &sErr)

	// The record stays: metadata removal only happens after physical
	// deletion succeeds.
	got, err := s.Get(record.FileID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestListSortedMostRecentFirst(t *testing.T) {
	s := newTestDocumentService(t)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := s.Upload(name, "application/pdf", pdfBytes(name))
		require.NoError(t, err)
	}

	list, err = s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.GreaterOrEqual(t, list[i-1].UploadTime, list[i].UploadTime)
	}
}

func TestMarkIndexed(t *testing.T) {
	s := newTestDocumentService(t)
	record, err := s.Upload("idx.pdf", "application/pdf", pdfBytes("idx"))
	require.NoError(t, err)

	require.NoError(t, s.MarkIndexed(record.FileID))
	got, err := s.Get(record.FileID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Indexed)

	// Idempotent, and a no-op for unknown ids.
	require.NoError(t, s.MarkIndexed(record.FileID))
	require.NoError(t, s.MarkIndexed("unknown"))
}

func TestMetadataSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDocumentService(dir, 50)
	require.NoError(t, err)
	record, err := s.Upload("persist.pdf", "application/pdf", pdfBytes("persist"))
	require.NoError(t, err)

	reopened, err := NewDocumentService(dir, 50)
	require.NoError(t, err)
	got, err := reopened.Get(record.FileID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.Hash, got.Hash)
	assert.Equal(t, filepath.Join(dir, record.FileID), got.StoragePath)
}

func TestCheckDuplicateEmptyStore(t *testing.T) {
	s := newTestDocumentService(t)
	got, err := s.CheckDuplicate(pdfBytes("anything"))
	require.NoError(t, err)
	assert.Nil(t, got)
	require.False(t, errors.Is(err, types.ErrNotFound))
}
