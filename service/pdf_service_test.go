package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursebot/types"
)

func TestSplitTextWindowStride(t *testing.T) {
	text := strings.Repeat("a", 1000)
	windows := splitText(text, 300, 50)

	// Each window after the first starts exactly size-overlap = 250 runes
	// after the previous window's start: 0, 250, 500, 750.
	require.Len(t, windows, 4)
	assert.Len(t, windows[0], 300)
	assert.Len(t, windows[1], 300)
	assert.Len(t, windows[2], 300)
	assert.Len(t, windows[3], 250)
}

func TestSplitTextOverlapShared(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	text := b.String()
	windows := splitText(text, 300, 50)

	require.GreaterOrEqual(t, len(windows), 2)
	// The last 50 runes of window 0 are the first 50 of window 1.
	assert.Equal(t, windows[0][250:300], windows[1][:50])
}

func TestSplitTextShortInput(t *testing.T) {
	windows := splitText("short", 300, 50)
	require.Len(t, windows, 1)
	assert.Equal(t, "short", windows[0])

	assert.Nil(t, splitText("", 300, 50))
}

func TestNewPDFServiceClampsOverlap(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{ChunkSize: 100, ChunkOverlap: 100})
	assert.Equal(t, 100, s.chunkSize)
	assert.Less(t, s.chunkOverlap, s.chunkSize)

	s = NewPDFService(types.DocumentServiceConfig{})
	assert.Equal(t, DefaultDocumentServiceConfig.ChunkSize, s.chunkSize)
}

func TestLoadAndSplitUnreadablePathsSkipped(t *testing.T) {
	s := NewPDFService(DefaultDocumentServiceConfig)

	missing := filepath.Join(t.TempDir(), "does-not-exist.pdf")
	chunks, docCount := s.LoadAndSplit([]string{missing}, types.SourceTypeBase, nil)

	// Parse failures are skipped, not fatal: empty result, not an error.
	assert.Empty(t, chunks)
	assert.Zero(t, docCount)
}

func TestLoadAndSplitAttachesUserMetadata(t *testing.T) {
	s := NewPDFService(DefaultDocumentServiceConfig)
	meta := &types.UserDocumentMetadata{
		OriginalFilename: "notes.pdf",
		UploadTime:       "2026-08-31 10:00:00",
		FileSize:         1234,
	}

	chunks := s.splitPages([]pageText{
		{source: "/uploads/x.pdf", page: 1, text: strings.Repeat("b", 1200)},
	}, types.SourceTypeUser, meta)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, types.SourceTypeUser, c.SourceType)
		assert.Equal(t, "notes.pdf", c.OriginalFilename)
		assert.Equal(t, "2026-08-31 10:00:00", c.UploadTime)
		assert.Equal(t, int64(1234), c.FileSize)
		assert.Equal(t, 1, c.Page)
	}
}
