package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"coursebot/types"
)

// PDFService parses PDF files into page-level text and splits it into
// overlapping windows with provenance metadata attached.
type PDFService struct {
	chunkSize    int // Maximum size of each text window, in runes
	chunkOverlap int // Runes shared between consecutive windows
}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	ChunkSize:    1000,
	ChunkOverlap: 200,
}

// NewPDFService creates a new PDF service with configurable window sizes.
// Overlap must stay below the window size or splitting would never advance;
// out-of-range values fall back to a fifth of the window.
func NewPDFService(config types.DocumentServiceConfig) *PDFService {
	size := config.ChunkSize
	if size <= 0 {
		size = DefaultDocumentServiceConfig.ChunkSize
	}
	overlap := config.ChunkOverlap
	if overlap < 0 || overlap >= size {
		log.Printf("Warning: chunk overlap %d out of range for size %d, using %d", overlap, size, size/5)
		overlap = size / 5
	}
	return &PDFService{
		chunkSize:    size,
		chunkOverlap: overlap,
	}
}

// pageText is one parsed page before splitting.
type pageText struct {
	source string
	page   int
	text   string
}

// LoadAndSplit parses every path page by page and splits the text into
// overlapping windows. A page or file that fails to parse is logged and
// skipped, never fatal to the batch. Every chunk inherits sourceType and,
// when provided, the user-upload metadata. Returns the chunks and the
// number of page records parsed; an empty chunk slice with no error means
// "I/O fine, nothing indexable".
func (s *PDFService) LoadAndSplit(
	paths []string,
	sourceType types.SourceType,
	extra *types.UserDocumentMetadata,
) ([]types.Chunk, int) {
	var pages []pageText
	for _, path := range paths {
		parsed, err := parsePDFPages(path)
		if err != nil {
			log.Printf("Warning: failed to load %s: %v", path, err)
			continue
		}
		pages = append(pages, parsed...)
	}
	if len(pages) == 0 {
		return nil, 0
	}
	return s.splitPages(pages, sourceType, extra), len(pages)
}

func (s *PDFService) splitPages(pages []pageText, sourceType types.SourceType, extra *types.UserDocumentMetadata) []types.Chunk {
	var chunks []types.Chunk
	for _, page := range pages {
		for _, window := range splitText(page.text, s.chunkSize, s.chunkOverlap) {
			chunk := types.Chunk{
				Content:    window,
				Source:     page.source,
				Page:       page.page,
				SourceType: sourceType,
			}
			if extra != nil {
				chunk.OriginalFilename = extra.OriginalFilename
				chunk.UploadTime = extra.UploadTime
				chunk.FileSize = extra.FileSize
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// parsePDFPages extracts the text of each page of one PDF file.
func parsePDFPages(path string) ([]pageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var pages []pageText
	total := reader.NumPage()
	for pageNum := 1; pageNum <= total; pageNum++ {
		text, err := extractPageText(reader, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from %s page %d: %v", path, pageNum, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, pageText{source: path, page: pageNum, text: text})
	}
	return pages, nil
}

func extractPageText(reader *pdf.Reader, pageNum int) (text string, err error) {
	// The parser panics on some malformed content streams; a bad page must
	// not take down the whole file.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", pageNum)
	}
	return page.GetPlainText(nil)
}

// splitText cuts text into rune windows of at most size, each window after
// the first starting overlap runes before the previous window's end.
func splitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	stride := size - overlap
	var windows []string
	for start := 0; start < len(runes); start += stride {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			windows = append(windows, window)
		}
		if end == len(runes) {
			break
		}
	}
	return windows
}
