package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"coursebot/database"
	"coursebot/types"
	"coursebot/utils"
)

const defaultTopK = 3

// The answer generator is instructed to reply with a literal sentinel when
// the context is insufficient; the sentinel is surfaced to the user verbatim.
const ragPromptTemplate = `You are a helpful assistant.
Answer the question using ONLY the Context below.
If the answer is not in the Context, say "I don't know based on the provided context."

Context:
%s

Question:
%s
`

// RAGService owns the dual vector index: a read-mostly base collection
// built once from the course material directory, and a mutable user
// collection fed by uploads. Retrieval merges both collections.
type RAGService struct {
	base        database.VectorStore
	user        database.VectorStore
	embedder    Embedder
	pdfService  *PDFService
	baseDocsDir string
	ai          AIService

	baseDocCount int
}

func NewRAGService(
	base database.VectorStore,
	user database.VectorStore,
	embedder Embedder,
	pdfService *PDFService,
	baseDocsDir string,
	ai AIService,
) *RAGService {
	return &RAGService{
		base:        base,
		user:        user,
		embedder:    embedder,
		pdfService:  pdfService,
		baseDocsDir: baseDocsDir,
		ai:          ai,
	}
}

// InitializeBase opens the persisted base collection when one exists,
// otherwise builds it from every PDF under the base docs directory. A
// missing directory or an empty corpus reports 0 with a diagnostic rather
// than failing. Rebuilding requires removing the persisted collection
// out-of-band first.
func (s *RAGService) InitializeBase(ctx context.Context) (int, error) {
	exists, err := s.base.Exists(ctx)
	if err != nil {
		log.Printf("Warning: failed to check persisted base collection, rebuilding: %v", err)
		exists = false
	}
	if exists {
		count, err := s.base.Count(ctx)
		if err != nil {
			// Best effort: reuse the collection even when the count
			// cannot be introspected.
			log.Printf("Warning: failed to count base collection: %v", err)
			count = 0
		}
		s.baseDocCount = count
		log.Printf("Reusing persisted base collection with %d chunks", count)
		return count, nil
	}

	paths, err := utils.ListPDFFiles(s.baseDocsDir)
	if err != nil {
		log.Printf("Base docs directory not readable: %s: %v", s.baseDocsDir, err)
		return 0, nil
	}
	if len(paths) == 0 {
		log.Printf("No PDF files found under %s", s.baseDocsDir)
		return 0, nil
	}

	chunks, docCount := s.pdfService.LoadAndSplit(paths, types.SourceTypeBase, nil)
	if len(chunks) == 0 {
		log.Printf("No indexable text in any base document under %s", s.baseDocsDir)
		return 0, nil
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed base corpus: %w", err)
	}
	if err := s.base.Insert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to build base collection: %w", err)
	}

	s.baseDocCount = docCount
	log.Printf("Built base collection: %d documents, %d chunks", docCount, len(chunks))
	return docCount, nil
}

// InitializeUser confirms the user collection is reachable. The collection
// is opened (created when absent) by its store constructor, so an empty
// collection always initializes successfully.
func (s *RAGService) InitializeUser(ctx context.Context) error {
	count, err := s.user.Count(ctx)
	if err != nil {
		log.Printf("Warning: failed to count user collection: %v", err)
		return nil
	}
	log.Printf("User collection ready with %d chunks", count)
	return nil
}

// AddUserDocument loads and splits one uploaded file, attaches the
// identifying metadata to every chunk and inserts them into the user
// collection. A file yielding zero chunks is an indexing failure: the
// caller is expected to roll back the stored file.
func (s *RAGService) AddUserDocument(ctx context.Context, path, originalFilename, uploadTime string, fileSize int64) (int, error) {
	meta := &types.UserDocumentMetadata{
		OriginalFilename: originalFilename,
		UploadTime:       uploadTime,
		FileSize:         fileSize,
	}
	chunks, _ := s.pdfService.LoadAndSplit([]string{path}, types.SourceTypeUser, meta)
	if len(chunks) == 0 {
		return 0, &types.IndexingError{File: originalFilename, Err: errors.New("no indexable text extracted")}
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return 0, &types.IndexingError{File: originalFilename, Err: err}
	}
	if err := s.user.Insert(ctx, chunks, vectors); err != nil {
		return 0, &types.IndexingError{File: originalFilename, Err: err}
	}
	return len(chunks), nil
}

// RemoveUserDocument deletes every user-collection chunk whose original
// filename matches. Zero matches is success with count 0.
func (s *RAGService) RemoveUserDocument(ctx context.Context, originalFilename string) (int, error) {
	return s.user.DeleteByFilename(ctx, originalFilename)
}

// Retrieve queries both collections for their top-k chunks and merges the
// results, base first, truncated to k. A failing collection degrades to
// empty for that collection and never aborts the other query.
func (s *RAGService) Retrieve(ctx context.Context, query string, k int) ([]types.Chunk, error) {
	if k <= 0 {
		k = defaultTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVector := vectors[0]

	var merged []types.Chunk

	baseChunks, _, err := s.base.Search(ctx, queryVector, k)
	if err != nil {
		log.Printf("Warning: base collection query failed: %v", err)
	} else {
		merged = append(merged, baseChunks...)
	}

	// An empty user collection is skipped silently; that is the normal
	// state before any upload.
	userCount, err := s.user.Count(ctx)
	if err != nil {
		log.Printf("Warning: failed to count user collection: %v", err)
		userCount = 0
	}
	if userCount > 0 {
		userChunks, _, err := s.user.Search(ctx, queryVector, k)
		if err != nil {
			log.Printf("Warning: user collection query failed: %v", err)
		} else {
			merged = append(merged, userChunks...)
		}
	}

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// FormatWithProvenance renders chunks as numbered blocks labelled with
// their corpus of origin, in input order, joined by blank lines.
func (s *RAGService) FormatWithProvenance(chunks []types.Chunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		var header string
		if chunk.SourceType == types.SourceTypeUser {
			header = fmt.Sprintf("[%d] user document: %s (uploaded %s), page %d",
				i+1, chunk.OriginalFilename, chunk.UploadTime, chunk.Page)
		} else {
			header = fmt.Sprintf("[%d] course material: %s, page %d",
				i+1, filepath.Base(chunk.Source), chunk.Page)
		}
		blocks = append(blocks, header+"\n"+strings.TrimSpace(chunk.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// Ask retrieves context for the question and hands the formatted prompt to
// the answer generator. The generator's reply is returned verbatim along
// with the chunks it was shown.
func (s *RAGService) Ask(ctx context.Context, question string, k int) (string, []types.Chunk, error) {
	chunks, err := s.Retrieve(ctx, question, k)
	if err != nil {
		return "", nil, err
	}

	prompt := fmt.Sprintf(ragPromptTemplate, s.FormatWithProvenance(chunks), question)
	answer, err := s.ai.Answer(ctx, prompt)
	if err != nil {
		return "", nil, err
	}
	return answer, chunks, nil
}

// BaseDocumentCount reports what InitializeBase loaded or built.
func (s *RAGService) BaseDocumentCount() int {
	return s.baseDocCount
}

func (s *RAGService) embedChunks(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	return s.embedder.Embed(ctx, texts)
}
