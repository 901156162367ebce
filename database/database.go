package database

import (
	"context"

	"coursebot/types"
)

// VectorStore is one persistent vector collection: a mapping from chunk
// identity to (embedding vector, chunk metadata, text). The base corpus and
// the user corpus each get their own instance.
type VectorStore interface {
	// Insert adds chunks with their embedding vectors. chunks and vectors
	// must have equal length.
	Insert(ctx context.Context, chunks []types.Chunk, vectors [][]float32) error

	// Search returns up to limit chunks nearest to the query vector,
	// most similar first, along with their similarity scores.
	Search(ctx context.Context, vector []float32, limit int) ([]types.Chunk, []float32, error)

	// DeleteByFilename removes every chunk whose original_filename metadata
	// equals originalFilename and returns how many were removed. Zero
	// matches is success, not an error.
	DeleteByFilename(ctx context.Context, originalFilename string) (int, error)

	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Exists reports whether a persisted collection is already present,
	// before any Insert in this process.
	Exists(ctx context.Context) (bool, error)
}
