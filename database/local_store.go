package database

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"coursebot/types"
)

const localStoreFile = "collection.gob"

type localEntry struct {
	Chunk  types.Chunk
	Vector []float32
}

// LocalStore is an on-disk vector collection: brute-force cosine similarity
// over gob-persisted entries in a single directory. Every mutation rewrites
// the data file in full via temp-file + rename, so the persisted collection
// is either absent or complete; an interrupted write never leaves a partial
// collection behind.
type LocalStore struct {
	mu      sync.RWMutex
	dir     string
	entries []localEntry
}

// NewLocalStore opens the collection rooted at dir, loading persisted
// entries when the data file exists. The directory is created if missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}
	s := &LocalStore{dir: dir}
	path := filepath.Join(dir, localStoreFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to open collection data: %w", err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&s.entries); err != nil {
		return nil, fmt.Errorf("failed to decode collection data: %w", err)
	}
	return s, nil
}

func (s *LocalStore) Insert(ctx context.Context, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]localEntry, 0, len(s.entries)+len(chunks))
	next = append(next, s.entries...)
	for i := range chunks {
		next = append(next, localEntry{Chunk: chunks[i], Vector: vectors[i]})
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

func (s *LocalStore) Search(ctx context.Context, vector []float32, limit int) ([]types.Chunk, []float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || len(s.entries) == 0 {
		return nil, nil, nil
	}

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, len(s.entries))
	for i, e := range s.entries {
		scores[i] = scored{idx: i, score: cosineSimilarity(e.Vector, vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if limit > len(scores) {
		limit = len(scores)
	}
	chunks := make([]types.Chunk, 0, limit)
	sims := make([]float32, 0, limit)
	for _, sc := range scores[:limit] {
		chunks = append(chunks, s.entries[sc.idx].Chunk)
		sims = append(sims, sc.score)
	}
	return chunks, sims, nil
}

func (s *LocalStore) DeleteByFilename(ctx context.Context, originalFilename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]localEntry, 0, len(s.entries))
	removed := 0
	for _, e := range s.entries {
		if e.Chunk.OriginalFilename == originalFilename {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.persist(kept); err != nil {
		return 0, err
	}
	s.entries = kept
	return removed, nil
}

func (s *LocalStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *LocalStore) Exists(ctx context.Context) (bool, error) {
	if _, err := os.Stat(filepath.Join(s.dir, localStoreFile)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// persist writes entries to a temp file and renames it over the data file.
// Callers must hold the write lock.
func (s *LocalStore) persist(entries []localEntry) error {
	tmp, err := os.CreateTemp(s.dir, localStoreFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp collection file: %w", err)
	}
	tmpName := tmp.Name()
	if err := gob.NewEncoder(tmp).Encode(entries); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode collection data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp collection file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, localStoreFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection data: %w", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
