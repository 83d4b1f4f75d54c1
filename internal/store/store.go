// Package store binds the vector index and the chunk metadata database
// into one composite resource with a single mutation API.
//
// The two structures are parallel arrays: metadata row i describes
// vector i. Keeping them behind one object with one lock makes that
// alignment structurally enforced; neither can be mutated on its own.
package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/docquery/docquery/internal/chunker"
	"github.com/docquery/docquery/internal/index"
)

// Errors returned by composite store operations.
var (
	// ErrCorrupt reports a record-count mismatch between the vector index
	// and the metadata database. A corrupt pair is never served; the
	// store resets to empty.
	ErrCorrupt = errors.New("vector index and metadata store are misaligned")

	// ErrPersist reports a failed save after a successful in-memory
	// append. The append is kept; callers should warn and carry on.
	ErrPersist = errors.New("persisting store state")
)

const (
	// IndexFileName is the vector index file inside the data directory.
	IndexFileName = "index.gob"

	// MetadataFileName is the chunk metadata database inside the data
	// directory.
	MetadataFileName = "chunks.db"
)

// Hit is a search result carrying the matched chunk, its retrieval
// similarity, and its index position.
type Hit struct {
	Chunk    chunker.Chunk
	Score    float64
	Position int
}

// Stats reports the record counts of both halves of the store. The two
// are equal in a healthy store; a mismatch is a corruption signal.
type Stats struct {
	VectorCount   int `json:"vector_count"`
	MetadataCount int `json:"metadata_count"`
}

// Store owns the {vector index, metadata database} pair. A single
// read-write lock guards the pair as one resource: queries share the
// read lock, ingestion and clear hold the write lock through both the
// in-memory mutation and the persistence write.
type Store struct {
	mu        sync.RWMutex
	idx       *index.Flat
	meta      *MetadataDB
	indexPath string
}

// Open opens the store in dataDir, creating it if needed. A missing,
// corrupt, or misaligned persisted pair is logged and replaced by an
// empty store; it is never served.
func Open(dataDir, modelName string, dim int) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	meta, err := OpenMetadata(filepath.Join(dataDir, MetadataFileName))
	if err != nil {
		return nil, err
	}

	s := &Store{
		meta:      meta,
		indexPath: filepath.Join(dataDir, IndexFileName),
	}

	// Load wraps every failure in ErrIndexUnavailable; any error means
	// fall back to an empty index.
	idx, err := index.Load(s.indexPath, modelName, dim)
	if err != nil {
		if _, statErr := os.Stat(s.indexPath); statErr == nil {
			log.Printf("warning: %v; starting with an empty index", err)
		}
		idx = index.NewFlat(modelName, dim)
	}
	s.idx = idx

	metaCount, err := meta.Count()
	if err != nil {
		meta.Close()
		return nil, err
	}
	if metaCount != idx.Len() {
		log.Printf("warning: %v (%d vectors, %d chunks); resetting to empty", ErrCorrupt, idx.Len(), metaCount)
		if err := s.reset(); err != nil {
			meta.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases the metadata database connection.
func (s *Store) Close() error {
	return s.meta.Close()
}

// AppendChunks appends chunks and their embeddings as one unit and
// persists the pair. If the metadata write fails, the in-memory vector
// append is rolled back and nothing is persisted. A persistence failure
// after both appends succeeded is reported as ErrPersist without
// rolling back.
func (s *Store) AppendChunks(chunks []chunker.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to append")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	first, err := s.idx.Add(vectors)
	if err != nil {
		return err
	}
	if err := s.meta.Append(first, chunks); err != nil {
		s.idx.Truncate(first)
		return err
	}

	if err := s.idx.Save(s.indexPath); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Search finds the k nearest chunks to query and snapshots their
// metadata under the read lock, so results stay valid even if a clear
// runs immediately afterwards.
func (s *Store) Search(query []float32, k int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.idx.Search(query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(raw))
	for _, h := range raw {
		ch, err := s.meta.Get(h.Position)
		if err != nil {
			// A position the index returned but the metadata store cannot
			// resolve means the pair is misaligned.
			return nil, fmt.Errorf("%w: position %d: %v", ErrCorrupt, h.Position, err)
		}
		hits = append(hits, Hit{Chunk: ch, Score: h.Score, Position: h.Position})
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Len()
}

// Stats returns the record counts of both halves of the pair.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metaCount, err := s.meta.Count()
	if err != nil {
		return Stats{}, err
	}
	return Stats{VectorCount: s.idx.Len(), MetadataCount: metaCount}, nil
}

// Sources returns per-source chunk counts in first-ingested order.
func (s *Store) Sources() ([]SourceCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta.GroupCounts()
}

// Chunks returns every stored chunk in index order.
func (s *Store) Chunks() ([]chunker.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta.All()
}

// ChunksBySource returns the stored chunks for one source document.
func (s *Store) ChunksBySource(source string) ([]chunker.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta.BySource(source)
}

// Clear empties both halves of the pair together and persists the empty
// state. Idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

// reset empties both structures and persists the empty pair. Callers
// hold the write lock (or exclusive access during Open).
func (s *Store) reset() error {
	s.idx.Clear()
	if err := s.meta.Clear(); err != nil {
		return err
	}
	if err := s.idx.Save(s.indexPath); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
