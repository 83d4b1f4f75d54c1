// Package index implements a flat cosine-similarity vector index with
// gob persistence.
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Errors returned by vector index operations.
var (
	// ErrEmptyIndex is returned by Search when the index holds no vectors.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrIndexUnavailable is returned by Load when the persisted index is
	// missing, corrupt, or incompatible. Callers should fall back to an
	// empty index rather than fail.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)

// CurrentFormatVersion is the on-disk format version for compatibility
// checking. Increment when making breaking changes to the format.
const CurrentFormatVersion = 1

// Hit is a single nearest-neighbor search result. Position is the row
// number assigned at Add time.
type Hit struct {
	Position int
	Score    float64
}

// Flat is an exact-scan vector index under cosine similarity. Rows are
// append-only; positions are contiguous, start at zero, and are never
// reused (the only removal is a full Clear).
//
// Flat is not safe for concurrent use; callers serialize access.
type Flat struct {
	modelName string
	dim       int
	vecs      [][]float32
	mags      []float64
}

// NewFlat creates an empty index for vectors of the given dimensionality
// produced by the named model.
func NewFlat(modelName string, dim int) *Flat {
	return &Flat{modelName: modelName, dim: dim}
}

// Len returns the number of indexed vectors.
func (x *Flat) Len() int {
	return len(x.vecs)
}

// ModelName returns the embedding model the index was built with.
func (x *Flat) ModelName() string {
	return x.modelName
}

// Dimensions returns the vector dimensionality of the index.
func (x *Flat) Dimensions() int {
	return x.dim
}

// Add appends vectors to the index and returns the position assigned to
// the first of them; the rest follow contiguously.
func (x *Flat) Add(vectors [][]float32) (int, error) {
	for i, vec := range vectors {
		if len(vec) != x.dim {
			return 0, fmt.Errorf("vector %d dimension mismatch: got %d, want %d", i, len(vec), x.dim)
		}
	}

	first := len(x.vecs)
	for _, vec := range vectors {
		x.vecs = append(x.vecs, vec)
		x.mags = append(x.mags, magnitude(vec))
	}
	return first, nil
}

// Truncate discards all rows at position n and above. Used to undo an
// append whose paired metadata write failed.
func (x *Flat) Truncate(n int) {
	if n < 0 || n >= len(x.vecs) {
		return
	}
	x.vecs = x.vecs[:n]
	x.mags = x.mags[:n]
}

// Search returns the k most similar rows to query, ordered by descending
// similarity with ties broken by ascending position. Fewer than k hits
// are returned only when the index holds fewer than k vectors.
func (x *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(x.vecs) == 0 {
		return nil, ErrEmptyIndex
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(query), x.dim)
	}

	qm := magnitude(query)

	hits := make([]Hit, len(x.vecs))
	for i := range x.vecs {
		score := 0.0
		if qm != 0 && x.mags[i] != 0 {
			score = dot(query, x.vecs[i]) / (qm * x.mags[i])
		}
		hits[i] = Hit{Position: i, Score: score}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].Position < hits[b].Position
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Clear removes all vectors. Calling Clear on an empty index is a no-op.
func (x *Flat) Clear() {
	x.vecs = nil
	x.mags = nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func magnitude(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
