// Package retrieval turns a free-text query into ranked chunk
// candidates from the composite store.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/docquery/docquery/internal/chunker"
	"github.com/docquery/docquery/internal/embedding"
	"github.com/docquery/docquery/internal/index"
	"github.com/docquery/docquery/internal/store"
)

// ErrIndexNotReady is returned when a query arrives before any document
// has been ingested.
var ErrIndexNotReady = errors.New("no documents indexed")

// DefaultTopK is the default number of candidates retrieved per query.
const DefaultTopK = 3

// Candidate is one retrieved chunk with its similarity to the query.
// Rank starts at 1 for the most similar candidate.
type Candidate struct {
	Chunk chunker.Chunk
	Score float64
	Rank  int
}

// Engine embeds queries and retrieves nearest chunks, optionally
// restricted to a single source document.
type Engine struct {
	store    *store.Store
	provider embedding.Provider
}

// NewEngine creates a retrieval engine over the given store and
// embedding provider. The provider must match the one used at
// ingestion time.
func NewEngine(st *store.Store, provider embedding.Provider) *Engine {
	return &Engine{store: st, provider: provider}
}

// Retrieve returns up to topK candidates for the query, most similar
// first. When sourceFilter is non-empty, candidates from other sources
// are discarded and the search widens (doubling k, capped at the index
// size) until topK filtered candidates are found or the index is
// exhausted. An empty result after filtering is valid; an empty index
// is ErrIndexNotReady.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int, sourceFilter string) ([]Candidate, error) {
	if topK < 1 {
		topK = DefaultTopK
	}

	total := e.store.Len()
	if total == 0 {
		return nil, ErrIndexNotReady
	}

	vecs, err := e.provider.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	queryVec := vecs[0]

	k := topK
	for {
		if k > total {
			k = total
		}

		hits, err := e.store.Search(queryVec, k)
		if err != nil {
			if errors.Is(err, index.ErrEmptyIndex) {
				// Cleared between the size check and the search.
				return nil, ErrIndexNotReady
			}
			return nil, err
		}

		filtered := hits
		if sourceFilter != "" {
			filtered = filtered[:0:0]
			for _, h := range hits {
				if h.Chunk.Source == sourceFilter {
					filtered = append(filtered, h)
				}
			}
		}

		// Widen the search only while unseen candidates remain.
		if len(filtered) < topK && k < total {
			k *= 2
			continue
		}

		if len(filtered) > topK {
			filtered = filtered[:topK]
		}
		out := make([]Candidate, len(filtered))
		for i, h := range filtered {
			out[i] = Candidate{Chunk: h.Chunk, Score: h.Score, Rank: i + 1}
		}
		return out, nil
	}
}
