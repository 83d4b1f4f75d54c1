// Package service wires the ingestion and question-answering pipelines
// together behind the operations callers consume.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/docquery/docquery/internal/answer"
	"github.com/docquery/docquery/internal/chunker"
	"github.com/docquery/docquery/internal/embedding"
	"github.com/docquery/docquery/internal/pdf"
	"github.com/docquery/docquery/internal/qa"
	"github.com/docquery/docquery/internal/retrieval"
	"github.com/docquery/docquery/internal/store"
)

// Service exposes the core operations: ingest, answer, search, sources,
// stats, and clear. Model calls (embedding, span extraction) run outside
// the store's lock; only the paired append/clear and candidate snapshots
// happen under it.
type Service struct {
	chunker  *chunker.Chunker
	provider embedding.Provider
	store    *store.Store
	engine   *retrieval.Engine
	policy   *answer.Policy
}

// New assembles a Service from its parts.
func New(ch *chunker.Chunker, provider embedding.Provider, st *store.Store, extractor qa.Extractor, minConfidence float64) *Service {
	return &Service{
		chunker:  ch,
		provider: provider,
		store:    st,
		engine:   retrieval.NewEngine(st, provider),
		policy:   answer.NewPolicy(extractor, minConfidence),
	}
}

// Ingest chunks and embeds one document's pages and appends the result
// to the store as a unit. Returns the number of chunks indexed.
//
// Failures before the append leave no state behind. A persistence
// failure after the append is returned as store.ErrPersist together
// with the chunk count: the in-memory index already serves the
// document, only durability suffered.
//
// Re-ingesting the same documentID accumulates duplicate chunks; there
// is no document versioning.
func (s *Service) Ingest(ctx context.Context, documentID string, pages []pdf.Page) (int, error) {
	chunks, err := s.chunker.Split(documentID, pages)
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := s.store.AppendChunks(chunks, vectors); err != nil {
		if errors.Is(err, store.ErrPersist) {
			return len(chunks), err
		}
		return 0, err
	}
	return len(chunks), nil
}

// Answer retrieves candidates for the query and runs the extraction and
// ranking policy over them. sourceFilter, when non-empty, restricts
// candidates to chunks of that document.
func (s *Service) Answer(ctx context.Context, query string, topK int, sourceFilter string) (answer.Result, error) {
	candidates, err := s.engine.Retrieve(ctx, query, topK, sourceFilter)
	if err != nil {
		return answer.Result{}, err
	}
	return s.policy.Rank(ctx, query, candidates)
}

// Search returns raw ranked candidates without the QA pass.
func (s *Service) Search(ctx context.Context, query string, topK int, sourceFilter string) ([]retrieval.Candidate, error) {
	return s.engine.Retrieve(ctx, query, topK, sourceFilter)
}

// Sources lists indexed documents with their chunk counts.
func (s *Service) Sources() ([]store.SourceCount, error) {
	return s.store.Sources()
}

// Stats reports the vector and metadata record counts.
func (s *Service) Stats() (store.Stats, error) {
	return s.store.Stats()
}

// Clear empties the index and metadata together. The caller is trusted
// to have authorized the operation.
func (s *Service) Clear() error {
	return s.store.Clear()
}
