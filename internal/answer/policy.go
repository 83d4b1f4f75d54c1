// Package answer merges per-candidate extraction results into one
// ranked answer with calibrated confidence.
package answer

import (
	"context"
	"fmt"
	"sort"

	"github.com/docquery/docquery/internal/qa"
	"github.com/docquery/docquery/internal/retrieval"
)

// DefaultMinConfidence is the default floor under which no answer is
// reported. Extractive QA scores below this are indistinguishable from
// noise in practice.
const DefaultMinConfidence = 0.15

// Source is one candidate chunk as presented to the caller, carrying
// its retrieval similarity for display.
type Source struct {
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	ChunkID int     `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Result is the outcome of answering one query. Confidence is nil when
// every candidate scored below the configured minimum; in that case
// Answer is empty, signaling that no adequate answer was found.
type Result struct {
	Answer     string   `json:"answer"`
	Confidence *float64 `json:"confidence,omitempty"`
	Sources    []Source `json:"sources"`
}

// Policy runs an extractor over retrieval candidates and selects the
// best answer span.
type Policy struct {
	extractor     qa.Extractor
	minConfidence float64
}

// NewPolicy creates a ranking policy. minConfidence below or equal to
// zero falls back to DefaultMinConfidence.
func NewPolicy(extractor qa.Extractor, minConfidence float64) *Policy {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Policy{extractor: extractor, minConfidence: minConfidence}
}

// Rank extracts a span from every candidate and orders them by local
// confidence, ties broken by higher retrieval similarity. The top
// candidate supplies both the answer and the overall confidence; no
// averaging across candidates happens here.
func (p *Policy) Rank(ctx context.Context, question string, candidates []retrieval.Candidate) (Result, error) {
	type scored struct {
		candidate retrieval.Candidate
		span      qa.Span
	}

	extracted := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		span, err := p.extractor.ExtractSpan(ctx, question, c.Chunk.Text)
		if err != nil {
			return Result{}, fmt.Errorf("extracting span from chunk %d of %s: %w", c.Chunk.ChunkID, c.Chunk.Source, err)
		}
		extracted = append(extracted, scored{candidate: c, span: span})
	}

	sort.SliceStable(extracted, func(i, j int) bool {
		if extracted[i].span.Confidence != extracted[j].span.Confidence {
			return extracted[i].span.Confidence > extracted[j].span.Confidence
		}
		return extracted[i].candidate.Score > extracted[j].candidate.Score
	})

	result := Result{Sources: make([]Source, len(extracted))}
	for i, s := range extracted {
		result.Sources[i] = Source{
			Source:  s.candidate.Chunk.Source,
			Page:    s.candidate.Chunk.Page,
			ChunkID: s.candidate.Chunk.ChunkID,
			Text:    s.candidate.Chunk.Text,
			Score:   s.candidate.Score,
		}
	}

	if len(extracted) == 0 || extracted[0].span.Confidence < p.minConfidence {
		return result, nil
	}

	top := extracted[0]
	confidence := top.span.Confidence
	result.Answer = top.span.Text
	result.Confidence = &confidence
	return result, nil
}
