// Package qa selects extractive answer spans from chunk text.
package qa

import "context"

// Span is a contiguous substring of a passage judged to answer a
// question, with the model's own confidence in [0, 1].
type Span struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"` // byte offsets within the passage
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Extractor selects an answer span from a passage.
//
// Implementations must be deterministic for identical inputs and model
// version. Confidence reflects only the model's own certainty; no
// cross-candidate normalization is expected here, ranking across
// candidates is the caller's job.
type Extractor interface {
	// ExtractSpan returns the span of passage most likely to answer
	// question.
	ExtractSpan(ctx context.Context, question, passage string) (Span, error)
}
