// Package embedding provides vector embedding generation for text.
package embedding

import (
	"context"
	"errors"
)

// ErrEmptyBatch is returned when EmbedBatch is called with no texts.
var ErrEmptyBatch = errors.New("no texts to embed")

// Provider generates embeddings from text.
//
// EmbedBatch is order-preserving: result[i] is the embedding of texts[i],
// and implementations must return exactly one vector per input or an
// error, never a short result. Output must be deterministic for identical
// input and model version; the same provider configuration has to be used
// at ingestion time and query time.
type Provider interface {
	// EmbedBatch generates embeddings for the given texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
