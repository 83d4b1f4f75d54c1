package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is the default OpenAI embedding model.
	DefaultOpenAIModel = "text-embedding-3-small"

	// DefaultOpenAIDimensions is the output dimensionality of
	// text-embedding-3-small.
	DefaultOpenAIDimensions = 1536

	// maxOpenAIBatch caps how many inputs are sent per API call.
	maxOpenAIBatch = 256
)

// OpenAIProvider generates embeddings using the OpenAI embeddings API.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIModel sets the embedding model and its dimensionality.
func WithOpenAIModel(model string, dims int) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.model = model
		p.dimensions = dims
	}
}

// WithOpenAIClient sets a custom API client (for testing).
func WithOpenAIClient(client *openai.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.client = client
	}
}

// NewOpenAIProvider creates an OpenAI embedding provider. The API key is
// read from the OPENAI_API_KEY environment variable unless a custom
// client is supplied.
func NewOpenAIProvider(opts ...OpenAIOption) (*OpenAIProvider, error) {
	p := &OpenAIProvider{
		model:      DefaultOpenAIModel,
		dimensions: DefaultOpenAIDimensions,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		p.client = openai.NewClient(key)
	}

	return p, nil
}

// EmbedBatch generates embeddings for the given texts, splitting them
// into API-sized batches internally. Results are returned in input order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxOpenAIBatch {
		end := start + maxOpenAIBatch
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(p.model),
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embeddings request: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: got %d vectors for %d texts", len(resp.Data), len(batch))
		}

		for i, d := range resp.Data {
			if len(d.Embedding) != p.dimensions {
				return nil, fmt.Errorf("unexpected embedding dimensions at %d: got %d, want %d", start+i, len(d.Embedding), p.dimensions)
			}
			vec := make([]float32, len(d.Embedding))
			for j := range d.Embedding {
				vec[j] = float32(d.Embedding[j])
			}
			out = append(out, vec)
		}
	}

	return out, nil
}

// ModelName returns the name of the embedding model.
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// Dimensions returns the expected vector dimensions.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}
