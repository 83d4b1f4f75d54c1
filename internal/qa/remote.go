package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultQATimeout is the timeout for span extraction requests.
	// Extractive QA models are small but cold starts can be slow.
	DefaultQATimeout = 60 * time.Second

	// DefaultQARateLimit is the request rate allowed against a shared
	// inference endpoint, in requests per second.
	DefaultQARateLimit = 10.0
)

// RemoteExtractor calls a SQuAD-style extractive QA inference endpoint:
// POST {question, context} returning {answer, score, start, end}. The
// deepset/roberta-base-squad2 family served by common inference servers
// speaks exactly this shape.
type RemoteExtractor struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// RemoteOption configures a RemoteExtractor.
type RemoteOption func(*RemoteExtractor)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) RemoteOption {
	return func(e *RemoteExtractor) {
		e.client = hc
	}
}

// WithRateLimit sets the allowed request rate in requests per second.
func WithRateLimit(rps float64) RemoteOption {
	return func(e *RemoteExtractor) {
		e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewRemoteExtractor creates an extractor backed by the QA inference
// endpoint at the given URL.
func NewRemoteExtractor(endpoint string, opts ...RemoteOption) *RemoteExtractor {
	e := &RemoteExtractor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultQATimeout},
		limiter:  rate.NewLimiter(rate.Limit(DefaultQARateLimit), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractSpan sends the question/passage pair to the inference endpoint
// and returns the extracted span. Scores outside [0, 1] are clamped.
func (e *RemoteExtractor) ExtractSpan(ctx context.Context, question, passage string) (Span, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return Span{}, err
	}

	body, err := json.Marshal(qaRequest{Question: question, Context: passage})
	if err != nil {
		return Span{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return Span{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return Span{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Span{}, fmt.Errorf("qa endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result qaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Span{}, fmt.Errorf("decoding response: %w", err)
	}

	return Span{
		Text:       result.Answer,
		Start:      result.Start,
		End:        result.End,
		Confidence: clamp01(result.Score),
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// qaRequest is the request body for the QA inference endpoint.
type qaRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// qaResponse is the response from the QA inference endpoint.
type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}
