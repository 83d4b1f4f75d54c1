// Package chunker splits per-page document text into overlapping,
// fixed-size chunks suitable for embedding and retrieval.
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docquery/docquery/internal/pdf"
)

// ErrNoChunks is returned when an entire document yields no text chunks.
// Callers should reject the upload rather than index an empty document.
var ErrNoChunks = errors.New("document produced no text chunks")

const (
	// DefaultSize is the default chunk width in characters.
	// Short enough to keep extractive QA context tight, long enough
	// to hold a few sentences of surrounding context.
	DefaultSize = 800

	// DefaultOverlap is the default number of characters shared between
	// consecutive chunks on the same page.
	DefaultOverlap = 100
)

// Chunk is the atomic retrievable unit: a bounded, page-scoped slice of
// document text with its provenance.
type Chunk struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
	Start   int    `json:"start"` // offset of Text within the page text
	End     int    `json:"end"`
}

// Chunker splits pages into chunks using a sliding window.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got %d for size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks every page of a document. Chunks never span two pages.
// ChunkID is a counter scoped to the whole document, assigned in
// generation order. Returns ErrNoChunks if no page produced any text.
func (c *Chunker) Split(source string, pages []pdf.Page) ([]Chunk, error) {
	var chunks []Chunk
	chunkID := 0

	for _, page := range pages {
		for _, w := range c.windows(page.Text) {
			chunks = append(chunks, Chunk{
				Source:  source,
				Page:    page.Number,
				ChunkID: chunkID,
				Text:    page.Text[w.start:w.end],
				Start:   w.start,
				End:     w.end,
			})
			chunkID++
		}
	}

	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	return chunks, nil
}

type window struct {
	start, end int
}

// windows slides a width-c.size window over text, preferring to cut at
// the last newline (then space) inside the window so chunks end on a
// natural boundary. Consecutive windows share c.overlap characters;
// sliding stops once a window reaches the end of the text, so no two
// windows cover the same span. Whitespace-only stretches produce no
// windows.
func (c *Chunker) windows(text string) []window {
	var out []window
	length := len(text)
	start := 0

	for start < length {
		end := start + c.size
		if end < length {
			split := strings.LastIndex(text[start:end], "\n")
			if split <= 0 {
				split = strings.LastIndex(text[start:end], " ")
			}
			if split > 0 {
				end = start + split
			}
		} else {
			end = length
		}

		if w, ok := trimWindow(text, start, end); ok {
			out = append(out, w)
		}

		if end == length {
			break
		}

		// Step back by the overlap, but always make forward progress.
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return out
}

// trimWindow shrinks [start,end) to exclude leading and trailing
// whitespace, so recorded spans point at the retained text exactly.
func trimWindow(text string, start, end int) (window, bool) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	if start >= end {
		return window{}, false
	}
	return window{start: start, end: end}, true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
