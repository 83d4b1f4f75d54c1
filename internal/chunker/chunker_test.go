package chunker

import (
	"errors"
	"testing"

	"github.com/docquery/docquery/internal/pdf"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid", size: 800, overlap: 100, wantErr: false},
		{name: "zero overlap", size: 100, overlap: 0, wantErr: false},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative size", size: -1, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 150, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplit_WordBoundaries(t *testing.T) {
	c, err := New(10, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	chunks, err := c.Split("doc.pdf", []pdf.Page{{Number: 1, Text: "aaaa bbbb cccc"}})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	want := []struct {
		text       string
		start, end int
	}{
		{text: "aaaa bbbb", start: 0, end: 9},
		{text: "cccc", start: 10, end: 14},
	}

	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(want), chunks)
	}
	for i, w := range want {
		if chunks[i].Text != w.text {
			t.Errorf("chunk %d text = %q, want %q", i, chunks[i].Text, w.text)
		}
		if chunks[i].Start != w.start || chunks[i].End != w.end {
			t.Errorf("chunk %d span = (%d,%d), want (%d,%d)", i, chunks[i].Start, chunks[i].End, w.start, w.end)
		}
	}
}

func TestSplit_SpansPointIntoPageText(t *testing.T) {
	c, _ := New(12, 4)
	page := pdf.Page{Number: 1, Text: "one two three four five six seven"}

	chunks, err := c.Split("doc.pdf", []pdf.Page{page})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for i, ch := range chunks {
		if got := page.Text[ch.Start:ch.End]; got != ch.Text {
			t.Errorf("chunk %d: span (%d,%d) resolves to %q, want %q", i, ch.Start, ch.End, got, ch.Text)
		}
	}
}

func TestSplit_Overlap(t *testing.T) {
	// No spaces, so windows are cut at exactly the chunk size and step
	// back by the overlap. The window reaching the end of the text is
	// the last one; no overlap-only tail follows it.
	c, _ := New(4, 2)
	chunks, err := c.Split("doc.pdf", []pdf.Page{{Number: 1, Text: "abcdefgh"}})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	want := []string{"abcd", "cdef", "efgh"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(want), chunks)
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, w)
		}
	}
}

func TestSplit_NoDuplicateSpans(t *testing.T) {
	// Stepping back by the overlap from the final window used to emit
	// the trailing span a second time when the step landed on
	// whitespace.
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{name: "overlap lands on whitespace", size: 4, overlap: 2, text: "ab cd"},
		{name: "plain overlap", size: 4, overlap: 2, text: "abcdefgh"},
		{name: "word boundaries", size: 10, overlap: 4, text: "one two three four five"},
		{name: "single window", size: 100, overlap: 20, text: "short text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			chunks, err := c.Split("doc.pdf", []pdf.Page{{Number: 1, Text: tt.text}})
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}

			seen := make(map[[2]int]int)
			for _, ch := range chunks {
				seen[[2]int{ch.Start, ch.End}]++
			}
			for span, n := range seen {
				if n > 1 {
					t.Errorf("span %v emitted %d times", span, n)
				}
			}
		})
	}
}

func TestSplit_PageHandling(t *testing.T) {
	c, _ := New(100, 0)
	pages := []pdf.Page{
		{Number: 1, Text: "first page"},
		{Number: 2, Text: "   \n\t  "}, // whitespace only
		{Number: 3, Text: "third page"},
	}

	chunks, err := c.Split("doc.pdf", pages)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %+v", len(chunks), chunks)
	}

	t.Run("chunks never span pages", func(t *testing.T) {
		if chunks[0].Page != 1 || chunks[1].Page != 3 {
			t.Errorf("pages = %d, %d; want 1, 3", chunks[0].Page, chunks[1].Page)
		}
	})

	t.Run("chunk ids are document scoped", func(t *testing.T) {
		for i, ch := range chunks {
			if ch.ChunkID != i {
				t.Errorf("chunk %d has ChunkID %d", i, ch.ChunkID)
			}
		}
	})

	t.Run("source recorded on every chunk", func(t *testing.T) {
		for i, ch := range chunks {
			if ch.Source != "doc.pdf" {
				t.Errorf("chunk %d source = %q", i, ch.Source)
			}
		}
	})
}

func TestSplit_EmptyDocument(t *testing.T) {
	c, _ := New(100, 0)

	tests := []struct {
		name  string
		pages []pdf.Page
	}{
		{name: "no pages", pages: nil},
		{name: "empty pages", pages: []pdf.Page{{Number: 1}, {Number: 2}}},
		{name: "whitespace pages", pages: []pdf.Page{{Number: 1, Text: " \n \t "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Split("doc.pdf", tt.pages)
			if !errors.Is(err, ErrNoChunks) {
				t.Errorf("Split() error = %v, want ErrNoChunks", err)
			}
		})
	}
}
