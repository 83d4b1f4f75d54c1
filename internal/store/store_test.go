package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docquery/docquery/internal/chunker"
	"github.com/docquery/docquery/internal/index"
)

const (
	testModel = "test-model"
	testDim   = 3
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, testModel, testDim)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testChunks(source string, n int) []chunker.Chunk {
	chunks := make([]chunker.Chunk, n)
	for i := range chunks {
		chunks[i] = chunker.Chunk{
			Source:  source,
			Page:    1 + i/3,
			ChunkID: i,
			Text:    source + " chunk",
			Start:   i * 10,
			End:     i*10 + 5,
		}
	}
	return chunks
}

func testVectors(n int) [][]float32 {
	vecs := make([][]float32, n)
	for i := range vecs {
		vec := make([]float32, testDim)
		vec[i%testDim] = 1
		vecs[i] = vec
	}
	return vecs
}

func TestAppendChunks(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	if err := s.AppendChunks(testChunks("a.pdf", 3), testVectors(3)); err != nil {
		t.Fatalf("AppendChunks failed: %v", err)
	}

	t.Run("counts stay aligned", func(t *testing.T) {
		stats, err := s.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.VectorCount != 3 || stats.MetadataCount != 3 {
			t.Errorf("stats = %+v, want {3 3}", stats)
		}
	})

	t.Run("rejects count mismatch", func(t *testing.T) {
		err := s.AppendChunks(testChunks("b.pdf", 2), testVectors(3))
		if err == nil {
			t.Error("expected error for chunk/vector count mismatch")
		}
	})

	t.Run("rejects empty append", func(t *testing.T) {
		if err := s.AppendChunks(nil, nil); err == nil {
			t.Error("expected error for empty append")
		}
	})
}

func TestSearch_ReturnsAlignedMetadata(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	chunks := []chunker.Chunk{
		{Source: "a.pdf", Page: 1, ChunkID: 0, Text: "alpha"},
		{Source: "a.pdf", Page: 1, ChunkID: 1, Text: "beta"},
		{Source: "a.pdf", Page: 2, ChunkID: 2, Text: "gamma"},
	}
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if err := s.AppendChunks(chunks, vectors); err != nil {
		t.Fatalf("AppendChunks failed: %v", err)
	}

	hits, err := s.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Chunk.Text != "beta" || hits[0].Position != 1 {
		t.Errorf("hit = %+v, want chunk beta at position 1", hits[0])
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	_, err := s.Search([]float32{1, 0, 0}, 1)
	if !errors.Is(err, index.ErrEmptyIndex) {
		t.Errorf("Search() error = %v, want ErrEmptyIndex", err)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	if err := s.AppendChunks(testChunks("a.pdf", 3), testVectors(3)); err != nil {
		t.Fatalf("AppendChunks failed: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.VectorCount != 0 || stats.MetadataCount != 0 {
		t.Errorf("stats after Clear = %+v, want {0 0}", stats)
	}

	t.Run("idempotent", func(t *testing.T) {
		if err := s.Clear(); err != nil {
			t.Fatalf("second Clear failed: %v", err)
		}
		stats, _ := s.Stats()
		if stats.VectorCount != 0 || stats.MetadataCount != 0 {
			t.Errorf("stats after second Clear = %+v, want {0 0}", stats)
		}
	})
}

func TestPersistence_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := openTestStore(t, dir)
	chunks := []chunker.Chunk{
		{Source: "a.pdf", Page: 1, ChunkID: 0, Text: "alpha"},
		{Source: "b.pdf", Page: 1, ChunkID: 0, Text: "beta"},
	}
	if err := s.AppendChunks(chunks, [][]float32{{1, 0, 0}, {0, 1, 0}}); err != nil {
		t.Fatalf("AppendChunks failed: %v", err)
	}
	s.Close()

	reopened := openTestStore(t, dir)
	stats, err := reopened.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.VectorCount != 2 || stats.MetadataCount != 2 {
		t.Fatalf("stats after reopen = %+v, want {2 2}", stats)
	}

	hits, err := reopened.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if hits[0].Chunk.Source != "b.pdf" {
		t.Errorf("hit source = %q, want b.pdf", hits[0].Chunk.Source)
	}
}

func TestOpen_MisalignedPairResets(t *testing.T) {
	dir := t.TempDir()

	s := openTestStore(t, dir)
	if err := s.AppendChunks(testChunks("a.pdf", 3), testVectors(3)); err != nil {
		t.Fatalf("AppendChunks failed: %v", err)
	}
	s.Close()

	// Simulate a crash between the two writes: the index file is gone
	// but the metadata rows survived.
	if err := os.Remove(filepath.Join(dir, IndexFileName)); err != nil {
		t.Fatalf("removing index file: %v", err)
	}

	reopened := openTestStore(t, dir)
	stats, err := reopened.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.VectorCount != 0 || stats.MetadataCount != 0 {
		t.Errorf("stats after misaligned reopen = %+v, want {0 0}", stats)
	}
}

func TestOpen_ModelChangeResets(t *testing.T) {
	dir := t.TempDir()

	s := openTestStore(t, dir)
	if err := s.AppendChunks(testChunks("a.pdf", 3), testVectors(3)); err != nil {
		t.Fatalf("AppendChunks failed: %v", err)
	}
	s.Close()

	// An index built with a different embedding model must not be
	// served against the new one.
	other, err := Open(dir, "other-model", testDim)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer other.Close()

	stats, err := other.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.VectorCount != 0 || stats.MetadataCount != 0 {
		t.Errorf("stats = %+v, want {0 0}", stats)
	}
}

func TestSources(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	// b.pdf first, then a.pdf, then more b.pdf: order of first
	// appearance is b, a.
	s.AppendChunks(testChunks("b.pdf", 2), testVectors(2))
	s.AppendChunks(testChunks("a.pdf", 1), testVectors(1))
	s.AppendChunks(testChunks("b.pdf", 1), testVectors(1))

	sources, err := s.Sources()
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}

	want := []SourceCount{{Source: "b.pdf", Count: 3}, {Source: "a.pdf", Count: 1}}
	if len(sources) != len(want) {
		t.Fatalf("got %d sources, want %d: %+v", len(sources), len(want), sources)
	}
	for i, w := range want {
		if sources[i] != w {
			t.Errorf("source %d = %+v, want %+v", i, sources[i], w)
		}
	}
}

func TestChunksBySource(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	s.AppendChunks(testChunks("a.pdf", 2), testVectors(2))
	s.AppendChunks(testChunks("b.pdf", 2), testVectors(2))

	chunks, err := s.ChunksBySource("a.pdf")
	if err != nil {
		t.Fatalf("ChunksBySource failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Source != "a.pdf" {
			t.Errorf("chunk %d source = %q, want a.pdf", i, ch.Source)
		}
		if ch.ChunkID != i {
			t.Errorf("chunk %d out of order: ChunkID = %d", i, ch.ChunkID)
		}
	}
}

func TestChunks_AllInPositionOrder(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	s.AppendChunks(testChunks("a.pdf", 3), testVectors(3))

	chunks, err := s.Chunks()
	if err != nil {
		t.Fatalf("Chunks failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkID != i {
			t.Errorf("chunk %d out of order: ChunkID = %d", i, ch.ChunkID)
		}
	}
}
