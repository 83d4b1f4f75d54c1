package store

import (
	"database/sql"
	"fmt"

	"github.com/docquery/docquery/internal/chunker"
	_ "modernc.org/sqlite"
)

// MetadataDB holds chunk provenance rows, one per indexed vector. The
// position column mirrors the vector index row number; metadata row i
// describes vector i for the lifetime of the index.
type MetadataDB struct {
	db *sql.DB
}

// SourceCount is the number of chunks indexed from one source document.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

const selectChunkFields = `position, source, page, chunk_id, text, start_off, end_off`

// OpenMetadata opens or creates the chunk metadata database at path.
func OpenMetadata(path string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &MetadataDB{db: db}, nil
}

// Close closes the database connection.
func (m *MetadataDB) Close() error {
	return m.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			position INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			page INTEGER NOT NULL,
			chunk_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			start_off INTEGER NOT NULL,
			end_off INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Append inserts chunks at contiguous positions starting at start, in
// one transaction. Positions must not collide with existing rows.
func (m *MetadataDB) Append(start int, chunks []chunker.Chunk) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (position, source, page, chunk_id, text, start_off, end_off)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ch := range chunks {
		if _, err := stmt.Exec(start+i, ch.Source, ch.Page, ch.ChunkID, ch.Text, ch.Start, ch.End); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", start+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (m *MetadataDB) Count() (int, error) {
	var n int
	if err := m.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Get returns the chunk stored at the given index position.
func (m *MetadataDB) Get(position int) (chunker.Chunk, error) {
	row := m.db.QueryRow(`SELECT `+selectChunkFields+` FROM chunks WHERE position = ?`, position)
	return scanChunk(row)
}

// All returns every chunk in position order.
func (m *MetadataDB) All() ([]chunker.Chunk, error) {
	return m.queryChunks(`SELECT ` + selectChunkFields + ` FROM chunks ORDER BY position`)
}

// BySource returns the chunks from one source document, preserving
// position order.
func (m *MetadataDB) BySource(source string) ([]chunker.Chunk, error) {
	return m.queryChunks(`SELECT `+selectChunkFields+` FROM chunks WHERE source = ? ORDER BY position`, source)
}

// GroupCounts returns per-source chunk counts, ordered by each source's
// first appearance in the index.
func (m *MetadataDB) GroupCounts() ([]SourceCount, error) {
	rows, err := m.db.Query(`
		SELECT source, COUNT(*) AS n
		FROM chunks
		GROUP BY source
		ORDER BY MIN(position)
	`)
	if err != nil {
		return nil, fmt.Errorf("querying source counts: %w", err)
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scanning source count: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Clear removes all chunks. Idempotent.
func (m *MetadataDB) Clear() error {
	if _, err := m.db.Exec(`DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

func (m *MetadataDB) queryChunks(query string, args ...any) ([]chunker.Chunk, error) {
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var out []chunker.Chunk
	for rows.Next() {
		var position int
		var ch chunker.Chunk
		if err := rows.Scan(&position, &ch.Source, &ch.Page, &ch.ChunkID, &ch.Text, &ch.Start, &ch.End); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func scanChunk(row *sql.Row) (chunker.Chunk, error) {
	var position int
	var ch chunker.Chunk
	if err := row.Scan(&position, &ch.Source, &ch.Page, &ch.ChunkID, &ch.Text, &ch.Start, &ch.End); err != nil {
		return chunker.Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}
	return ch, nil
}
