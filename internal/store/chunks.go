package store

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
)

// InsertChunk writes one chunk row plus its vec0 embedding row, keyed on
// (document_id, chunk_index). A conflict overwrites.
func (s *Store) InsertChunk(ctx context.Context, c Chunk) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chunks (document_id, chunk_index, content, token_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id, chunk_index) DO UPDATE SET
			content = excluded.content,
			token_count = excluded.token_count
	`, c.DocumentID, c.ChunkIndex, c.Content, c.TokenCount)
	if err != nil {
		return 0, err
	}

	// LastInsertId is stale when the upsert took the DO UPDATE path, so the
	// id is always read back by key.
	var id int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM chunks WHERE document_id = ? AND chunk_index = ?
	`, c.DocumentID, c.ChunkIndex).Scan(&id); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)
	`, id, serializeFloat32(c.Embedding)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// CountChunksBySource returns how many chunks belong to a source's
// documents.
func (s *Store) CountChunksBySource(ctx context.Context, sourceID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks
		JOIN documents ON documents.id = chunks.document_id
		WHERE documents.source_id = ?
	`, sourceID).Scan(&count)
	return count, err
}

// VectorSearch returns chunks ordered by ascending cosine distance.
// filters.Limit is the KNN k.
func (s *Store) VectorSearch(ctx context.Context, embedding []float32, filters SearchFilters) ([]ChunkHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filters.Limit
	if limit <= 0 {
		limit = 15
	}

	query := `
		SELECT v.chunk_id, c.document_id, d.url, c.content, v.distance
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		JOIN documents d ON d.id = c.document_id
		WHERE v.embedding MATCH ? AND k = ?
	`
	args := []any{serializeFloat32(embedding), limit}
	query, args = appendChunkFilters(query, args, filters)
	query += " ORDER BY v.distance"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChunkHit
	for rows.Next() {
		var h ChunkHit
		if err := rows.Scan(&h.ChunkID, &h.DocumentID, &h.URL, &h.Content, &h.Distance); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// LexicalSearch runs a BM25 query over chunks_fts, ordered ascending by
// raw rank (more negative is better); Distance is reported as the absolute
// value.
func (s *Store) LexicalSearch(ctx context.Context, query string, filters SearchFilters) ([]ChunkHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filters.Limit
	if limit <= 0 {
		limit = 15
	}

	ftsQuery := prepareFTSQuery(query)

	sqlQuery := `
		SELECT f.rowid, c.document_id, d.url, c.content, f.rank
		FROM chunks_fts f
		JOIN chunks c ON c.id = f.rowid
		JOIN documents d ON d.id = c.document_id
		WHERE chunks_fts MATCH ?
	`
	args := []any{ftsQuery}
	sqlQuery, args = appendChunkFilters(sqlQuery, args, filters)
	sqlQuery += " ORDER BY f.rank LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChunkHit
	for rows.Next() {
		var h ChunkHit
		var rank float64
		if err := rows.Scan(&h.ChunkID, &h.DocumentID, &h.URL, &h.Content, &rank); err != nil {
			return nil, err
		}
		h.Distance = math.Abs(rank)
		out = append(out, h)
	}
	return out, rows.Err()
}

func appendChunkFilters(query string, args []any, filters SearchFilters) (string, []any) {
	if filters.SourceID != 0 {
		query += " AND d.source_id = ?"
		args = append(args, filters.SourceID)
	}
	if filters.PathPrefix != "" {
		query += " AND d.path LIKE ? || '%'"
		args = append(args, filters.PathPrefix)
	}
	if filters.Section != "" {
		query += " AND json_extract(d.metadata, '$.section') = ?"
		args = append(args, filters.Section)
	}
	return query, args
}

// prepareFTSQuery strips punctuation that FTS5 treats as query syntax,
// splits on whitespace, drops empties, and ORs the remaining terms
// together with a trailing "*" for prefix matching. An all-punctuation
// query matches the empty phrase.
func prepareFTSQuery(query string) string {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '"', '(', ')', '*', '-', '+', ':', '^':
			return -1
		}
		return r
	}, query)

	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return `""`
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		terms[i] = `"` + f + `"*`
	}
	return strings.Join(terms, " OR ")
}

// serializeFloat32 converts a float32 slice to little-endian bytes, the
// wire format sqlite-vec's vec0 columns expect.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
