package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// UpsertDocument inserts or updates a document, keyed on (source_id, url).
// The document's existing chunks are deleted before the upsert so stale
// embeddings never survive a content change; both steps run in
// one transaction.
func (s *Store) UpsertDocument(ctx context.Context, doc Document) (int64, error) {
	var metadataJSON any
	if len(doc.Metadata) > 0 {
		b, err := json.Marshal(doc.Metadata)
		if err != nil {
			return 0, fmt.Errorf("encoding document metadata: %w", err)
		}
		metadataJSON = string(b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM documents WHERE source_id = ? AND url = ?
	`, doc.SourceID, doc.URL).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	if existingID != 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM vec_chunks WHERE chunk_id IN (SELECT id FROM chunks WHERE document_id = ?)
		`, existingID); err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, existingID); err != nil {
			return 0, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (source_id, url, title, path, content, content_hash, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(source_id, url) DO UPDATE SET
			title = excluded.title,
			path = excluded.path,
			content = excluded.content,
			content_hash = excluded.content_hash,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`, doc.SourceID, doc.URL, doc.Title, doc.Path, doc.Content, doc.ContentHash, metadataJSON); err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM documents WHERE source_id = ? AND url = ?
	`, doc.SourceID, doc.URL).Scan(&id); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetDocumentHash returns the content_hash for a document already at
// (source_id, url), or "" if the document does not yet exist. Used by the
// ingestion pipeline's change-detection skip.
func (s *Store) GetDocumentHash(ctx context.Context, sourceID int64, url string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash FROM documents WHERE source_id = ? AND url = ?
	`, sourceID, url).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// DocumentURLs returns every document URL ingested for a source, used to
// seed cached_urls for a web_crawl re-ingest.
func (s *Store) DocumentURLs(ctx context.Context, sourceID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT url FROM documents WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// GetDocumentsByIDs fetches documents in the given ids, in no particular
// order; callers re-sort by their own rank.
func (s *Store) GetDocumentsByIDs(ctx context.Context, ids []int64) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, source_id, url, title, COALESCE(path, ''), content, content_hash, metadata, updated_at
		FROM documents WHERE id IN (%s)
	`, string(placeholders))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var metadata sql.NullString
		if err := rows.Scan(&doc.ID, &doc.SourceID, &doc.URL, &doc.Title, &doc.Path,
			&doc.Content, &doc.ContentHash, &metadata, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if metadata.Valid && metadata.String != "" {
			m := map[string]string{}
			if err := json.Unmarshal([]byte(metadata.String), &m); err == nil {
				doc.Metadata = m
			}
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
