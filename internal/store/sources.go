package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// UpsertSource creates or updates a source row, keyed on name. Returns the
// source id.
func (s *Store) UpsertSource(ctx context.Context, name, typ, baseURL, groupName, description string, options *SourceOptions) (int64, error) {
	var optionsJSON, groupVal, descVal any
	if options != nil {
		b, err := json.Marshal(options)
		if err != nil {
			return 0, fmt.Errorf("encoding source options: %w", err)
		}
		optionsJSON = string(b)
	}
	if groupName != "" {
		groupVal = groupName
	}
	if description != "" {
		descVal = description
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (name, type, base_url, group_name, description, options)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			type = excluded.type,
			base_url = excluded.base_url,
			group_name = excluded.group_name,
			description = excluded.description,
			options = excluded.options,
			updated_at = CURRENT_TIMESTAMP
	`, name, typ, baseURL, groupVal, descVal, optionsJSON)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM sources WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetSource looks up a source by name.
func (s *Store) GetSource(ctx context.Context, name string) (*Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, base_url, COALESCE(group_name, ''), COALESCE(description, ''),
			options, last_ingested_at, created_at, updated_at
		FROM sources WHERE name = ?
	`, name)
	return scanSource(row)
}

// GetSourceByID looks up a source by id.
func (s *Store) GetSourceByID(ctx context.Context, id int64) (*Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, base_url, COALESCE(group_name, ''), COALESCE(description, ''),
			options, last_ingested_at, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)
	return scanSource(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var src Source
	var options sql.NullString
	var lastIngested sql.NullTime

	if err := row.Scan(&src.ID, &src.Name, &src.Type, &src.BaseURL, &src.GroupName,
		&src.Description, &options, &lastIngested, &src.CreatedAt, &src.UpdatedAt); err != nil {
		return nil, err
	}
	if options.Valid && options.String != "" {
		var opts SourceOptions
		if err := json.Unmarshal([]byte(options.String), &opts); err == nil {
			src.Options = &opts
		}
	}
	if lastIngested.Valid {
		t := lastIngested.Time
		src.LastIngestedAt = &t
	}
	return &src, nil
}

// SetLastIngestedAt stamps the source's last_ingested_at.
func (s *Store) SetLastIngestedAt(ctx context.Context, sourceID int64, when string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`UPDATE sources SET last_ingested_at = ? WHERE id = ?`, when, sourceID)
	return err
}

// RemoveSource deletes a source's chunks, documents, progress rows, then
// the source itself, in that order. Returns whether anything was removed.
func (s *Store) RemoveSource(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var sourceID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM sources WHERE name = ?`, name).Scan(&sourceID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE source_id = ?)
	`, sourceID); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE source_id = ?`, sourceID); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ingestion_progress WHERE source_id = ?`, sourceID); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, sourceID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ListSources returns every configured source.
func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, base_url, COALESCE(group_name, ''), COALESCE(description, ''),
			options, last_ingested_at, created_at, updated_at
		FROM sources ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *src)
	}
	return out, rows.Err()
}

// IsGroup reports whether name resolves to a group: at least one source
// carries that group_name, and no source has that exact name (sources
// shadow groups).
func (s *Store) IsGroup(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exactCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources WHERE name = ?`, name).Scan(&exactCount); err != nil {
		return false, err
	}
	if exactCount > 0 {
		return false, nil
	}

	var groupCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources WHERE group_name = ?`, name).Scan(&groupCount); err != nil {
		return false, err
	}
	return groupCount > 0, nil
}

// SourcesByGroup returns every source carrying the given group_name.
func (s *Store) SourcesByGroup(ctx context.Context, name string) ([]Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, base_url, COALESCE(group_name, ''), COALESCE(description, ''),
			options, last_ingested_at, created_at, updated_at
		FROM sources WHERE group_name = ? ORDER BY name
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *src)
	}
	return out, rows.Err()
}

// RemoveGroup removes every source in the named group, cascading through
// RemoveSource for each member.
func (s *Store) RemoveGroup(ctx context.Context, name string) (int, error) {
	members, err := s.SourcesByGroup(ctx, name)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, src := range members {
		ok, err := s.RemoveSource(ctx, src.Name)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}
