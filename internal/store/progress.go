package store

import (
	"context"
	"database/sql"
	"time"
)

// GetIncompleteProgress returns the most recent in_progress row for a
// source, or nil if none exists. Spec §4.1/§4.10: the schema tolerates
// duplicate in_progress rows; resume always takes the most recent.
func (s *Store) GetIncompleteProgress(ctx context.Context, sourceID int64) (*Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, started_at, total, processed, skipped, failed,
			status, COALESCE(last_processed_url, ''), COALESCE(error_message, '')
		FROM ingestion_progress
		WHERE source_id = ? AND status = ?
		ORDER BY started_at DESC LIMIT 1
	`, sourceID, ProgressInProgress)

	var p Progress
	err := row.Scan(&p.ID, &p.SourceID, &p.StartedAt, &p.Total, &p.Processed, &p.Skipped,
		&p.Failed, &p.Status, &p.LastProcessedURL, &p.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProgress starts a new in_progress row for a source.
func (s *Store) CreateProgress(ctx context.Context, sourceID int64, total int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_progress (source_id, started_at, total, status)
		VALUES (?, ?, ?, ?)
	`, sourceID, time.Now().UTC(), total, ProgressInProgress)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProgress overwrites an in_progress row's counters with the given
// running totals and records the last processed URL. Best-effort: callers may ignore failures here
// without aborting ingestion.
func (s *Store) UpdateProgress(ctx context.Context, id int64, processed, skipped, failed int, lastURL, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errVal any
	if errMsg != "" {
		errVal = errMsg
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE ingestion_progress
		SET processed = ?, skipped = ?, failed = ?, last_processed_url = ?, error_message = COALESCE(?, error_message)
		WHERE id = ?
	`, processed, skipped, failed, lastURL, errVal, id)
	return err
}

// CompleteProgress marks a progress row completed or completed_with_errors.
func (s *Store) CompleteProgress(ctx context.Context, id int64, hadFailures bool) error {
	status := ProgressCompleted
	if hadFailures {
		status = ProgressCompletedWithErrs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE ingestion_progress SET status = ? WHERE id = ?
	`, status, id)
	return err
}
