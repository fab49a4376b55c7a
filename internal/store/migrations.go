package store

import (
	"context"
	"strings"
)

// additiveMigrations are ALTER TABLE statements applied on every open so
// that a database created by an older schema version gains new columns
// without a destructive rewrite: additive migrations so pre-existing
// databases open cleanly.
var additiveMigrations = []string{
	`ALTER TABLE sources ADD COLUMN last_ingested_at DATETIME`,
	`ALTER TABLE sources ADD COLUMN group_name TEXT`,
	`ALTER TABLE documents ADD COLUMN metadata JSON`,
}

func (s *Store) runMigrations(ctx context.Context) error {
	for _, stmt := range additiveMigrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if isDuplicateColumnErr(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// isDuplicateColumnErr reports whether err is sqlite's rejection of an
// ALTER TABLE ADD COLUMN that already exists. Tolerated quietly.
func isDuplicateColumnErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column name")
}
