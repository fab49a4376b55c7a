package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Store wraps the database handle. All writes are serialized through mu so
// that the single-writer contract holds even though database/sql pools
// multiple connections for readers.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	embeddingDim int
}

// Open creates or opens the database at dsn (a filesystem path, "file:..."
// DSN, or ":memory:"), enabling WAL journaling and a 5s busy timeout, then
// creates the schema and applies pending migrations.
func Open(ctx context.Context, dsn string, embeddingDim int) (*Store, error) {
	if dsn != ":memory:" && !isInMemoryDSN(dsn) {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	const pragmas = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	connDSN := dsn + "?" + pragmas
	if hasQuery(dsn) {
		connDSN = dsn + "&" + pragmas
	}

	db, err := sql.Open("sqlite3", connDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, embeddingDim: embeddingDim}

	if _, err := db.ExecContext(ctx, schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EmbeddingDim returns the configured vector column width.
func (s *Store) EmbeddingDim() int {
	return s.embeddingDim
}

func isInMemoryDSN(dsn string) bool {
	return len(dsn) >= 5 && dsn[:5] == "file:"
}

func hasQuery(dsn string) bool {
	for _, r := range dsn {
		if r == '?' {
			return true
		}
	}
	return false
}
