// Package store persists sources, documents, and chunks in a single SQLite
// database, combining the asg017/sqlite-vec vec0 extension for cosine
// vector search with an FTS5 virtual table for lexical search. Build with
// -tags sqlite_fts5 so mattn/go-sqlite3 links FTS5 support.
package store
