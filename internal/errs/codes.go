// Package errs provides structured error handling for mcp-docs, mapping
// onto the seven error kinds enumerated in the engine's error-handling
// design: configuration, not_found, fetch_transient, fetch_fatal,
// per_document, storage, and validation.
package errs

// Kind classifies an error by how the caller should react to it.
type Kind string

const (
	// KindConfiguration: missing env var, invalid flag combination — fatal
	// to the command.
	KindConfiguration Kind = "configuration"
	// KindNotFound: named source or group does not exist — fatal to the
	// command, surfaced as a non-zero exit.
	KindNotFound Kind = "not_found"
	// KindFetchTransient: an HTTP or provider failure a retry might fix —
	// retried in place (3x embedder, 1x manifest .md fallback).
	KindFetchTransient Kind = "fetch_transient"
	// KindFetchFatal: crawl job reports failed/cancelled, or a persistent
	// HTTP 4xx/5xx — aborts the current source only.
	KindFetchFatal Kind = "fetch_fatal"
	// KindPerDocument: parse, chunk, embed, or upsert failure for one
	// document — logged, counted, skipped; ingestion continues.
	KindPerDocument Kind = "per_document"
	// KindStorage: SQL or vector-index failure — surfaced to the caller;
	// may leave progress in_progress.
	KindStorage Kind = "storage"
	// KindValidation: schema rejection of a source config — fatal with the
	// offending reason reported.
	KindValidation Kind = "validation"
)

// Severity defines error severity levels.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// retryableKinds lists kinds a caller may retry without further judgment.
var retryableKinds = map[Kind]bool{
	KindFetchTransient: true,
}

// fatalKinds lists kinds that abort the current command outright.
var fatalKinds = map[Kind]bool{
	KindConfiguration: true,
	KindNotFound:      true,
	KindValidation:    true,
}

func severityForKind(k Kind) Severity {
	if fatalKinds[k] {
		return SeverityFatal
	}
	if k == KindPerDocument {
		return SeverityWarning
	}
	return SeverityError
}
