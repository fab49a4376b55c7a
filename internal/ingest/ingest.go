// Package ingest drives a source through fetch, chunk, embed, and store —
// the pipeline that turns a configured Source into searchable Chunks.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mcp-docs/mcp-docs/internal/chunk"
	"github.com/mcp-docs/mcp-docs/internal/embed"
	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/fetch"
	"github.com/mcp-docs/mcp-docs/internal/store"
	"github.com/mcp-docs/mcp-docs/internal/synth"
)

// Fetcher retrieves every document for a source. cachedURLs is only
// meaningful to a web-crawl fetcher; a link-manifest fetcher ignores it.
type Fetcher interface {
	Fetch(ctx context.Context, source store.Source, cachedURLs []string) ([]fetch.Document, error)
}

// Options controls one ingestion run.
type Options struct {
	Resume bool
	DryRun bool
}

// DocSummary is the per-document line of a dry-run report.
type DocSummary struct {
	URL             string
	ContentSize     int
	EstimatedChunks int
}

// DryRunResult is returned instead of performing writes when Options.DryRun
// is set.
type DryRunResult struct {
	DocumentCount        int
	TotalContentSize     int
	EstimatedTotalChunks int
	Documents            []DocSummary
}

// Result summarizes a completed (non-dry-run) ingestion.
type Result struct {
	Processed int
	Skipped   int
	Failed    int
}

// Pipeline wires a Store, a Fetcher per source type, a chunker, an
// embedder, and the description-synthesis collaborator into one ingestion
// run.
type Pipeline struct {
	Store        *store.Store
	Fetchers     map[string]Fetcher
	ChunkOptions chunk.Options
	Embedder     embed.Embedder
	StreamOpts   embed.StreamOptions
	Synth        synth.Collaborator
	Logger       *slog.Logger
}

// Run executes the ingestion pipeline for source against its current
// configuration, returning a DryRunResult when opts.DryRun is set and a
// Result otherwise.
func (p *Pipeline) Run(ctx context.Context, src store.Source, opts Options) (*DryRunResult, *Result, error) {
	runID := uuid.New().String()
	logger := p.logger().With("run_id", runID, "source", src.Name)

	fetcher, ok := p.Fetchers[src.Type]
	if !ok {
		return nil, nil, errs.New(errs.KindValidation, "no fetcher registered for source type "+src.Type, nil)
	}

	var cachedURLs []string
	if src.Type == store.SourceTypeWebCrawl && !opts.DryRun {
		existing, err := p.Store.GetSource(ctx, src.Name)
		if err == nil && existing != nil {
			urls, err := p.Store.DocumentURLs(ctx, existing.ID)
			if err == nil {
				cachedURLs = urls
			}
		}
	}

	docs, err := fetcher.Fetch(ctx, src, cachedURLs)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindFetchFatal, err)
	}

	if opts.DryRun {
		return dryRunResult(docs), nil, nil
	}

	if src.Description == "" {
		titles := make([]string, 0, len(docs))
		for _, d := range docs {
			titles = append(titles, d.Title)
		}
		src.Description = synth.Describe(ctx, p.Synth, src.Name, src.BaseURL, titles)
	}

	sourceID, err := p.Store.UpsertSource(ctx, src.Name, src.Type, src.BaseURL, src.GroupName, src.Description, optionsOrNil(src))
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindStorage, err)
	}

	progressID, skipUpTo, err := p.resumeOrStart(ctx, sourceID, len(docs), opts)
	if err != nil {
		logger.Warn("progress tracking unavailable, continuing without resumability", "error", err)
	}

	result := &Result{}
	skipping := skipUpTo != ""
	for _, doc := range docs {
		if skipping {
			if doc.URL == skipUpTo {
				skipping = false
			}
			continue
		}

		if err := p.ingestOne(ctx, sourceID, doc, result); err != nil {
			result.Failed++
			logger.Warn("document ingestion failed", "url", doc.URL, "error", err)
			p.updateProgress(ctx, progressID, result, doc.URL, err.Error())
			continue
		}
		p.updateProgress(ctx, progressID, result, doc.URL, "")
	}

	if err := p.Store.SetLastIngestedAt(ctx, sourceID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		logger.Warn("failed to stamp last_ingested_at", "error", err)
	}
	if progressID != 0 {
		if err := p.Store.CompleteProgress(ctx, progressID, result.Failed > 0); err != nil {
			logger.Warn("failed to complete progress row", "error", err)
		}
	}
	logger.Info("ingestion complete", "processed", result.Processed, "skipped", result.Skipped, "failed", result.Failed)

	return nil, result, nil
}

func (p *Pipeline) resumeOrStart(ctx context.Context, sourceID int64, total int, opts Options) (progressID int64, skipUpTo string, err error) {
	if opts.Resume {
		existing, pErr := p.Store.GetIncompleteProgress(ctx, sourceID)
		if pErr == nil && existing != nil {
			return existing.ID, existing.LastProcessedURL, nil
		}
		err = pErr
	}
	id, cErr := p.Store.CreateProgress(ctx, sourceID, total)
	if cErr != nil {
		return 0, "", cErr
	}
	return id, "", err
}

func (p *Pipeline) updateProgress(ctx context.Context, progressID int64, result *Result, lastURL, errMsg string) {
	if progressID == 0 {
		return
	}
	if err := p.Store.UpdateProgress(ctx, progressID, result.Processed, result.Skipped, result.Failed, lastURL, errMsg); err != nil {
		p.logger().Warn("progress update failed", "error", err)
	}
}

// ingestOne hashes, chunks, embeds, and stores a single document. A hash
// match against the existing row short-circuits as a skip.
func (p *Pipeline) ingestOne(ctx context.Context, sourceID int64, doc fetch.Document, result *Result) error {
	hash := contentHash(doc.Content)

	existingHash, err := p.Store.GetDocumentHash(ctx, sourceID, doc.URL)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err)
	}
	if existingHash == hash {
		result.Skipped++
		return nil
	}

	pieces := chunk.Chunk(doc.Content, p.ChunkOptions)
	if len(pieces) == 0 {
		result.Processed++
		_, err := p.Store.UpsertDocument(ctx, store.Document{
			SourceID:    sourceID,
			URL:         doc.URL,
			Title:       doc.Title,
			Path:        doc.Path,
			Content:     doc.Content,
			ContentHash: hash,
			Metadata:    documentMetadata(doc),
		})
		if err != nil {
			return errs.Wrap(errs.KindPerDocument, err)
		}
		return nil
	}

	vectors, err := embed.EmbedStream(ctx, p.Embedder, pieces, p.StreamOpts)
	if err != nil {
		return errs.Wrap(errs.KindPerDocument, err)
	}

	docID, err := p.Store.UpsertDocument(ctx, store.Document{
		SourceID:    sourceID,
		URL:         doc.URL,
		Title:       doc.Title,
		Path:        doc.Path,
		Content:     doc.Content,
		ContentHash: hash,
		Metadata:    documentMetadata(doc),
	})
	if err != nil {
		return errs.Wrap(errs.KindPerDocument, err)
	}

	for i, piece := range pieces {
		_, err := p.Store.InsertChunk(ctx, store.Chunk{
			DocumentID: docID,
			ChunkIndex: i,
			Content:    piece,
			Embedding:  vectors[i],
			TokenCount: len(piece) / 4,
		})
		if err != nil {
			return errs.Wrap(errs.KindPerDocument, err)
		}
	}

	result.Processed++
	return nil
}

func documentMetadata(doc fetch.Document) map[string]string {
	m := map[string]string{}
	if doc.Section != "" {
		m["section"] = doc.Section
	}
	if doc.Description != "" {
		m["description"] = doc.Description
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func optionsOrNil(src store.Source) *store.SourceOptions {
	return src.Options
}

func contentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

func dryRunResult(docs []fetch.Document) *DryRunResult {
	out := &DryRunResult{Documents: make([]DocSummary, 0, len(docs))}
	for _, d := range docs {
		size := len(d.Content)
		estimated := int(math.Ceil(float64(size) / 1000))
		out.DocumentCount++
		out.TotalContentSize += size
		out.EstimatedTotalChunks += estimated
		out.Documents = append(out.Documents, DocSummary{URL: d.URL, ContentSize: size, EstimatedChunks: estimated})
	}
	return out
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
