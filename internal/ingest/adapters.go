package ingest

import (
	"context"

	"github.com/mcp-docs/mcp-docs/internal/fetch"
	"github.com/mcp-docs/mcp-docs/internal/fetch/crawl"
	"github.com/mcp-docs/mcp-docs/internal/fetch/manifest"
	"github.com/mcp-docs/mcp-docs/internal/store"
)

// ManifestFetcher adapts manifest.Fetcher to the Fetcher interface.
type ManifestFetcher struct {
	Inner *manifest.Fetcher
}

func (m ManifestFetcher) Fetch(ctx context.Context, source store.Source, _ []string) ([]fetch.Document, error) {
	includeOptional := source.Options != nil && source.Options.IncludeOptional
	return m.Inner.FetchAll(ctx, source.BaseURL, includeOptional)
}

// CrawlFetcher adapts crawl.Crawler to the Fetcher interface.
type CrawlFetcher struct {
	Inner *crawl.Crawler
}

func (c CrawlFetcher) Fetch(ctx context.Context, source store.Source, cachedURLs []string) ([]fetch.Document, error) {
	opts := crawl.Options{CachedURLs: cachedURLs}
	if source.Options != nil {
		opts.CrawlLimit = source.Options.CrawlLimit
		opts.IncludePaths = source.Options.IncludePaths
		opts.ExcludePaths = source.Options.ExcludePaths
	}
	return c.Inner.Fetch(ctx, source.BaseURL, opts)
}
