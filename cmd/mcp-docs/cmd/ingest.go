package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcp-docs/mcp-docs/internal/chunk"
	"github.com/mcp-docs/mcp-docs/internal/config"
	"github.com/mcp-docs/mcp-docs/internal/embed"
	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/fetch/crawl"
	"github.com/mcp-docs/mcp-docs/internal/fetch/manifest"
	"github.com/mcp-docs/mcp-docs/internal/ingest"
	"github.com/mcp-docs/mcp-docs/internal/store"
	"github.com/mcp-docs/mcp-docs/internal/synth"
	"github.com/mcp-docs/mcp-docs/internal/ui"
)

type ingestOptions struct {
	sourceType      string
	group           string
	description     string
	includeOptional bool
	crawlLimit      int
	includePaths    []string
	excludePaths    []string
	resume          bool
	dryRun          bool
	plain           bool
}

func newIngestCmd() *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest <name> <base-url>",
		Short: "Fetch, chunk, embed, and store one documentation source",
		Long: `Ingest fetches every document for a source, chunks and embeds the ones
that changed since the last run, and stores the result for search.

Examples:
  mcp-docs ingest golang https://go.dev/llms.txt
  mcp-docs ingest react https://react.dev --type web_crawl --group frontend
  mcp-docs ingest golang https://go.dev/llms.txt --resume
  mcp-docs ingest golang https://go.dev/llms.txt --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.sourceType, "type", store.SourceTypeLinkManifest, "Source type: link_manifest or web_crawl")
	cmd.Flags().StringVar(&opts.group, "group", "", "Group name this source belongs to")
	cmd.Flags().StringVar(&opts.description, "description", "", "Source description (auto-synthesized if omitted)")
	cmd.Flags().BoolVar(&opts.includeOptional, "include-optional", false, "Include entries under an Optional section (link_manifest only)")
	cmd.Flags().IntVar(&opts.crawlLimit, "crawl-limit", 0, "Maximum pages to crawl (web_crawl only)")
	cmd.Flags().StringSliceVar(&opts.includePaths, "include-path", nil, "Path glob to include (web_crawl only, repeatable)")
	cmd.Flags().StringSliceVar(&opts.excludePaths, "exclude-path", nil, "Path glob to exclude (web_crawl only, repeatable)")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Resume from the last incomplete run for this source")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report what would be fetched without writing anything")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Force plain text progress output")

	return cmd
}

func runIngest(ctx context.Context, cmd *cobra.Command, name, baseURL string, opts ingestOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return errs.New(errs.KindConfiguration, err.Error(), err)
	}

	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.Embedding.Dimensions)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err)
	}
	defer st.Close()

	lock := store.NewWriteLock(cfg.DatabaseURL)
	acquired, err := lock.TryLock()
	if err != nil {
		return errs.Wrap(errs.KindStorage, err)
	}
	if !acquired {
		return fmt.Errorf("another ingestion is already writing to %s", cfg.DatabaseURL)
	}
	defer lock.Unlock()

	pipeline := &ingest.Pipeline{
		Store: st,
		Fetchers: map[string]ingest.Fetcher{
			store.SourceTypeLinkManifest: ingest.ManifestFetcher{Inner: manifest.NewFetcher()},
			store.SourceTypeWebCrawl:     ingest.CrawlFetcher{Inner: crawl.NewCrawler(crawl.HTTPConfig{BaseURL: cfg.Crawl.BaseURL, APIKey: cfg.Crawl.APIKey})},
		},
		ChunkOptions: chunk.Options{},
		Embedder: embed.NewHTTPEmbedder(embed.HTTPConfig{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     cfg.Embedding.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}),
		Synth:  synth.Fallback{},
		Logger: slog.Default(),
	}

	src := store.Source{
		Name:        name,
		Type:        opts.sourceType,
		BaseURL:     baseURL,
		GroupName:   opts.group,
		Description: opts.description,
		Options: &store.SourceOptions{
			CrawlLimit:      opts.crawlLimit,
			IncludeOptional: opts.includeOptional,
			IncludePaths:    opts.includePaths,
			ExcludePaths:    opts.excludePaths,
		},
	}

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(), ui.WithForcePlain(opts.plain || opts.dryRun), ui.WithSourceLabel(name)))
	if err := renderer.Start(ctx); err != nil {
		return err
	}
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageFetching, Message: fmt.Sprintf("fetching %s", baseURL)})

	start := time.Now()
	dryRun, result, runErr := pipeline.Run(ctx, src, ingest.Options{Resume: opts.resume, DryRun: opts.dryRun})
	if runErr != nil {
		renderer.AddError(ui.ErrorEvent{URL: baseURL, Err: runErr})
		_ = renderer.Stop()
		return runErr
	}

	if dryRun != nil {
		_ = renderer.Stop()
		return printDryRun(cmd, dryRun)
	}

	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageStoring, Current: result.Processed, Total: result.Processed + result.Skipped + result.Failed})

	chunks := 0
	if stored, err := st.GetSource(ctx, name); err == nil && stored != nil {
		if c, err := st.CountChunksBySource(ctx, stored.ID); err == nil {
			chunks = c
		}
	}

	renderer.Complete(ui.CompletionStats{
		Documents: result.Processed,
		Chunks:    chunks,
		Duration:  time.Since(start),
		Errors:    result.Failed,
		Embedder:  ui.EmbedderInfo{Provider: cfg.Embedding.Provider, Model: cfg.Embedding.Model, Dimensions: cfg.Embedding.Dimensions},
	})
	return renderer.Stop()
}

func printDryRun(cmd *cobra.Command, result *ingest.DryRunResult) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
