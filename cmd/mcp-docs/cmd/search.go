package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcp-docs/mcp-docs/internal/config"
	"github.com/mcp-docs/mcp-docs/internal/embed"
	"github.com/mcp-docs/mcp-docs/internal/embedcache"
	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/search"
	"github.com/mcp-docs/mcp-docs/internal/store"
)

type searchOptions struct {
	source        string
	group         string
	limit         int
	maxTotalChars int
	format        string // "text" or "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search one ingested source or group",
		Long: `Search runs a query through the cache, vector, and lexical legs and
returns the same fused, materialized documents the MCP tools return.

Examples:
  mcp-docs search "goroutine leak" --source golang
  mcp-docs search "useEffect cleanup" --group frontend --limit 3
  mcp-docs search "context cancellation" --source golang --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "Source name to search")
	cmd.Flags().StringVar(&opts.group, "group", "", "Group name to search (mutually exclusive with --source)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", search.DefaultLimit, "Maximum number of documents to return")
	cmd.Flags().IntVar(&opts.maxTotalChars, "max-total-chars", search.DefaultMaxTotalChars, "Character budget across all returned documents")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	if opts.source == "" && opts.group == "" {
		return errs.New(errs.KindValidation, "one of --source or --group is required", nil)
	}
	if opts.source != "" && opts.group != "" {
		return errs.New(errs.KindValidation, "--source and --group are mutually exclusive", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		return errs.New(errs.KindConfiguration, err.Error(), err)
	}

	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.Embedding.Dimensions)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err)
	}
	defer st.Close()

	svc := &search.Service{
		Store: st,
		Cache: embedcache.New(embedcache.DefaultMaxSize, embedcache.DefaultTTL),
		Embedder: embed.NewHTTPEmbedder(embed.HTTPConfig{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     cfg.Embedding.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}),
	}

	start := time.Now()
	var out *search.Output
	if opts.source != "" {
		out, err = svc.Search(ctx, opts.source, query, opts.limit, opts.maxTotalChars)
	} else {
		out, err = svc.SearchGroup(ctx, opts.group, query, nil, opts.limit, opts.maxTotalChars)
	}
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printSearchText(cmd, out, time.Since(start))
}

func printSearchText(cmd *cobra.Command, out *search.Output, elapsed time.Duration) error {
	w := cmd.OutOrStdout()
	if len(out.Documents) == 0 {
		_, err := fmt.Fprintln(w, "No results found for this query.")
		return err
	}
	for i, doc := range out.Documents {
		if i > 0 {
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}
		fmt.Fprintf(w, "## %s\n%s\n\n%s\n", doc.Title, doc.URL, doc.Content)
	}
	if out.Truncated {
		fmt.Fprintln(w, "\n(truncated to fit the character budget)")
	}
	fmt.Fprintf(w, "\n%d document(s) in %s\n", len(out.Documents), elapsed.Round(time.Millisecond))
	return nil
}
