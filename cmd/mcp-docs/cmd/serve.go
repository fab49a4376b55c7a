package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcp-docs/mcp-docs/internal/config"
	"github.com/mcp-docs/mcp-docs/internal/embed"
	"github.com/mcp-docs/mcp-docs/internal/embedcache"
	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/mcpserver"
	"github.com/mcp-docs/mcp-docs/internal/search"
	"github.com/mcp-docs/mcp-docs/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Serve registers one search tool per ingested source and one per group,
then serves tool calls over stdio until the client disconnects.

Run 'mcp-docs ingest' first — tools are derived from the store at startup,
so a source added after the server starts needs a restart to appear.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
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
		Logger: slog.Default(),
	}

	srv, err := mcpserver.NewServer(ctx, st, svc, slog.Default())
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}
