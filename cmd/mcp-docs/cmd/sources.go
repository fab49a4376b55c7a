package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mcp-docs/mcp-docs/internal/config"
	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/store"
)

func newSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List and manage ingested sources",
	}
	cmd.AddCommand(newSourcesListCmd())
	cmd.AddCommand(newSourcesRemoveCmd())
	cmd.AddCommand(newSourcesRemoveGroupCmd())
	return cmd
}

func newSourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSourcesList(cmd.Context(), cmd)
		},
	}
}

func newSourcesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a source and its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSourcesRemove(cmd.Context(), cmd, args[0])
		},
	}
}

func newSourcesRemoveGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-group <name>",
		Short: "Remove every source belonging to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSourcesRemoveGroup(cmd.Context(), cmd, args[0])
		},
	}
}

func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errs.New(errs.KindConfiguration, err.Error(), err)
	}
	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err)
	}
	return st, nil
}

func runSourcesList(ctx context.Context, cmd *cobra.Command) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sources, err := st.ListSources(ctx)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err)
	}
	if len(sources) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No sources ingested yet.")
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tGROUP\tBASE URL\tLAST INGESTED")
	for _, src := range sources {
		lastIngested := "never"
		if src.LastIngestedAt != nil {
			lastIngested = src.LastIngestedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", src.Name, src.Type, src.GroupName, src.BaseURL, lastIngested)
	}
	return tw.Flush()
}

func runSourcesRemove(ctx context.Context, cmd *cobra.Command, name string) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	removed, err := st.RemoveSource(ctx, name)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err)
	}
	if !removed {
		return errs.NotFound("source", name)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed source %q.\n", name)
	return err
}

func runSourcesRemoveGroup(ctx context.Context, cmd *cobra.Command, name string) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := st.RemoveGroup(ctx, name)
	if err != nil {
		return errs.Wrap(errs.KindStorage, err)
	}
	if count == 0 {
		return errs.NotFound("group", name)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d source(s) from group %q.\n", count, name)
	return err
}
