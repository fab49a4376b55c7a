// Package mcpserver exposes the search service over the Model Context
// Protocol: one tool per source (search_<name>_docs) and one per group
// (search_<group>_docs), registered dynamically from the Store at
// startup rather than hand-written per source.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/search"
	"github.com/mcp-docs/mcp-docs/internal/store"
	"github.com/mcp-docs/mcp-docs/pkg/version"
)

const noResultsMessage = "No results found for this query."

// ToolInfo describes one dynamically registered tool.
type ToolInfo struct {
	Name        string
	Description string
	Kind        string // "source" or "group"
	Target      string // source name or group name
}

// SearchInput is the input schema shared by every registered tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to run against this documentation set"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return, default 5"`
}

// Server bridges an MCP client to a search.Service via a Store-driven
// tool registry.
type Server struct {
	mcp    *mcp.Server
	store  *store.Store
	search *search.Service
	logger *slog.Logger

	tools map[string]ToolInfo
}

// NewServer builds the MCP server and registers every source/group tool
// found in store at construction time. Re-run ingestion changes take
// effect on the next process start, not live.
func NewServer(ctx context.Context, st *store.Store, svc *search.Service, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:  st,
		search: svc,
		logger: logger,
	}

	tools, err := s.ListTools(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err)
	}
	s.tools = make(map[string]ToolInfo, len(tools))
	for _, t := range tools {
		s.tools[t.Name] = t
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "mcp-docs", Version: version.Version}, nil)
	for _, t := range tools {
		mcp.AddTool(s.mcp, &mcp.Tool{Name: t.Name, Description: t.Description}, s.handlerFor(t))
		logger.Debug("registered tool", "name", t.Name, "kind", t.Kind, "target", t.Target)
	}
	logger.Info("mcp tools registered", "count", len(tools))

	return s, nil
}

// ListTools derives the tool set from the store: one search_<name>_docs
// per source, one search_<group>_docs per distinct group_name.
func (s *Server) ListTools(ctx context.Context) ([]ToolInfo, error) {
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	sourceNames := make(map[string]bool, len(sources))
	for _, src := range sources {
		sourceNames[src.Name] = true
	}

	var tools []ToolInfo
	seenGroups := make(map[string]bool)
	for _, src := range sources {
		tools = append(tools, ToolInfo{
			Name:        fmt.Sprintf("search_%s_docs", src.Name),
			Description: sourceDescription(src),
			Kind:        "source",
			Target:      src.Name,
		})
		// Sources shadow groups: a group tool only exists if no source
		// carries that exact name, matching store.IsGroup.
		if src.GroupName != "" && !seenGroups[src.GroupName] && !sourceNames[src.GroupName] {
			seenGroups[src.GroupName] = true
			tools = append(tools, ToolInfo{
				Name:        fmt.Sprintf("search_%s_docs", src.GroupName),
				Description: fmt.Sprintf("Search the %s group of documentation sources.", src.GroupName),
				Kind:        "group",
				Target:      src.GroupName,
			})
		}
	}
	return tools, nil
}

func sourceDescription(src store.Source) string {
	if src.Description != "" {
		return src.Description
	}
	return fmt.Sprintf("Search the %s documentation.", src.Name)
}

// Handle dispatches a tool call by name, independent of the MCP wire
// format — used directly by tests and by the generated mcp.AddTool
// handlers alike.
func (s *Server) Handle(ctx context.Context, name string, query string, limit int) (string, error) {
	t, ok := s.tools[name]
	if !ok {
		return "", methodNotFoundError(name)
	}
	if strings.TrimSpace(query) == "" {
		return "", invalidParamsError("query parameter is required and must be non-empty")
	}

	var out *search.Output
	var err error
	switch t.Kind {
	case "source":
		out, err = s.search.Search(ctx, t.Target, query, limit, 0)
	case "group":
		out, err = s.search.SearchGroup(ctx, t.Target, query, nil, limit, 0)
	default:
		return "", methodNotFoundError(name)
	}
	if err != nil {
		return "", mapError(err)
	}
	return renderMarkdown(out), nil
}

func (s *Server) handlerFor(t ToolInfo) func(ctx context.Context, req *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, any, error) {
		md, err := s.Handle(ctx, t.Name, in.Query, in.Limit)
		if err != nil {
			return nil, nil, err
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: md}}}, nil, nil
	}
}

// renderMarkdown formats a search.Output per the external interface's
// wire format: one "## title\nurl\n\ncontent" block per document, joined
// by a horizontal rule, or a fixed no-results message.
func renderMarkdown(out *search.Output) string {
	if out == nil || len(out.Documents) == 0 {
		return noResultsMessage
	}
	blocks := make([]string, len(out.Documents))
	for i, d := range out.Documents {
		blocks[i] = fmt.Sprintf("## %s\n%s\n\n%s", d.Title, d.URL, d.Content)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// MCPServer returns the underlying SDK server, for Serve's transport.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Serve runs the server over stdio until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting mcp server", "transport", "stdio", "tools", len(s.tools))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("mcp server stopped with error", "error", err)
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}
