package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/airdocs-mcp/airdocs/internal/config"
	"github.com/airdocs-mcp/airdocs/internal/store"
	"github.com/airdocs-mcp/airdocs/pkg/version"
)

// readCacheSize bounds the read_documentation cache. Full documents can
// be large; 128 pages covers a long agent session.
const readCacheSize = 128

// Limits applied to the search tool.
const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// Server is the MCP server bridging AI clients with the documentation
// index.
type Server struct {
	mcp       *mcp.Server
	store     store.Store
	config    *config.Config
	logger    *slog.Logger
	readCache *lru.Cache[string, *store.Document]
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates the MCP server over the given document store.
func NewServer(st store.Store, cfg *config.Config) (*Server, error) {
	if st == nil {
		return nil, errors.New("document store is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	cache, err := lru.New[string, *store.Document](readCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create read cache: %w", err)
	}

	s := &Server{
		store:     st,
		config:    cfg,
		logger:    slog.Default(),
		readCache: cache,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "airdocs",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "airdocs", version.Version
}

// ListTools returns the registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "search_documentation",
			Description: "Search Apache Airflow documentation. Searches both Airflow core documentation and Python client documentation using ranked full-text search. Results include titles, URLs, and highlighted snippets.",
		},
		{
			Name:        "read_documentation",
			Description: "Read the full content of a specific documentation page by its source and path. Use after search_documentation to read the complete text.",
		},
		{
			Name:        "get_sections",
			Description: "List available documentation sections, optionally filtered by source. Useful for narrowing subsequent searches.",
		},
		{
			Name:        "get_statistics",
			Description: "Report how many documents are indexed per documentation source.",
		},
	}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	tools := s.ListTools()
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.searchHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.readHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.sectionsHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[3].Name, Description: tools[3].Description}, s.statsHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", len(tools)))
}

// searchHandler handles the search_documentation tool.
func (s *Server) searchHandler(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query parameter is required and must be non-empty")
	}
	if input.Source != "" && !slices.Contains(store.KnownSources, input.Source) {
		return nil, SearchOutput{}, NewInvalidParamsError(
			fmt.Sprintf("invalid source %q (valid: %s)", input.Source, strings.Join(store.KnownSources, ", ")))
	}

	start := time.Now()
	requestID := generateRequestID()
	limit := clampLimit(input.Limit, defaultSearchLimit, 1, maxSearchLimit)

	s.logger.Info("search started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.String("source", input.Source),
		slog.String("section", input.Section),
		slog.Int("limit", limit))

	results, err := s.store.Search(ctx, input.Query, store.SearchOptions{
		Source:  input.Source,
		Section: input.Section,
		Limit:   limit,
	})
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("search failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, SearchOutput{}, MapError(err)
	}

	s.logger.Info("search completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(results)))

	output := SearchOutput{Results: make([]SearchResultOutput, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, SearchResultOutput{
			Title:   r.Title,
			Source:  r.Source,
			Path:    r.Path,
			Section: r.Section,
			URL:     r.URL,
			Snippet: r.Snippet,
			Score:   r.Score,
		})
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatSearchResults(input.Query, results)},
		},
	}
	return result, output, nil
}

// readHandler handles the read_documentation tool. Documents change
// only when a reindex runs, so full pages are cached for the lifetime
// of the server.
func (s *Server) readHandler(ctx context.Context, req *mcp.CallToolRequest, input ReadInput) (
	*mcp.CallToolResult,
	ReadOutput,
	error,
) {
	if input.Source == "" || input.Path == "" {
		return nil, ReadOutput{}, NewInvalidParamsError("source and path parameters are required")
	}
	if !slices.Contains(store.KnownSources, input.Source) {
		return nil, ReadOutput{}, NewInvalidParamsError(
			fmt.Sprintf("invalid source %q (valid: %s)", input.Source, strings.Join(store.KnownSources, ", ")))
	}

	requestID := generateRequestID()
	cacheKey := input.Source + "/" + input.Path

	doc, cached := s.readCache.Get(cacheKey)
	if !cached {
		var err error
		doc, err = s.store.Get(ctx, input.Source, input.Path)
		if err != nil {
			s.logger.Error("read failed",
				slog.String("request_id", requestID),
				slog.String("document", cacheKey),
				slog.String("error", err.Error()))
			return nil, ReadOutput{}, MapError(err)
		}
		if doc != nil {
			s.readCache.Add(cacheKey, doc)
		}
	}

	if doc == nil {
		return nil, ReadOutput{}, &MCPError{
			Code:    ErrCodeDocumentNotFound,
			Message: fmt.Sprintf("Document not found: %s", cacheKey),
		}
	}

	s.logger.Info("document read",
		slog.String("request_id", requestID),
		slog.String("document", cacheKey),
		slog.Bool("cache_hit", cached))

	output := ReadOutput{
		Title:       doc.Title,
		Source:      doc.Source,
		Section:     doc.Section,
		URL:         doc.URL,
		Description: doc.Description,
		Content:     doc.Content,
	}
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatDocument(doc)},
		},
	}
	return result, output, nil
}

// sectionsHandler handles the get_sections tool.
func (s *Server) sectionsHandler(ctx context.Context, req *mcp.CallToolRequest, input SectionsInput) (
	*mcp.CallToolResult,
	SectionsOutput,
	error,
) {
	if input.Source != "" && !slices.Contains(store.KnownSources, input.Source) {
		return nil, SectionsOutput{}, NewInvalidParamsError(
			fmt.Sprintf("invalid source %q (valid: %s)", input.Source, strings.Join(store.KnownSources, ", ")))
	}

	sections, err := s.store.Sections(ctx, input.Source)
	if err != nil {
		return nil, SectionsOutput{}, MapError(err)
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatSections(input.Source, sections)},
		},
	}
	return result, SectionsOutput{Sections: sections}, nil
}

// statsHandler handles the get_statistics tool.
func (s *Server) statsHandler(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (
	*mcp.CallToolResult,
	StatsOutput,
	error,
) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, MapError(err)
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatStats(stats)},
		},
	}
	return result, StatsOutput{Sources: stats.Sources, Total: stats.Total}, nil
}

// Serve runs the server over the given transport until ctx is done.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server",
		slog.String("transport", transport),
		slog.String("version", version.Version))

	switch transport {
	case "stdio", "":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// clampLimit bounds n to [min, max], substituting def when unset.
func clampLimit(n, def, min, max int) int {
	if n <= 0 {
		n = def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// generateRequestID returns a short random hex ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
