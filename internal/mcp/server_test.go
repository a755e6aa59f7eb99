package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdocs-mcp/airdocs/internal/config"
	"github.com/airdocs-mcp/airdocs/internal/store"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore("", store.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s, err := NewServer(st, config.NewConfig())
	require.NoError(t, err)
	return s, st
}

func seedDocs(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()

	docs := []*store.Document{
		{
			Source:      store.SourceCore,
			Path:        "core-concepts/dags.rst",
			Title:       "DAGs",
			Description: "Directed acyclic graphs.",
			Section:     "Core Concepts",
			Content:     "A DAG is a collection of tasks organized with dependencies.",
			URL:         "https://airflow.apache.org/docs/apache-airflow/stable/core-concepts/dags.html",
		},
		{
			Source:  store.SourceCore,
			Path:    "administration/security.rst",
			Title:   "Security",
			Section: "Administration",
			Content: "Securing the Airflow webserver and database.",
			URL:     "https://airflow.apache.org/docs/apache-airflow/stable/administration/security.html",
		},
		{
			Source:  store.SourceClient,
			Path:    "dag-api.md",
			Title:   "DAG API",
			Section: "Root",
			Content: "List DAGs with the Python client.",
			URL:     "https://airflow.apache.org/docs/apache-airflow-client/dag-api.html",
		},
	}
	for _, doc := range docs {
		require.NoError(t, st.Upsert(ctx, doc))
	}
}

func TestNewServerRequiresStore(t *testing.T) {
	_, err := NewServer(nil, nil)
	require.Error(t, err)
}

func TestServerListTools(t *testing.T) {
	s, _ := newTestServer(t)

	tools := s.ListTools()
	require.Len(t, tools, 4)

	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}
	assert.Equal(t, []string{
		"search_documentation",
		"read_documentation",
		"get_sections",
		"get_statistics",
	}, names)
}

func TestSearchHandler(t *testing.T) {
	s, st := newTestServer(t)
	seedDocs(t, st)

	result, output, err := s.searchHandler(context.Background(), nil, SearchInput{Query: "dag"})
	require.NoError(t, err)
	require.NotEmpty(t, output.Results)
	assert.Greater(t, output.Results[0].Score, 0.0)
	assert.NotEmpty(t, output.Results[0].Path)
	require.NotNil(t, result)
}

func TestSearchHandlerSourceFilter(t *testing.T) {
	s, st := newTestServer(t)
	seedDocs(t, st)

	_, output, err := s.searchHandler(context.Background(), nil,
		SearchInput{Query: "dag", Source: store.SourceClient})
	require.NoError(t, err)
	require.Len(t, output.Results, 1)
	assert.Equal(t, store.SourceClient, output.Results[0].Source)
}

func TestSearchHandlerValidation(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, _, err := s.searchHandler(ctx, nil, SearchInput{Query: "   "})
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)

	_, _, err = s.searchHandler(ctx, nil, SearchInput{Query: "dag", Source: "bogus"})
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestSearchHandlerLimitClamped(t *testing.T) {
	s, st := newTestServer(t)
	seedDocs(t, st)

	// A limit beyond the maximum must not fail, just clamp.
	_, output, err := s.searchHandler(context.Background(), nil,
		SearchInput{Query: "dag", Limit: 500})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(output.Results), maxSearchLimit)
}

func TestReadHandler(t *testing.T) {
	s, st := newTestServer(t)
	seedDocs(t, st)
	ctx := context.Background()

	result, output, err := s.readHandler(ctx, nil, ReadInput{
		Source: store.SourceCore,
		Path:   "core-concepts/dags.rst",
	})
	require.NoError(t, err)
	assert.Equal(t, "DAGs", output.Title)
	assert.Contains(t, output.Content, "collection of tasks")
	require.NotNil(t, result)

	// Second read is served from the cache.
	_, output, err = s.readHandler(ctx, nil, ReadInput{
		Source: store.SourceCore,
		Path:   "core-concepts/dags.rst",
	})
	require.NoError(t, err)
	assert.Equal(t, "DAGs", output.Title)
}

func TestReadHandlerNotFound(t *testing.T) {
	s, st := newTestServer(t)
	seedDocs(t, st)

	_, _, err := s.readHandler(context.Background(), nil, ReadInput{
		Source: store.SourceCore,
		Path:   "no/such.rst",
	})
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeDocumentNotFound, mcpErr.Code)
}

func TestReadHandlerValidation(t *testing.T) {
	s, _ := newTestServer(t)

	_, _, err := s.readHandler(context.Background(), nil, ReadInput{Source: "", Path: ""})
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestSectionsHandler(t *testing.T) {
	s, st := newTestServer(t)
	seedDocs(t, st)
	ctx := context.Background()

	_, output, err := s.sectionsHandler(ctx, nil, SectionsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Administration", "Core Concepts", "Root"}, output.Sections)

	_, output, err = s.sectionsHandler(ctx, nil, SectionsInput{Source: store.SourceClient})
	require.NoError(t, err)
	assert.Equal(t, []string{"Root"}, output.Sections)
}

func TestStatsHandler(t *testing.T) {
	s, st := newTestServer(t)
	seedDocs(t, st)

	_, output, err := s.statsHandler(context.Background(), nil, StatsInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, output.Total)
	assert.Equal(t, 2, output.Sources[store.SourceCore])
	assert.Equal(t, 1, output.Sources[store.SourceClient])
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0, 10, 1, 50))
	assert.Equal(t, 10, clampLimit(-3, 10, 1, 50))
	assert.Equal(t, 25, clampLimit(25, 10, 1, 50))
	assert.Equal(t, 50, clampLimit(500, 10, 1, 50))
}

func TestServeUnknownTransport(t *testing.T) {
	s, _ := newTestServer(t)
	err := s.Serve(context.Background(), "sse")
	require.Error(t, err)
}
