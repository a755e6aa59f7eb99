package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdocs-mcp/airdocs/internal/store"
)

// seedDB creates a populated index in a temp dir and returns its path.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airdocs.db")

	st, err := store.NewSQLiteStore(path, store.DefaultOptions())
	require.NoError(t, err)
	defer st.Close()

	docs := []*store.Document{
		{
			Source:      store.SourceCore,
			Path:        "core-concepts/dags.rst",
			Title:       "DAGs",
			Description: "Directed acyclic graphs.",
			Section:     "Core Concepts",
			Content:     "A DAG is a collection of tasks with dependencies.",
			URL:         "https://airflow.apache.org/docs/apache-airflow/stable/core-concepts/dags.html",
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
		require.NoError(t, st.Upsert(context.Background(), doc))
	}
	return path
}

// runCommand executes the CLI with args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "search", "dag", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 results for query: dag")
	assert.Contains(t, out, "DAGs")
}

func TestSearchCommandSourceFilter(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "search", "dag", "--db", db, "--source", store.SourceClient)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 results")
	assert.Contains(t, out, "DAG API")
}

func TestSearchCommandJSON(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "search", "dag", "--db", db, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"title"`)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "["))
}

func TestSearchCommandMissingIndex(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing.db")

	_, err := runCommand(t, "search", "dag", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documentation index")
}

func TestReadCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "read", store.SourceCore, "core-concepts/dags.rst", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "DAGs")
	assert.Contains(t, out, "collection of tasks")
}

func TestReadCommandNotFound(t *testing.T) {
	db := seedDB(t)

	_, err := runCommand(t, "read", store.SourceCore, "missing.rst", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestSectionsCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "sections", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "- Core Concepts")
	assert.Contains(t, out, "- Root")
}

func TestStatsCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Airflow Core Documentation: 1 documents")
	assert.Contains(t, out, "Total Documents: 2")
}

func TestStatsCommandJSON(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "stats", "--db", db, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 2`)
}

func TestClearCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "clear", "--db", db, "--yes", "--source", store.SourceClient)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed documents from airflow-python-client")

	out, err = runCommand(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Python Client Documentation: 0 documents")
}

func TestClearCommandAborted(t *testing.T) {
	db := seedDB(t)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetArgs([]string{"clear", "--db", db})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Aborted")

	stats, err := runCommand(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stats, "Total Documents: 2")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "airdocs")
}

func TestConfigShowCommand(t *testing.T) {
	db := seedDB(t)

	out, err := runCommand(t, "config", "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "backend: sqlite")
	assert.Contains(t, out, db)
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCommand(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default config")
	assert.FileExists(t, path)

	_, err = runCommand(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestIndexCommandUnknownSource(t *testing.T) {
	db := filepath.Join(t.TempDir(), "airdocs.db")

	_, err := runCommand(t, "index", "--db", db, "--source", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}
