package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airdocs-mcp/airdocs/internal/store"
)

func TestPrinterSearchResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.SearchResults("dag", []*store.SearchResult{
		{
			Title:   "DAGs",
			Source:  store.SourceCore,
			Section: "Core Concepts",
			Score:   4.2,
			URL:     "https://example.com/dags.html",
			Snippet: "A <mark>DAG</mark> is a collection of tasks.",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Found 1 results for query: dag")
	assert.Contains(t, out, "1. DAGs (airflow-core, Core Concepts)")
	assert.Contains(t, out, "score: 4.20")
	assert.Contains(t, out, "https://example.com/dags.html")
	assert.Contains(t, out, "<mark>DAG</mark>")
}

func TestPrinterSearchResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).SearchResults("missing", nil)
	assert.Equal(t, "No results found for query: missing\n", buf.String())
}

func TestPrinterDocument(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Document(&store.Document{
		Title:       "DAGs",
		Source:      store.SourceCore,
		Section:     "Core Concepts",
		URL:         "https://example.com/dags.html",
		Description: "Directed acyclic graphs.",
		Content:     "Full content.",
	})

	out := buf.String()
	assert.Contains(t, out, "DAGs\n")
	assert.Contains(t, out, "Source: airflow-core")
	assert.Contains(t, out, "Description: Directed acyclic graphs.")
	assert.Contains(t, out, "Full content.")
}

func TestPrinterSections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Sections("", []string{"Administration", "Root"})
	assert.Contains(t, buf.String(), "Available sections:")
	assert.Contains(t, buf.String(), "  - Administration")

	buf.Reset()
	p.Sections(store.SourceCore, []string{"Root"})
	assert.Contains(t, buf.String(), "Available sections (airflow-core):")

	buf.Reset()
	p.Sections("", nil)
	assert.Equal(t, "No sections found\n", buf.String())
}

func TestPrinterStats(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Stats(&store.Stats{
		Sources: map[string]int{store.SourceCore: 10, store.SourceClient: 5},
		Total:   15,
	})

	out := buf.String()
	assert.Contains(t, out, "Airflow Core Documentation: 10 documents")
	assert.Contains(t, out, "Python Client Documentation: 5 documents")
	assert.Contains(t, out, "Total Documents: 15")
}

func TestPrinterIndexSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).IndexSummary(map[string]int{
		store.SourceCore:   100,
		store.SourceClient: 20,
	}, 120, "3.2s")

	out := buf.String()
	assert.Contains(t, out, "Indexing complete")
	assert.Contains(t, out, "airflow-core: 100 documents")
	assert.Contains(t, out, "total: 120 documents in 3.2s")
}

func TestPrinterError(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Error("database not found", "Run 'airdocs index' first")

	out := buf.String()
	assert.Contains(t, out, "Error: database not found")
	assert.Contains(t, out, "Run 'airdocs index' first")
}

func TestPrinterTable(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Table([][2]string{
		{"Backend", "sqlite"},
		{"DB", "/tmp/airdocs.db"},
	})

	out := buf.String()
	assert.Contains(t, out, "Backend  sqlite")
	assert.Contains(t, out, "DB       /tmp/airdocs.db")
}

func TestIsTerminalOnBuffer(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
