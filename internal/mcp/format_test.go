package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airdocs-mcp/airdocs/internal/store"
)

func TestFormatSearchResults(t *testing.T) {
	results := []*store.SearchResult{
		{
			Title:   "DAGs",
			Source:  store.SourceCore,
			Section: "Core Concepts",
			Score:   4.25,
			URL:     "https://example.com/dags.html",
			Snippet: "A <mark>DAG</mark> is a collection of tasks.",
		},
	}

	out := FormatSearchResults("dag", results)
	assert.Contains(t, out, "Found 1 results for query: dag")
	assert.Contains(t, out, "1. **DAGs** (Airflow Core)")
	assert.Contains(t, out, "Section: Core Concepts")
	assert.Contains(t, out, "Score: 4.25")
	assert.Contains(t, out, "URL: https://example.com/dags.html")
	assert.Contains(t, out, "<mark>DAG</mark>")
}

func TestFormatSearchResultsEmpty(t *testing.T) {
	out := FormatSearchResults("missing", nil)
	assert.Equal(t, "No results found for query: missing", out)
}

func TestFormatSearchResultUnknownSource(t *testing.T) {
	out := FormatSearchResult(&store.SearchResult{Title: "T", Source: "other"})
	assert.Contains(t, out, "**T** (other)")
}

func TestFormatDocument(t *testing.T) {
	doc := &store.Document{
		Title:       "DAGs",
		Source:      store.SourceCore,
		Section:     "Core Concepts",
		URL:         "https://example.com/dags.html",
		Description: "Directed acyclic graphs.",
		Content:     "Full content here.",
	}

	out := FormatDocument(doc)
	assert.Contains(t, out, "# DAGs")
	assert.Contains(t, out, "**Source:** airflow-core")
	assert.Contains(t, out, "**Description:** Directed acyclic graphs.")
	assert.Contains(t, out, "---\n\nFull content here.")

	doc.Description = ""
	assert.NotContains(t, FormatDocument(doc), "**Description:**")
}

func TestFormatSections(t *testing.T) {
	out := FormatSections("", []string{"Administration", "Core Concepts"})
	assert.Contains(t, out, "Available sections:")
	assert.Contains(t, out, "- Administration")
	assert.Contains(t, out, "- Core Concepts")

	out = FormatSections(store.SourceCore, []string{"Root"})
	assert.Contains(t, out, "Available sections (airflow-core):")

	assert.Equal(t, "No sections found", FormatSections("", nil))
}

func TestFormatStats(t *testing.T) {
	stats := &store.Stats{
		Sources: map[string]int{
			store.SourceCore:   120,
			store.SourceClient: 30,
		},
		Total: 150,
	}

	out := FormatStats(stats)
	assert.Contains(t, out, "Airflow Core Documentation: 120 documents")
	assert.Contains(t, out, "Python Client Documentation: 30 documents")
	assert.Contains(t, out, "Total Documents: 150")
}
