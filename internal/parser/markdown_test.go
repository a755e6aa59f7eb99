package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdocs-mcp/airdocs/internal/store"
)

const sampleMarkdown = `---
title: DAG API
description: Working with DAG endpoints.
---

# DAG API

Use the [client](https://example.com/client) to list DAGs.

<!-- internal note -->
<div class="warning">raw html</div>

` + "```python\nclient.get_dags()\n```" + `

Inline ` + "`code`" + ` is removed, {{ page.var }} and {% raw %} too.
`

func TestMarkdownParserParseFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dag-api.md", sampleMarkdown)

	p := NewMarkdownParser(store.SourceClient, "https://airflow.apache.org/docs/apache-airflow-client")
	doc, err := p.ParseFile(path, dir)
	require.NoError(t, err)

	assert.Equal(t, store.SourceClient, doc.Source)
	assert.Equal(t, "dag-api.md", doc.Path)
	assert.Equal(t, "DAG API", doc.Title)
	assert.Equal(t, "Working with DAG endpoints.", doc.Description)
	assert.Equal(t, "Root", doc.Section)
	assert.Equal(t, "https://airflow.apache.org/docs/apache-airflow-client/dag-api.html", doc.URL)

	assert.Contains(t, doc.Content, "Use the client to list DAGs.")
	assert.Contains(t, doc.Content, "raw html")
	assert.NotContains(t, doc.Content, "client.get_dags")
	assert.NotContains(t, doc.Content, "internal note")
	assert.NotContains(t, doc.Content, "page.var")
	assert.NotContains(t, doc.Content, "{%")
	assert.NotContains(t, doc.Content, "#")
}

func TestMarkdownParserNoFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guides/quick_start.md", "# Quick Start\n\nInstall the client first.\n")

	p := NewMarkdownParser(store.SourceClient, "https://example.com")
	doc, err := p.ParseFile(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "Quick Start", doc.Title)
	assert.Empty(t, doc.Description)
	assert.Equal(t, "Guides", doc.Section)
	assert.Contains(t, doc.Content, "Install the client first.")
}

func TestMarkdownParserFallbackTitle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "release-notes.md", "No headings here, just text.\n")

	p := NewMarkdownParser(store.SourceClient, "https://example.com")
	doc, err := p.ParseFile(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "Release Notes", doc.Title)
}

func TestMarkdownParserMalformedFrontmatter(t *testing.T) {
	dir := t.TempDir()
	src := "---\ntitle: [unclosed\n---\n\nBody text.\n"
	path := writeFile(t, dir, "broken.md", src)

	p := NewMarkdownParser(store.SourceClient, "https://example.com")
	doc, err := p.ParseFile(path, dir)
	require.NoError(t, err)

	// Malformed frontmatter falls back to treating the whole file as body.
	assert.Equal(t, "Broken", doc.Title)
	assert.Contains(t, doc.Content, "Body text.")
}

func TestSplitFrontmatter(t *testing.T) {
	meta, body := splitFrontmatter("---\ntitle: T\ndescription: D\n---\nbody")
	assert.Equal(t, "T", meta.Title)
	assert.Equal(t, "D", meta.Description)
	assert.Equal(t, "body", body)

	meta, body = splitFrontmatter("plain body")
	assert.Empty(t, meta.Title)
	assert.Equal(t, "plain body", body)
}
