package mcp

import (
	"fmt"
	"strings"

	"github.com/airdocs-mcp/airdocs/internal/store"
)

// sourceDisplayNames maps source identifiers to their display form.
var sourceDisplayNames = map[string]string{
	store.SourceCore:   "Airflow Core",
	store.SourceClient: "Python Client",
}

func displaySource(source string) string {
	if name, ok := sourceDisplayNames[source]; ok {
		return name
	}
	return source
}

// FormatSearchResults renders search results as markdown text.
func FormatSearchResults(query string, results []*store.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %s", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results for query: %s\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, FormatSearchResult(r))
	}
	return strings.TrimSpace(sb.String())
}

// FormatSearchResult renders one result: title, source, section, score,
// URL, and the highlighted snippet.
func FormatSearchResult(r *store.SearchResult) string {
	return fmt.Sprintf("**%s** (%s)\nSection: %s\nScore: %.2f\nURL: %s\n\n%s\n",
		r.Title, displaySource(r.Source), r.Section, r.Score, r.URL, r.Snippet)
}

// FormatDocument renders a full document page with its metadata header.
func FormatDocument(doc *store.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	fmt.Fprintf(&sb, "**Source:** %s\n", doc.Source)
	fmt.Fprintf(&sb, "**Section:** %s\n", doc.Section)
	fmt.Fprintf(&sb, "**URL:** %s\n\n", doc.URL)
	if doc.Description != "" {
		fmt.Fprintf(&sb, "**Description:** %s\n\n", doc.Description)
	}
	sb.WriteString("---\n\n")
	sb.WriteString(doc.Content)
	return sb.String()
}

// FormatSections renders the section list, optionally labeled with the
// source it was filtered by.
func FormatSections(source string, sections []string) string {
	if len(sections) == 0 {
		return "No sections found"
	}

	sourceDisplay := ""
	if source != "" {
		sourceDisplay = fmt.Sprintf(" (%s)", source)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Available sections%s:\n\n", sourceDisplay)
	for _, section := range sections {
		fmt.Fprintf(&sb, "- %s\n", section)
	}
	return strings.TrimSpace(sb.String())
}

// FormatStats renders document counts per source.
func FormatStats(stats *store.Stats) string {
	var sb strings.Builder
	sb.WriteString("Airflow Documentation Statistics\n\n")
	fmt.Fprintf(&sb, "Airflow Core Documentation: %d documents\n", stats.Sources[store.SourceCore])
	fmt.Fprintf(&sb, "Python Client Documentation: %d documents\n", stats.Sources[store.SourceClient])
	fmt.Fprintf(&sb, "Total Documents: %d\n", stats.Total)
	return sb.String()
}
