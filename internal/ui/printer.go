package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/airdocs-mcp/airdocs/internal/store"
)

// Printer writes command output. Color is decided once at construction
// from the destination writer.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter creates a printer for w, styled only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    w,
		styles: GetStyles(!IsTerminal(w)),
	}
}

// NewPlainPrinter creates a printer that never emits color.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    w,
		styles: NoColorStyles(),
	}
}

// SearchResults renders ranked search hits.
func (p *Printer) SearchResults(query string, results []*store.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintf(p.out, "No results found for query: %s\n", query)
		return
	}

	fmt.Fprintln(p.out, p.styles.Header.Render(
		fmt.Sprintf("Found %d results for query: %s", len(results), query)))
	fmt.Fprintln(p.out)

	for i, r := range results {
		fmt.Fprintf(p.out, "%d. %s %s\n",
			i+1,
			p.styles.Title.Render(r.Title),
			p.styles.Dim.Render(fmt.Sprintf("(%s, %s)", r.Source, r.Section)))
		fmt.Fprintf(p.out, "   %s\n", p.styles.Score.Render(fmt.Sprintf("score: %.2f", r.Score)))
		fmt.Fprintf(p.out, "   %s\n", p.styles.URL.Render(r.URL))
		if r.Snippet != "" {
			fmt.Fprintf(p.out, "   %s\n", r.Snippet)
		}
		fmt.Fprintln(p.out)
	}
}

// Document renders one full documentation page.
func (p *Printer) Document(doc *store.Document) {
	fmt.Fprintln(p.out, p.styles.Header.Render(doc.Title))
	fmt.Fprintf(p.out, "%s %s\n", p.styles.Label.Render("Source:"), doc.Source)
	fmt.Fprintf(p.out, "%s %s\n", p.styles.Label.Render("Section:"), doc.Section)
	fmt.Fprintf(p.out, "%s %s\n", p.styles.Label.Render("URL:"), p.styles.URL.Render(doc.URL))
	if doc.Description != "" {
		fmt.Fprintf(p.out, "%s %s\n", p.styles.Label.Render("Description:"), doc.Description)
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, doc.Content)
}

// Sections renders the section list.
func (p *Printer) Sections(source string, sections []string) {
	if len(sections) == 0 {
		fmt.Fprintln(p.out, "No sections found")
		return
	}

	header := "Available sections"
	if source != "" {
		header += fmt.Sprintf(" (%s)", source)
	}
	fmt.Fprintln(p.out, p.styles.Header.Render(header+":"))
	for _, section := range sections {
		fmt.Fprintf(p.out, "  - %s\n", section)
	}
}

// Stats renders per-source document counts.
func (p *Printer) Stats(stats *store.Stats) {
	fmt.Fprintln(p.out, p.styles.Header.Render("Airflow Documentation Statistics"))
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%s %d documents\n",
		p.styles.Label.Render("Airflow Core Documentation:"), stats.Sources[store.SourceCore])
	fmt.Fprintf(p.out, "%s %d documents\n",
		p.styles.Label.Render("Python Client Documentation:"), stats.Sources[store.SourceClient])
	fmt.Fprintf(p.out, "%s %d\n",
		p.styles.Label.Render("Total Documents:"), stats.Total)
}

// IndexSummary renders the outcome of an indexing run.
func (p *Printer) IndexSummary(counts map[string]int, total int, elapsed string) {
	fmt.Fprintln(p.out, p.styles.Success.Render("Indexing complete"))
	for _, src := range store.KnownSources {
		if n, ok := counts[src]; ok {
			fmt.Fprintf(p.out, "  %s: %d documents\n", src, n)
		}
	}
	fmt.Fprintf(p.out, "  total: %d documents in %s\n", total, elapsed)
}

// Success prints a highlighted confirmation line.
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, p.styles.Success.Render(msg))
}

// Error prints a highlighted error line with any suggestion attached.
func (p *Printer) Error(msg, suggestion string) {
	fmt.Fprintln(p.out, p.styles.Error.Render("Error: "+msg))
	if suggestion != "" {
		fmt.Fprintln(p.out, p.styles.Dim.Render("  "+suggestion))
	}
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Table renders aligned key/value rows.
func (p *Printer) Table(rows [][2]string) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		fmt.Fprintf(p.out, "%s  %s\n",
			p.styles.Label.Render(row[0]+strings.Repeat(" ", width-len(row[0]))),
			row[1])
	}
}
