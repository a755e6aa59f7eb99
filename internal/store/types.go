// Package store persists Airflow documentation pages and serves ranked
// full-text search over them.
//
// Two backends implement the Store interface: SQLite FTS5 (default) and
// Bleve. Both keep the document record and its full-text index entry in
// lockstep, so a search never observes a document without its index
// entry or vice versa.
package store

import (
	"context"
	"fmt"
	"time"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
)

// Known documentation sources.
const (
	SourceCore   = "airflow-core"
	SourceClient = "airflow-python-client"
)

// KnownSources lists every recognized source value.
// Stats always reports all of them, zero or not.
var KnownSources = []string{SourceCore, SourceClient}

// DefaultSection is the section assigned to documents at the top of the
// docs tree.
const DefaultSection = "Root"

// DefaultLimit is the result cap applied when a search specifies none.
const DefaultLimit = 10

// Sentinel errors surfaced by Store implementations.
var (
	// ErrInvalidSource is returned for a source outside KnownSources.
	ErrInvalidSource = airerrors.New(airerrors.ErrCodeInvalidSource, "invalid documentation source", nil)

	// ErrQuerySyntax is returned when a query still cannot be parsed by
	// the search backend after sanitization.
	ErrQuerySyntax = airerrors.New(airerrors.ErrCodeQuerySyntax, "query could not be parsed", nil)
)

// Document is a single documentation page.
type Document struct {
	Source      string    `json:"source"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Section     string    `json:"section"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Validate checks the document's invariants before it is persisted.
func (d *Document) Validate() error {
	if !ValidSource(d.Source) {
		return fmt.Errorf("%w: %q (must be one of %v)", ErrInvalidSource, d.Source, KnownSources)
	}
	if d.Path == "" {
		return airerrors.ValidationError("document path must be non-empty", nil)
	}
	if d.Title == "" {
		return airerrors.ValidationError("document title must be non-empty", nil)
	}
	return nil
}

// ID returns the document's identity key, unique across sources.
func (d *Document) ID() string {
	return d.Source + "/" + d.Path
}

// ValidSource reports whether source is one of the recognized values.
func ValidSource(source string) bool {
	for _, s := range KnownSources {
		if s == source {
			return true
		}
	}
	return false
}

// SearchResult is one ranked match. It is ephemeral, never persisted.
type SearchResult struct {
	Source  string  `json:"source"`
	Path    string  `json:"path"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Section string  `json:"section"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// SearchOptions are the optional filters for Search.
type SearchOptions struct {
	// Source restricts matches to one documentation source when non-empty.
	Source string
	// Section restricts matches to one section when non-empty.
	Section string
	// Limit caps the result count. Zero or negative means DefaultLimit.
	Limit int
}

// Stats reports document counts per source plus the total.
type Stats struct {
	Sources map[string]int `json:"sources"`
	Total   int            `json:"total"`
}

// Store is the persistence and search contract shared by both backends.
//
// Upsert replaces the existing row when (source, path) already exists;
// duplicate identity is the normal update path, never an error. Get
// returns (nil, nil) for an absent document. Clear with an empty source
// deletes everything.
type Store interface {
	Upsert(ctx context.Context, doc *Document) error
	Get(ctx context.Context, source, path string) (*Document, error)
	Clear(ctx context.Context, source string) error
	Count(ctx context.Context, source string) (int, error)
	Stats(ctx context.Context) (*Stats, error)
	Sections(ctx context.Context, source string) ([]string, error)
	Search(ctx context.Context, query string, opts SearchOptions) ([]*SearchResult, error)
	Close() error
}

// Options configure snippet rendering, shared by both backends.
type Options struct {
	// MarkStart and MarkEnd delimit matched regions inside snippets.
	MarkStart string
	MarkEnd   string
}

// DefaultOptions returns the standard snippet markers.
func DefaultOptions() Options {
	return Options{MarkStart: "<mark>", MarkEnd: "</mark>"}
}
