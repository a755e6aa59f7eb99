package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	_ "github.com/blevesearch/bleve/v2/search/highlight/highlighter/html"
	"github.com/blevesearch/bleve/v2/search/query"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
)

// Field boosts matching the bm25() column weights of the SQLite backend.
const (
	boostTitle       = 5.0
	boostDescription = 2.0
	boostContent     = 1.0
)

// BleveStore implements Store using Bleve v2. It exists for
// environments where a single on-disk SQLite file is unwanted, and to
// keep both backends honest against the same Store contract.
type BleveStore struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	opts   Options
	closed bool
}

var _ Store = (*BleveStore)(nil)

// bleveDocument is the indexed document shape. All fields are stored so
// hits can be materialized without a second lookup.
type bleveDocument struct {
	Source      string `json:"source"`
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Section     string `json:"section"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// validateBleveIntegrity checks that an existing index directory is
// openable before use. Returns nil for a missing directory.
func validateBleveIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}

	return nil
}

// isBleveCorruptionError checks if an error indicates index corruption.
func isBleveCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unexpected end of JSON") ||
		strings.Contains(errStr, "error parsing mapping JSON") ||
		strings.Contains(errStr, "failed to load segment") ||
		strings.Contains(errStr, "error opening bolt") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// NewBleveStore opens (or creates) a Bleve index directory at path.
// An empty path creates an in-memory store for testing.
func NewBleveStore(path string, opts Options) (*BleveStore, error) {
	if opts.MarkStart == "" || opts.MarkEnd == "" {
		opts = DefaultOptions()
	}

	indexMapping := createDocumentMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		dir := filepath.Dir(path)
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, airerrors.StorageError("failed to create index directory", dir, mkErr)
		}

		if validErr := validateBleveIntegrity(path); validErr != nil {
			slog.Warn("bleve_index_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, airerrors.StorageError("corrupted index cannot be removed", path, removeErr)
			}
			slog.Info("bleve_index_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reindex"))
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		} else if err != nil && isBleveCorruptionError(err) {
			slog.Warn("bleve_index_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))

			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, airerrors.StorageError("corrupted index cannot be cleared", path, removeErr)
			}
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, airerrors.StorageError("failed to create/open index", path, err)
	}

	return &BleveStore{
		index: idx,
		path:  path,
		opts:  opts,
	}, nil
}

// createDocumentMapping builds the index mapping. Text fields use the
// English analyzer (stemming comparable to FTS5's porter tokenizer);
// identity fields use the keyword analyzer so filters match exactly.
func createDocumentMapping() *mapping.IndexMappingImpl {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = en.AnalyzerName
	textField.Store = true

	keywordField := bleve.NewKeywordFieldMapping()
	keywordField.Store = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("description", textField)
	docMapping.AddFieldMappingsAt("content", textField)
	docMapping.AddFieldMappingsAt("source", keywordField)
	docMapping.AddFieldMappingsAt("path", keywordField)
	docMapping.AddFieldMappingsAt("section", keywordField)
	docMapping.AddFieldMappingsAt("url", keywordField)
	docMapping.AddFieldMappingsAt("created_at", keywordField)
	docMapping.AddFieldMappingsAt("updated_at", keywordField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = en.AnalyzerName
	return indexMapping
}

// Upsert indexes a document under its (source, path) identity. Bleve
// replaces an existing document with the same ID, which gives the same
// idempotence as the SQLite ON CONFLICT clause.
func (b *BleveStore) Upsert(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("store is closed")
	}

	section := doc.Section
	if section == "" {
		section = DefaultSection
	}

	now := time.Now().UTC().Format(sqliteTimeLayout)
	created := now
	if existing, err := b.index.Document(doc.ID()); err == nil && existing != nil {
		if prev := b.storedField(doc.ID(), "created_at"); prev != "" {
			created = prev
		}
	}

	bdoc := bleveDocument{
		Source:      doc.Source,
		Path:        doc.Path,
		Title:       doc.Title,
		Description: doc.Description,
		Section:     section,
		URL:         doc.URL,
		Content:     doc.Content,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	if err := b.index.Index(doc.ID(), bdoc); err != nil {
		return airerrors.StorageError("failed to index document", b.path, err).
			WithDetail("document", doc.ID())
	}
	return nil
}

// storedField fetches one stored field of an indexed document.
func (b *BleveStore) storedField(id, field string) string {
	q := query.NewDocIDQuery([]string{id})
	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{field}
	res, err := b.index.Search(req)
	if err != nil || len(res.Hits) == 0 {
		return ""
	}
	if v, ok := res.Hits[0].Fields[field].(string); ok {
		return v
	}
	return ""
}

// Get retrieves a document by its (source, path) identity.
// Absence is a normal outcome: (nil, nil).
func (b *BleveStore) Get(ctx context.Context, source, path string) (*Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	id := source + "/" + path
	q := query.NewDocIDQuery([]string{id})
	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{"*"}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, airerrors.StorageError("failed to read document", b.path, err)
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}

	fields := res.Hits[0].Fields
	doc := &Document{
		Source:      stringField(fields, "source"),
		Path:        stringField(fields, "path"),
		Title:       stringField(fields, "title"),
		Description: stringField(fields, "description"),
		Section:     stringField(fields, "section"),
		URL:         stringField(fields, "url"),
		Content:     stringField(fields, "content"),
		CreatedAt:   parseSQLiteTime(stringField(fields, "created_at")),
		UpdatedAt:   parseSQLiteTime(stringField(fields, "updated_at")),
	}
	return doc, nil
}

// Clear deletes all documents, or only those of the given source.
func (b *BleveStore) Clear(ctx context.Context, source string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("store is closed")
	}

	ids, err := b.matchingIDs(ctx, source)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := b.index.Batch(batch); err != nil {
		return airerrors.StorageError("failed to clear documents", b.path, err)
	}
	return nil
}

// matchingIDs returns the IDs of all documents, optionally filtered by
// source. Caller holds the lock.
func (b *BleveStore) matchingIDs(ctx context.Context, source string) ([]string, error) {
	var q query.Query
	if source != "" {
		tq := bleve.NewTermQuery(source)
		tq.SetField("source")
		q = tq
	} else {
		q = bleve.NewMatchAllQuery()
	}

	docCount, _ := b.index.DocCount()
	req := bleve.NewSearchRequestOptions(q, int(docCount), 0, false)
	req.Fields = []string{}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, airerrors.StorageError("failed to enumerate documents", b.path, err)
	}

	ids := make([]string, len(res.Hits))
	for i, hit := range res.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Count returns the number of stored documents, optionally per source.
func (b *BleveStore) Count(ctx context.Context, source string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, fmt.Errorf("store is closed")
	}

	if source == "" {
		n, err := b.index.DocCount()
		if err != nil {
			return 0, airerrors.StorageError("failed to count documents", b.path, err)
		}
		return int(n), nil
	}

	tq := bleve.NewTermQuery(source)
	tq.SetField("source")
	req := bleve.NewSearchRequestOptions(tq, 0, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return 0, airerrors.StorageError("failed to count documents", b.path, err)
	}
	return int(res.Total), nil
}

// Stats returns per-source document counts via a source facet. Every
// known source appears in the result, zero or not.
func (b *BleveStore) Stats(ctx context.Context) (*Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	req.AddFacet("sources", bleve.NewFacetRequest("source", len(KnownSources)+8))

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, airerrors.StorageError("failed to query stats", b.path, err)
	}

	counts := make(map[string]int)
	if facet, ok := res.Facets["sources"]; ok {
		for _, term := range facet.Terms.Terms() {
			counts[term.Term] = term.Count
		}
	}

	stats := &Stats{Sources: make(map[string]int, len(KnownSources))}
	for _, src := range KnownSources {
		stats.Sources[src] = counts[src]
		stats.Total += counts[src]
	}
	return stats, nil
}

// Sections returns the distinct section names in alphabetical order,
// optionally scoped to one source.
func (b *BleveStore) Sections(ctx context.Context, source string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	var q query.Query
	if source != "" {
		tq := bleve.NewTermQuery(source)
		tq.SetField("source")
		q = tq
	} else {
		q = bleve.NewMatchAllQuery()
	}

	docCount, _ := b.index.DocCount()
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	req.AddFacet("sections", bleve.NewFacetRequest("section", int(docCount)+1))

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, airerrors.StorageError("failed to query sections", b.path, err)
	}

	var sections []string
	if facet, ok := res.Facets["sections"]; ok {
		for _, term := range facet.Terms.Terms() {
			sections = append(sections, term.Term)
		}
	}
	sort.Strings(sections)
	return sections, nil
}

// Search executes ranked full-text search.
//
// Field boosts mirror the SQLite backend's bm25() weights. The query
// string goes through the same sanitizer; a downgraded phrase query is
// run as a MatchPhraseQuery over each field. Bleve scores are already
// higher-is-better, so no sign flip is needed.
func (b *BleveStore) Search(ctx context.Context, queryStr string, opts SearchOptions) ([]*SearchResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("store is closed")
	}

	if strings.TrimSpace(queryStr) == "" {
		return []*SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	phrase := SanitizeQuery(queryStr) != queryStr

	fieldQueries := make([]query.Query, 0, 3)
	for _, fb := range []struct {
		field string
		boost float64
	}{
		{"title", boostTitle},
		{"description", boostDescription},
		{"content", boostContent},
	} {
		if phrase {
			q := bleve.NewMatchPhraseQuery(queryStr)
			q.SetField(fb.field)
			q.SetBoost(fb.boost)
			fieldQueries = append(fieldQueries, q)
		} else {
			q := bleve.NewMatchQuery(queryStr)
			q.SetField(fb.field)
			q.SetBoost(fb.boost)
			fieldQueries = append(fieldQueries, q)
		}
	}

	var finalQuery query.Query = bleve.NewDisjunctionQuery(fieldQueries...)

	filters := make([]query.Query, 0, 2)
	if opts.Source != "" {
		tq := bleve.NewTermQuery(opts.Source)
		tq.SetField("source")
		filters = append(filters, tq)
	}
	if opts.Section != "" {
		tq := bleve.NewTermQuery(opts.Section)
		tq.SetField("section")
		filters = append(filters, tq)
	}
	if len(filters) > 0 {
		finalQuery = bleve.NewConjunctionQuery(append([]query.Query{finalQuery}, filters...)...)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	req.Fields = []string{"source", "path", "title", "url", "section"}
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.AddField("content")

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, airerrors.StorageError("search failed", b.path, err)
	}

	results := make([]*SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &SearchResult{
			Source:  stringField(hit.Fields, "source"),
			Path:    stringField(hit.Fields, "path"),
			Title:   stringField(hit.Fields, "title"),
			URL:     stringField(hit.Fields, "url"),
			Section: stringField(hit.Fields, "section"),
			Score:   hit.Score,
			Snippet: b.snippetFromHit(hit.Fragments),
		}
		results = append(results, r)
	}
	return results, nil
}

// snippetFromHit joins the highlighter's content fragments and rewrites
// the html highlighter's <mark> tags to the configured markers.
func (b *BleveStore) snippetFromHit(fragments map[string][]string) string {
	parts := fragments["content"]
	if len(parts) == 0 {
		return ""
	}
	snippet := strings.Join(parts, "...")
	if b.opts.MarkStart != "<mark>" || b.opts.MarkEnd != "</mark>" {
		snippet = strings.ReplaceAll(snippet, "<mark>", b.opts.MarkStart)
		snippet = strings.ReplaceAll(snippet, "</mark>", b.opts.MarkEnd)
	}
	return snippet
}

// Close closes the store. Idempotent.
func (b *BleveStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

// Path returns the index directory ("" for in-memory stores).
func (b *BleveStore) Path() string {
	return b.path
}

func stringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
