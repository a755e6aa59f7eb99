package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
)

// SQLiteStore implements Store using SQLite FTS5.
// WAL mode allows the MCP server and CLI to share the database file.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	opts   Options
	closed bool
}

// Verify interface implementation at compile time
var _ Store = (*SQLiteStore)(nil)

// sqliteTimeLayout is the format CURRENT_TIMESTAMP produces when the
// driver's time.Time value is scanned into a string.
const sqliteTimeLayout = time.RFC3339

// validateSQLiteIntegrity checks that an existing database file is usable
// before opening it for real. Returns nil for a missing file (it will be
// created).
func validateSQLiteIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	return nil
}

// NewSQLiteStore opens (or creates) the document database at path.
// An empty path creates an in-memory store for testing.
func NewSQLiteStore(path string, opts Options) (*SQLiteStore, error) {
	if opts.MarkStart == "" || opts.MarkEnd == "" {
		opts = DefaultOptions()
	}

	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, airerrors.StorageError("failed to create database directory", dir, err)
		}

		if validErr := validateSQLiteIntegrity(path); validErr != nil {
			slog.Warn("document_db_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			// The database is a rebuildable cache of upstream docs, so
			// clearing it is safe. Reindex restores it.
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, airerrors.StorageError("corrupted database cannot be removed", path, removeErr)
			}
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")

			slog.Info("document_db_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reindex"))
		}

		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, airerrors.StorageError("failed to open database", path, err)
	}

	// Single connection: serializes writers and keeps :memory: databases
	// from silently forking per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// DSN params may be ignored by modernc.org/sqlite; set pragmas explicitly.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, airerrors.StorageError("failed to set pragma", path, err)
		}
	}

	s := &SQLiteStore{
		db:   db,
		path: path,
		opts: opts,
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, airerrors.StorageError("failed to initialize schema", path, err)
	}

	return s, nil
}

// initSchema creates the documents table, the FTS5 index, and the
// triggers that keep them in lockstep. Triggers fire inside the same
// transaction as the row mutation, so document and index commit
// together or not at all.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		path TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		section TEXT,
		url TEXT,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source, path)
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
		title,
		description,
		content,
		content='documents',
		content_rowid='id',
		tokenize='porter unicode61'
	);

	CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
		INSERT INTO documents_fts(rowid, title, description, content)
		VALUES (new.id, new.title, new.description, new.content);
	END;

	CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
		INSERT INTO documents_fts(documents_fts, rowid, title, description, content)
		VALUES ('delete', old.id, old.title, old.description, old.content);
	END;

	CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
		INSERT INTO documents_fts(documents_fts, rowid, title, description, content)
		VALUES ('delete', old.id, old.title, old.description, old.content);
		INSERT INTO documents_fts(rowid, title, description, content)
		VALUES (new.id, new.title, new.description, new.content);
	END;

	CREATE INDEX IF NOT EXISTS idx_documents_section ON documents(section);
	CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);
	CREATE INDEX IF NOT EXISTS idx_documents_source_section
		ON documents(source, section);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts a document or replaces the row with the same
// (source, path), refreshing updated_at. The FTS index follows via the
// triggers inside the same statement's transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	section := doc.Section
	if section == "" {
		section = DefaultSection
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (source, path, title, description, section, url, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, path) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			section = excluded.section,
			url = excluded.url,
			content = excluded.content,
			updated_at = CURRENT_TIMESTAMP
	`, doc.Source, doc.Path, doc.Title, nullableString(doc.Description), section, doc.URL, doc.Content)
	if err != nil {
		return airerrors.StorageError("failed to upsert document", s.path, err).
			WithDetail("document", doc.ID())
	}
	return nil
}

// Get retrieves a document by its (source, path) identity.
// Absence is a normal outcome: (nil, nil).
func (s *SQLiteStore) Get(ctx context.Context, source, path string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT source, path, title, description, section, url, content, created_at, updated_at
		FROM documents WHERE source = ? AND path = ?
	`, source, path)

	var doc Document
	var description sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&doc.Source, &doc.Path, &doc.Title, &description,
		&doc.Section, &doc.URL, &doc.Content, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, airerrors.StorageError("failed to read document", s.path, err)
	}

	doc.Description = description.String
	doc.CreatedAt = parseSQLiteTime(createdAt)
	doc.UpdatedAt = parseSQLiteTime(updatedAt)
	return &doc, nil
}

// Clear deletes all documents, or only those of the given source.
// The delete triggers purge the matching FTS entries in the same
// transaction.
func (s *SQLiteStore) Clear(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	var err error
	if source != "" {
		_, err = s.db.ExecContext(ctx, "DELETE FROM documents WHERE source = ?", source)
	} else {
		_, err = s.db.ExecContext(ctx, "DELETE FROM documents")
	}
	if err != nil {
		return airerrors.StorageError("failed to clear documents", s.path, err)
	}
	return nil
}

// Count returns the number of stored documents, optionally per source.
func (s *SQLiteStore) Count(ctx context.Context, source string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	var row *sql.Row
	if source != "" {
		row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE source = ?", source)
	} else {
		row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents")
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, airerrors.StorageError("failed to count documents", s.path, err)
	}
	return count, nil
}

// Stats returns per-source document counts. Every known source is
// present in the result, zero or not, plus the total.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*) AS count
		FROM documents
		GROUP BY source
	`)
	if err != nil {
		return nil, airerrors.StorageError("failed to query stats", s.path, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, airerrors.StorageError("failed to scan stats row", s.path, err)
		}
		counts[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, airerrors.StorageError("failed to read stats", s.path, err)
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
func (s *SQLiteStore) Sections(ctx context.Context, source string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	var rows *sql.Rows
	var err error
	if source != "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT DISTINCT section FROM documents WHERE source = ? ORDER BY section", source)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT DISTINCT section FROM documents ORDER BY section")
	}
	if err != nil {
		return nil, airerrors.StorageError("failed to query sections", s.path, err)
	}
	defer rows.Close()

	var sections []string
	for rows.Next() {
		var section string
		if err := rows.Scan(&section); err != nil {
			return nil, airerrors.StorageError("failed to scan section", s.path, err)
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, airerrors.StorageError("failed to read sections", s.path, err)
	}
	sort.Strings(sections)
	return sections, nil
}

// Search executes ranked full-text search.
//
// The query is sanitized first, so FTS5 never sees raw operator syntax.
// bm25() weights title 5.0, description 2.0, content 1.0; FTS5 returns
// negative values where lower is better, so results are ordered
// ascending and the score is exposed as its absolute value.
func (s *SQLiteStore) Search(ctx context.Context, query string, opts SearchOptions) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	if strings.TrimSpace(query) == "" {
		return []*SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	sanitized := SanitizeQuery(query)

	sqlQuery := `
		SELECT
			d.source,
			d.path,
			d.title,
			d.url,
			d.section,
			snippet(documents_fts, 2, ?, ?, '...', 64) AS snippet,
			bm25(documents_fts, 5.0, 2.0, 1.0) AS score
		FROM documents_fts
		JOIN documents d ON documents_fts.rowid = d.id
		WHERE documents_fts MATCH ?
	`
	args := []any{s.opts.MarkStart, s.opts.MarkEnd, sanitized}

	if opts.Source != "" {
		sqlQuery += " AND d.source = ?"
		args = append(args, opts.Source)
	}
	if opts.Section != "" {
		sqlQuery += " AND d.section = ?"
		args = append(args, opts.Section)
	}

	sqlQuery += " ORDER BY score, d.id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		if isQuerySyntaxError(err) {
			return nil, fmt.Errorf("%w: %v", ErrQuerySyntax, err)
		}
		return nil, airerrors.StorageError("search failed", s.path, err)
	}
	defer rows.Close()

	results := []*SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Source, &r.Path, &r.Title, &r.URL, &r.Section, &r.Snippet, &r.Score); err != nil {
			return nil, airerrors.StorageError("failed to scan search result", s.path, err)
		}
		// BM25 returns negative scores; expose higher-is-better.
		if r.Score < 0 {
			r.Score = -r.Score
		}
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		// The driver reports MATCH parse errors on Next, not on Query.
		if isQuerySyntaxError(err) {
			return nil, fmt.Errorf("%w: %v", ErrQuerySyntax, err)
		}
		return nil, airerrors.StorageError("search failed", s.path, err)
	}
	return results, nil
}

// Close closes the store. Idempotent.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path ("" for in-memory stores).
func (s *SQLiteStore) Path() string {
	return s.path
}

// isQuerySyntaxError reports whether an FTS5 MATCH failed to parse the
// query. Sanitization should make this unreachable; surfaced, not ignored.
func isQuerySyntaxError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "fts5") || strings.Contains(msg, "syntax error")
}

// nullableString maps "" to NULL so the description column stays
// genuinely optional.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// parseSQLiteTime parses a CURRENT_TIMESTAMP value; zero time on failure.
func parseSQLiteTime(s string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
