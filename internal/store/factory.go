package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend selects the full-text search engine behind a Store.
type Backend string

const (
	// BackendSQLite uses SQLite FTS5 (default). WAL mode permits the
	// MCP server and the CLI to share the database file.
	BackendSQLite Backend = "sqlite"

	// BackendBleve uses Bleve v2. BoltDB holds an exclusive lock, so
	// only one process may have the index open.
	BackendBleve Backend = "bleve"
)

// Open creates a Store using the given backend. basePath is the path
// without extension; the backend appends .db or .bleve. An empty
// basePath yields an in-memory store for testing.
func Open(basePath string, backend string, opts Options) (Store, error) {
	switch Backend(backend) {
	case BackendSQLite, "":
		var path string
		if basePath != "" {
			path = withExtension(basePath, ".db")
		}
		return NewSQLiteStore(path, opts)

	case BackendBleve:
		var path string
		if basePath != "" {
			path = withExtension(basePath, ".bleve")
		}
		return NewBleveStore(path, opts)

	default:
		return nil, fmt.Errorf("unknown search backend: %s (valid options: sqlite, bleve)", backend)
	}
}

// DetectBackend reports which backend an existing index at basePath
// uses, or "" when none exists yet.
func DetectBackend(basePath string) Backend {
	if fileExists(withExtension(basePath, ".db")) {
		return BackendSQLite
	}
	if dirExists(withExtension(basePath, ".bleve")) {
		return BackendBleve
	}
	return ""
}

// Exists reports whether an index of either backend exists at basePath.
func Exists(basePath string) bool {
	return DetectBackend(basePath) != ""
}

// withExtension swaps any existing extension for ext. Config values
// like ~/.airdocs/airdocs.db already carry one.
func withExtension(basePath, ext string) string {
	if old := filepath.Ext(basePath); old != "" {
		basePath = basePath[:len(basePath)-len(old)]
	}
	return basePath + ext
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
