// Package parser turns documentation source files into indexable
// documents. An RST parser covers the Airflow core docs, a Markdown
// parser the Python client docs.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/airdocs-mcp/airdocs/internal/store"
)

// Parser extracts a document from a single documentation file.
type Parser interface {
	// ParseFile reads the file at path and returns the extracted
	// document. basePath is the docs root used for the relative path.
	ParseFile(path, basePath string) (*store.Document, error)

	// Extensions lists the file extensions this parser handles,
	// including the leading dot.
	Extensions() []string
}

// relativePath computes the document path relative to the docs root,
// normalized to forward slashes.
func relativePath(path, basePath string) (string, error) {
	rel, err := filepath.Rel(basePath, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// sectionFromPath derives the section name from the first directory of
// the relative path. "core-concepts/dags.rst" becomes "Core Concepts";
// top-level files fall into the root section.
func sectionFromPath(relPath string) string {
	parts := strings.Split(relPath, "/")
	if len(parts) > 1 {
		return titleCase(strings.NewReplacer("-", " ", "_", " ").Replace(parts[0]))
	}
	return store.DefaultSection
}

// fallbackTitle derives a title from the file name when the document
// itself has none. "dynamic-task-mapping.rst" becomes
// "Dynamic Task Mapping".
func fallbackTitle(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return titleCase(strings.NewReplacer("-", " ", "_", " ").Replace(stem))
}

// titleCase capitalizes the first letter of every space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ForExtension returns the parser whose extension list contains ext,
// or nil.
func ForExtension(parsers []Parser, ext string) Parser {
	ext = strings.ToLower(ext)
	for _, p := range parsers {
		for _, e := range p.Extensions() {
			if e == ext {
				return p
			}
		}
	}
	return nil
}
