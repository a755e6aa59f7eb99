// Package indexer fetches upstream Airflow documentation and loads it
// into the document store. Each source is a sparse git clone of the
// docs subtree of its repository.
package indexer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/airdocs-mcp/airdocs/internal/parser"
	"github.com/airdocs-mcp/airdocs/internal/store"
)

// DefaultBranch is checked out when no branch is configured.
const DefaultBranch = "main"

// Summary reports the outcome of an indexing run.
type Summary struct {
	// Counts maps source name to the number of documents indexed.
	Counts map[string]int
	// Total is the sum over all indexed sources.
	Total int
	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Indexer orchestrates clone, parse, and store for all sources.
type Indexer struct {
	store  store.Store
	cloner Cloner
	lock   *IndexLock
}

// New creates an Indexer writing to st. cloner defaults to the git CLI
// when nil.
func New(st store.Store, cloner Cloner) *Indexer {
	if cloner == nil {
		cloner = NewGitCloner()
	}
	return &Indexer{store: st, cloner: cloner}
}

// WithLock makes indexing runs take an exclusive cross-process lock in
// dir before touching the store.
func (ix *Indexer) WithLock(dir string) *Indexer {
	ix.lock = NewIndexLock(dir)
	return ix
}

// IndexAll indexes every registered source. Sources are fetched and
// parsed concurrently; the store serializes the writes. With rebuild
// set, all existing documents are cleared first.
func (ix *Indexer) IndexAll(ctx context.Context, branch string, rebuild bool) (*Summary, error) {
	if ix.lock != nil {
		if err := ix.lock.Acquire(); err != nil {
			return nil, err
		}
		defer func() { _ = ix.lock.Release() }()
	}

	if branch == "" {
		branch = DefaultBranch
	}
	start := time.Now()

	if rebuild {
		if err := ix.store.Clear(ctx, ""); err != nil {
			return nil, err
		}
	}

	srcs := Sources()
	counts := make([]int, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		g.Go(func() error {
			n, err := ix.indexOne(gctx, src, branch)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Counts: make(map[string]int, len(srcs))}
	for i, src := range srcs {
		summary.Counts[src.Name] = counts[i]
		summary.Total += counts[i]
	}
	summary.Elapsed = time.Since(start)

	slog.Info("index_complete",
		slog.Int("documents", summary.Total),
		slog.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// IndexSource indexes a single source by name. With rebuild set, only
// that source's documents are cleared first.
func (ix *Indexer) IndexSource(ctx context.Context, name, branch string, rebuild bool) (*Summary, error) {
	src, err := LookupSource(name)
	if err != nil {
		return nil, err
	}

	if ix.lock != nil {
		if err := ix.lock.Acquire(); err != nil {
			return nil, err
		}
		defer func() { _ = ix.lock.Release() }()
	}

	if branch == "" {
		branch = DefaultBranch
	}
	start := time.Now()

	if rebuild {
		if err := ix.store.Clear(ctx, src.Name); err != nil {
			return nil, err
		}
	}

	n, err := ix.indexOne(ctx, src, branch)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Counts:  map[string]int{src.Name: n},
		Total:   n,
		Elapsed: time.Since(start),
	}, nil
}

// indexOne clones one source into a temp dir and indexes its docs tree.
func (ix *Indexer) indexOne(ctx context.Context, src Source, branch string) (int, error) {
	tmpDir, err := os.MkdirTemp("", "airdocs-"+src.Name+"-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(tmpDir)

	slog.Info("indexing_source",
		slog.String("source", src.Name),
		slog.String("branch", branch))

	if err := ix.cloner.Clone(ctx, src.RepoURL, tmpDir, src.DocsPath, branch); err != nil {
		return 0, err
	}

	docsDir := filepath.Join(tmpDir, filepath.FromSlash(src.DocsPath))
	return ix.indexDirectory(ctx, docsDir, src.Parser())
}

// indexDirectory walks the docs tree and upserts every parseable file.
// Hidden directories are skipped; a file that fails to parse is logged
// and skipped, it never aborts the run.
func (ix *Indexer) indexDirectory(ctx context.Context, dir string, p parser.Parser) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	exts := make(map[string]bool, len(p.Extensions()))
	for _, ext := range p.Extensions() {
		exts[ext] = true
	}

	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, parseErr := p.ParseFile(path, dir)
		if parseErr != nil {
			slog.Warn("parse_failed",
				slog.String("path", path),
				slog.String("error", parseErr.Error()))
			return nil
		}
		if err := ix.store.Upsert(ctx, doc); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	slog.Info("source_indexed",
		slog.String("dir", dir),
		slog.Int("documents", count))
	return count, nil
}
