package indexer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
)

// Cloner fetches a repository subtree to local disk. Tests substitute
// a fake that lays out fixture files.
type Cloner interface {
	// Clone materializes sparsePath of the repository at branch into
	// dest. Only the subtree is fetched.
	Clone(ctx context.Context, repoURL, dest, sparsePath, branch string) error
}

// GitCloner performs a sparse, shallow, blobless clone via the git CLI.
// For the Airflow monorepo this pulls a few megabytes instead of the
// full history.
type GitCloner struct{}

var _ Cloner = (*GitCloner)(nil)

// NewGitCloner returns a Cloner backed by the system git binary.
func NewGitCloner() *GitCloner {
	return &GitCloner{}
}

// Clone implements Cloner. The sequence mirrors a manual sparse
// checkout: init, enable sparseCheckout, write the subtree path, add
// the remote, shallow blobless fetch of one branch, checkout.
func (g *GitCloner) Clone(ctx context.Context, repoURL, dest, sparsePath, branch string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return airerrors.GitError("failed to create clone directory", err).
			WithDetail("path", dest)
	}

	steps := [][]string{
		{"init"},
		{"config", "core.sparseCheckout", "true"},
	}
	for _, args := range steps {
		if err := g.run(ctx, dest, args...); err != nil {
			return err
		}
	}

	sparseFile := filepath.Join(dest, ".git", "info", "sparse-checkout")
	if err := os.MkdirAll(filepath.Dir(sparseFile), 0o755); err != nil {
		return airerrors.GitError("failed to create sparse-checkout config", err).
			WithDetail("path", sparseFile)
	}
	if err := os.WriteFile(sparseFile, []byte(sparsePath+"\n"), 0o644); err != nil {
		return airerrors.GitError("failed to write sparse-checkout config", err).
			WithDetail("path", sparseFile)
	}

	steps = [][]string{
		{"remote", "add", "origin", repoURL},
		{"fetch", "--depth", "1", "--filter=blob:none", "origin", branch},
		{"checkout", branch},
	}
	for _, args := range steps {
		if err := g.run(ctx, dest, args...); err != nil {
			return err
		}
	}

	slog.Debug("repository_cloned",
		slog.String("repo", repoURL),
		slog.String("branch", branch),
		slog.String("sparse_path", sparsePath))
	return nil
}

func (g *GitCloner) run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return airerrors.GitError(
			fmt.Sprintf("git %s failed", strings.Join(args, " ")), err).
			WithDetail("stderr", strings.TrimSpace(stderr.String())).
			WithSuggestion("check network access and that git is installed")
	}
	return nil
}
