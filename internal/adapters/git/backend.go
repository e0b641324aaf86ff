// Package git reads Git repository metadata directly from disk using
// go-git. The git executable is never invoked.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog/log"

	"github.com/dvidx/vcsprompt/internal/domain"
	"github.com/dvidx/vcsprompt/internal/ports"
)

const shortHashLen = 7

// Backend implements ports.Backend for Git repositories.
type Backend struct {
	mode       domain.DirtyMode
	maxEntries int
}

// New creates a Git backend using the given dirty-check strategy.
// maxEntries caps the mtime heuristic; larger indexes report
// DirtyUnknown.
func New(mode domain.DirtyMode, maxEntries int) *Backend {
	return &Backend{mode: mode, maxEntries: maxEntries}
}

// Ensure Backend implements ports.Backend.
var _ ports.Backend = (*Backend)(nil)

// Kind implements ports.Backend.
func (b *Backend) Kind() domain.Kind { return domain.KindGit }

// Branch returns the branch HEAD points at, or "" when HEAD is detached.
// The HEAD reference is read unresolved so the branch name is available
// even in a repository with no commits.
func (b *Backend) Branch(ctx context.Context, root string) (string, error) {
	repo, err := open(root)
	if err != nil {
		return "", err
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("unreadable HEAD")
		return "", nil
	}
	if head.Type() != plumbing.SymbolicReference {
		// Detached: HEAD holds a raw hash instead of a ref name.
		return "", nil
	}
	return head.Target().Short(), nil
}

// Revision returns the abbreviated hash of the current commit, or ""
// before the first commit.
func (b *Backend) Revision(ctx context.Context, root string) (string, error) {
	repo, err := open(root)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		// An unborn branch has a HEAD but nothing to resolve it to.
		return "", nil
	}
	return head.Hash().String()[:shortHashLen], nil
}

// Upstream returns the tracking reference configured for the current
// branch in "remote/branch" form, or "" when none is configured.
func (b *Backend) Upstream(ctx context.Context, root string) (string, error) {
	branch, err := b.Branch(ctx, root)
	if err != nil || branch == "" {
		return "", err
	}
	repo, err := open(root)
	if err != nil {
		return "", err
	}
	cfg, err := repo.Config()
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("unreadable git config")
		return "", nil
	}
	tracked, ok := cfg.Branches[branch]
	if !ok || tracked.Remote == "" {
		return "", nil
	}
	merge := tracked.Merge.Short()
	if merge == "" {
		merge = branch
	}
	return tracked.Remote + "/" + merge, nil
}

func open(root string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", root, err)
	}
	return repo, nil
}

// gitDir resolves the control directory for root, following the
// "gitdir:" pointer left by linked worktrees and submodules.
func gitDir(root string) (string, error) {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Lstat(dotGit)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return dotGit, nil
	}
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", err
	}
	target := strings.TrimSpace(strings.TrimPrefix(string(data), "gitdir:"))
	if target == "" {
		return "", fmt.Errorf("malformed .git file at %s", dotGit)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return filepath.Clean(target), nil
}
