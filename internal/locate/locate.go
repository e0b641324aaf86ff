// Package locate finds the nearest repository root above a path by
// walking the parent directory chain and testing each level for backend
// markers. The walk is O(depth) stat calls; nothing below the start path
// is ever visited.
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// Options controls a locate run.
type Options struct {
	// Order is the backend precedence used when one directory carries
	// markers of more than one kind. Defaults to domain.AllKinds.
	Order []domain.Kind
	// MaxDepth caps how many directory levels are ascended, including
	// the start directory itself. Zero means unbounded (up to the
	// filesystem root).
	MaxDepth int
}

// Locate walks from start up to the filesystem root and returns a handle
// for the innermost repository found. Permission errors along the way are
// treated as "no marker here"; only a complete miss yields
// domain.ErrNotARepository.
func Locate(start string, opts Options) (*domain.Handle, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve start path %s: %w", start, err)
	}
	abs = filepath.Clean(abs)

	order := opts.Order
	if len(order) == 0 {
		order = domain.AllKinds
	}

	depth := 0
	for dir := abs; ; dir = filepath.Dir(dir) {
		for _, kind := range order {
			if hasMarker(dir, kind) {
				log.Debug().
					Str("root", dir).
					Str("kind", string(kind)).
					Int("depth", depth).
					Msg("repository marker found")
				return &domain.Handle{Root: dir, Kind: kind}, nil
			}
		}
		depth++
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			break
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return nil, domain.ErrNotARepository
}

// hasMarker reports whether dir is a repository root of the given kind.
// Stat and read failures (including permission errors) count as a miss.
func hasMarker(dir string, kind domain.Kind) bool {
	marker := filepath.Join(dir, kind.Marker())
	info, err := os.Lstat(marker)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}
	if kind != domain.KindGit || !info.Mode().IsRegular() {
		return false
	}
	// A regular .git file marks a linked worktree or submodule and holds
	// a "gitdir: <path>" pointer.
	data, err := os.ReadFile(marker)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(data), "gitdir:")
}
