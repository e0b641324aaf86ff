package ports

import (
	"context"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// Backend extracts status fields from a repository's on-disk metadata.
// This is a driven port (implemented by adapters); one implementation
// exists per domain.Kind and must only be invoked against roots located
// for that kind.
//
// Implementations read reference files, index/dirstate files and packed
// stores directly; they never invoke the backend's own executable. A
// backend that encounters malformed or version-incompatible metadata
// returns empty values (or DirtyUnknown) for the affected fields rather
// than failing the invocation.
type Backend interface {
	// Kind reports which backend this adapter serves.
	Kind() domain.Kind

	// Branch returns the current symbolic reference name, or "" when
	// the history pointer is detached.
	Branch(ctx context.Context, root string) (string, error)

	// Revision returns a short identifier for the current history
	// position, or "" in a repository with no commits.
	Revision(ctx context.Context, root string) (string, error)

	// Upstream returns the configured remote tracking reference for the
	// current branch, or "" when none is configured.
	Upstream(ctx context.Context, root string) (string, error)

	// Divergence counts commits ahead of and behind the tracking
	// reference. Nil (with a nil error) when no upstream is configured
	// or the counts cannot be established at bounded cost.
	Divergence(ctx context.Context, root string) (*domain.Divergence, error)

	// Dirty reports the working tree state. Implementations apply a
	// bounded-cost check and return DirtyUnknown rather than walking
	// arbitrarily large trees.
	Dirty(ctx context.Context, root string) (domain.DirtyState, error)

	// Operations lists in-progress multi-step operations (merge,
	// rebase, bisect, ...) recorded in the control directory.
	Operations(ctx context.Context, root string) ([]string, error)
}
