package git

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog/log"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// divergenceWalkCap bounds the commit walk on each side; histories that
// have drifted further than this report no count at all.
const divergenceWalkCap = 1000

var errWalkCapExceeded = errors.New("divergence walk cap exceeded")

// Divergence counts commits between the current branch and its remote
// tracking reference via their merge base. Nil when HEAD is detached, no
// tracking is configured, the remote reference is absent, or the walk
// exceeds the cap.
func (b *Backend) Divergence(ctx context.Context, root string) (*domain.Divergence, error) {
	repo, err := open(root)
	if err != nil {
		return nil, err
	}

	headRef, err := repo.Reference(plumbing.HEAD, false)
	if err != nil || headRef.Type() != plumbing.SymbolicReference {
		return nil, nil
	}
	branch := headRef.Target().Short()

	cfg, err := repo.Config()
	if err != nil {
		return nil, nil
	}
	tracked, ok := cfg.Branches[branch]
	if !ok || tracked.Remote == "" {
		return nil, nil
	}
	merge := tracked.Merge.Short()
	if merge == "" {
		merge = branch
	}

	localRef, err := repo.Head()
	if err != nil {
		// Unborn branch: nothing to count against.
		return nil, nil
	}
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(tracked.Remote, merge), true)
	if err != nil {
		return nil, nil
	}
	if localRef.Hash() == remoteRef.Hash() {
		return &domain.Divergence{}, nil
	}

	local, err := repo.CommitObject(localRef.Hash())
	if err != nil {
		return nil, nil
	}
	remote, err := repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return nil, nil
	}
	bases, err := local.MergeBase(remote)
	if err != nil || len(bases) == 0 {
		// Unrelated histories have no base to count from.
		return nil, nil
	}
	stop := make([]plumbing.Hash, 0, len(bases))
	for _, base := range bases {
		stop = append(stop, base.Hash)
	}

	ahead, err := countToBase(local, stop)
	if err == nil {
		var behind int
		behind, err = countToBase(remote, stop)
		if err == nil {
			return &domain.Divergence{Ahead: ahead, Behind: behind}, nil
		}
	}
	log.Debug().Err(err).Str("root", root).Msg("divergence not counted")
	return nil, nil
}

// countToBase counts commits reachable from tip but not from the merge
// base, capped at divergenceWalkCap.
func countToBase(tip *object.Commit, stop []plumbing.Hash) (int, error) {
	count := 0
	err := object.NewCommitPreorderIter(tip, nil, stop).ForEach(func(*object.Commit) error {
		count++
		if count > divergenceWalkCap {
			return errWalkCapExceeded
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
