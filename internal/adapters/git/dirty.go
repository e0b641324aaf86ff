package git

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/rs/zerolog/log"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// Dirty reports the working tree state using the configured strategy.
//
// The default mtime strategy decodes .git/index and compares each
// entry's recorded size and modification time against an lstat of the
// worktree file. It answers "does the worktree differ from the index";
// changes already staged whose worktree copy matches the index are not
// seen (use exact mode for those). Indexes larger than the configured
// cap report DirtyUnknown instead of walking the whole tree.
func (b *Backend) Dirty(ctx context.Context, root string) (domain.DirtyState, error) {
	switch b.mode {
	case domain.DirtyModeOff:
		return domain.DirtyUnknown, nil
	case domain.DirtyModeExact:
		return b.exactDirty(root)
	default:
		return b.mtimeDirty(root)
	}
}

func (b *Backend) mtimeDirty(root string) (domain.DirtyState, error) {
	dir, err := gitDir(root)
	if err != nil {
		return domain.DirtyUnknown, nil
	}
	f, err := os.Open(filepath.Join(dir, "index"))
	if err != nil {
		if os.IsNotExist(err) {
			// No index yet: fresh repository, nothing tracked.
			return domain.Clean, nil
		}
		return domain.DirtyUnknown, nil
	}
	defer f.Close()

	var idx index.Index
	if err := index.NewDecoder(f).Decode(&idx); err != nil {
		log.Debug().Err(err).Str("root", root).Msg("undecodable git index")
		return domain.DirtyUnknown, nil
	}
	if b.maxEntries > 0 && len(idx.Entries) > b.maxEntries {
		log.Debug().
			Int("entries", len(idx.Entries)).
			Int("cap", b.maxEntries).
			Msg("index too large for mtime heuristic")
		return domain.DirtyUnknown, nil
	}

	for _, e := range idx.Entries {
		if e.SkipWorktree {
			continue
		}
		// Conflict entries carry a non-zero merge stage.
		if e.Stage != 0 || e.IntentToAdd {
			return domain.Dirty, nil
		}
		info, err := os.Lstat(filepath.Join(root, filepath.FromSlash(e.Name)))
		if err != nil {
			// Tracked file gone (or unreadable): treat as modified.
			return domain.Dirty, nil
		}
		if info.Mode().IsRegular() && info.Size() != int64(e.Size) {
			return domain.Dirty, nil
		}
		if !sameSecond(info.ModTime(), e.ModifiedAt) {
			return domain.Dirty, nil
		}
	}
	return domain.Clean, nil
}

func (b *Backend) exactDirty(root string) (domain.DirtyState, error) {
	repo, err := open(root)
	if err != nil {
		return domain.DirtyUnknown, nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return domain.DirtyUnknown, nil
	}
	status, err := wt.Status()
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("worktree status failed")
		return domain.DirtyUnknown, nil
	}
	if status.IsClean() {
		return domain.Clean, nil
	}
	return domain.Dirty, nil
}

// sameSecond compares timestamps at second granularity; the index stores
// nanoseconds but many filesystems do not preserve them.
func sameSecond(a, b time.Time) bool {
	return a.Unix() == b.Unix()
}
