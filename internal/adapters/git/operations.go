package git

import (
	"context"
	"os"
	"path/filepath"
)

// operationMarkers maps control-directory entries to the in-progress
// operation they indicate, in the order git itself checks them.
var operationMarkers = []struct {
	entry string
	label string
}{
	{"rebase-merge", "REBASE"},
	{"rebase-apply", "AM/REBASE"},
	{"MERGE_HEAD", "MERGING"},
	{"CHERRY_PICK_HEAD", "CHERRY-PICKING"},
	{"REVERT_HEAD", "REVERTING"},
	{"BISECT_LOG", "BISECTING"},
}

// Operations lists multi-step operations recorded in the control
// directory, e.g. an unfinished merge or rebase.
func (b *Backend) Operations(ctx context.Context, root string) ([]string, error) {
	dir, err := gitDir(root)
	if err != nil {
		return nil, nil
	}
	var ops []string
	for _, m := range operationMarkers {
		if _, err := os.Stat(filepath.Join(dir, m.entry)); err == nil {
			ops = append(ops, m.label)
		}
	}
	return ops, nil
}
