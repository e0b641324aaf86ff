// Package hg reads Mercurial repository metadata directly from the .hg
// control directory. The hg executable is never invoked; the branch,
// bookmark, dirstate and hgrc files are small fixed formats that can be
// parsed in a handful of reads.
package hg

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/ini.v1"

	"github.com/dvidx/vcsprompt/internal/domain"
	"github.com/dvidx/vcsprompt/internal/ports"
)

// shortNodeLen is Mercurial's conventional short node length.
const shortNodeLen = 12

// Backend implements ports.Backend for Mercurial repositories.
type Backend struct {
	mode       domain.DirtyMode
	maxEntries int
}

// New creates a Mercurial backend. The mtime and exact strategies share
// one implementation here: the dirstate already records size and mtime
// per entry, so an exact tracked-file check costs the same stat walk.
func New(mode domain.DirtyMode, maxEntries int) *Backend {
	return &Backend{mode: mode, maxEntries: maxEntries}
}

// Ensure Backend implements ports.Backend.
var _ ports.Backend = (*Backend)(nil)

// Kind implements ports.Backend.
func (b *Backend) Kind() domain.Kind { return domain.KindHg }

// Branch returns the named branch from .hg/branch ("default" when the
// file is absent), with the active bookmark appended as "*name" when
// .hg/bookmarks.current exists.
func (b *Backend) Branch(ctx context.Context, root string) (string, error) {
	branch := "default"
	if data, err := os.ReadFile(filepath.Join(root, ".hg", "branch")); err == nil {
		if name := strings.TrimSpace(string(data)); name != "" {
			branch = name
		}
	}
	if data, err := os.ReadFile(filepath.Join(root, ".hg", "bookmarks.current")); err == nil {
		if mark := strings.TrimSpace(string(data)); mark != "" {
			branch += "*" + mark
		}
	}
	return branch, nil
}

// Revision returns the short node of the working directory's first
// parent, read from the dirstate header. Empty in a repository with no
// commits (the null node).
func (b *Backend) Revision(ctx context.Context, root string) (string, error) {
	p1, _, err := dirstateParents(filepath.Join(root, ".hg", "dirstate"))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("root", root).Msg("unreadable dirstate")
		}
		return "", nil
	}
	if isNullNode(p1) {
		return "", nil
	}
	return hex.EncodeToString(p1)[:shortNodeLen], nil
}

// Upstream reports which default push/pull path is configured in
// .hg/hgrc: "default-push" when set, otherwise "default", otherwise "".
func (b *Backend) Upstream(ctx context.Context, root string) (string, error) {
	hgrc := filepath.Join(root, ".hg", "hgrc")
	if _, err := os.Stat(hgrc); err != nil {
		return "", nil
	}
	cfg, err := ini.Load(hgrc)
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("unreadable hgrc")
		return "", nil
	}
	paths := cfg.Section("paths")
	if paths.Key("default-push").String() != "" {
		return "default-push", nil
	}
	if paths.Key("default").String() != "" {
		return "default", nil
	}
	return "", nil
}

// Divergence always reports nil: Mercurial keeps no local copy of the
// remote's heads, so an ahead/behind count would need a network round
// trip.
func (b *Backend) Divergence(ctx context.Context, root string) (*domain.Divergence, error) {
	return nil, nil
}

// Operations lists in-progress multi-step operations recorded under .hg.
func (b *Backend) Operations(ctx context.Context, root string) ([]string, error) {
	markers := []struct {
		entry string
		label string
	}{
		{"merge", "MERGING"},
		{"rebasestate", "REBASE"},
		{"histedit-state", "HISTEDIT"},
		{"bisect.state", "BISECTING"},
	}
	var ops []string
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(root, ".hg", m.entry)); err == nil {
			ops = append(ops, m.label)
		}
	}
	return ops, nil
}

func isNullNode(node []byte) bool {
	for _, b := range node {
		if b != 0 {
			return false
		}
	}
	return true
}
