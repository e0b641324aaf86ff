// Package services wires the locator, the backend adapters and the
// formatter into the single prompt-rendering operation.
package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/dvidx/vcsprompt/internal/adapters/git"
	"github.com/dvidx/vcsprompt/internal/adapters/hg"
	"github.com/dvidx/vcsprompt/internal/config"
	"github.com/dvidx/vcsprompt/internal/domain"
	"github.com/dvidx/vcsprompt/internal/format"
	"github.com/dvidx/vcsprompt/internal/locate"
	"github.com/dvidx/vcsprompt/internal/ports"
)

// PromptService locates a repository, queries the matching backend and
// renders the status line. It owns the only branching across backend
// kinds; every field failure degrades to an absent value so a prompt is
// always produced for a located repository.
type PromptService struct {
	cfg      *config.Config
	backends map[domain.Kind]ports.Backend
}

// NewPromptService creates a prompt service with one backend per
// supported kind, configured from cfg.
func NewPromptService(cfg *config.Config) *PromptService {
	mode := cfg.DirtyMode()
	return &PromptService{
		cfg: cfg,
		backends: map[domain.Kind]ports.Backend{
			domain.KindGit: git.New(mode, cfg.Dirty.MaxEntries),
			domain.KindHg:  hg.New(mode, cfg.Dirty.MaxEntries),
		},
	}
}

// Locate finds the repository governing start, honoring the configured
// backend precedence and ascent cap.
func (s *PromptService) Locate(start string) (*domain.Handle, error) {
	return locate.Locate(start, locate.Options{
		Order:    s.cfg.DetectOrder(),
		MaxDepth: s.cfg.Locate.MaxDepth,
	})
}

// Status locates the repository governing start and assembles a status
// record from the matching backend. found is false (with a nil record
// and nil error) when start is outside any repository.
func (s *PromptService) Status(ctx context.Context, start string) (*domain.StatusRecord, bool, error) {
	handle, err := s.Locate(start)
	if err == domain.ErrNotARepository {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	backend, ok := s.backends[handle.Kind]
	if !ok {
		return nil, false, fmt.Errorf("no backend registered for kind %q", handle.Kind)
	}

	rec := &domain.StatusRecord{
		Kind:  handle.Kind,
		Dirty: domain.DirtyUnknown,
		Path:  displayPath(handle.Root, start),
	}

	if branch, err := backend.Branch(ctx, handle.Root); err == nil {
		rec.Branch = branch
	} else {
		log.Warn().Err(err).Str("root", handle.Root).Msg("branch unavailable")
	}
	if rev, err := backend.Revision(ctx, handle.Root); err == nil {
		rec.Revision = rev
	} else {
		log.Warn().Err(err).Str("root", handle.Root).Msg("revision unavailable")
	}
	if upstream, err := backend.Upstream(ctx, handle.Root); err == nil {
		rec.Upstream = upstream
	} else {
		log.Warn().Err(err).Str("root", handle.Root).Msg("upstream unavailable")
	}
	if div, err := backend.Divergence(ctx, handle.Root); err == nil {
		rec.Divergence = div
	} else {
		log.Warn().Err(err).Str("root", handle.Root).Msg("divergence unavailable")
	}
	if dirty, err := backend.Dirty(ctx, handle.Root); err == nil {
		rec.Dirty = dirty
	} else {
		log.Warn().Err(err).Str("root", handle.Root).Msg("dirty state unavailable")
	}
	if ops, err := backend.Operations(ctx, handle.Root); err == nil {
		rec.Operations = ops
	}

	return rec, true, nil
}

// Run renders the prompt line for start through spec. When start is
// outside any repository it returns the configured fallback output and
// found=false; the caller maps that to the not-found exit code.
func (s *PromptService) Run(ctx context.Context, start string, spec *format.Spec) (string, bool, error) {
	rec, found, err := s.Status(ctx, start)
	if err != nil {
		return "", false, err
	}
	if !found {
		return s.cfg.Output.Fallback, false, nil
	}
	return spec.Render(rec, s.renderOptions()), true, nil
}

func (s *PromptService) renderOptions() format.Options {
	opts := format.Options{
		DirtyMarker:   s.cfg.Dirty.Marker,
		UnknownMarker: s.cfg.Dirty.UnknownMarker,
		ShowUnknown:   s.cfg.Dirty.ShowUnknown,
		AheadMarker:   s.cfg.Divergence.AheadMarker,
		BehindMarker:  s.cfg.Divergence.BehindMarker,
		Symbols:       s.cfg.SymbolMap(),
	}
	if s.cfg.Output.Color {
		opts.Style = format.DefaultStyle()
	}
	return opts
}

// displayPath renders start relative to the repository root, "." at the
// root itself. Falls back to the root's base name if the relative path
// cannot be computed.
func displayPath(root, start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return filepath.Base(root)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.ToSlash(rel)
}
