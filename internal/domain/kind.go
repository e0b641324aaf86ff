// Package domain contains the core types for repository detection and
// status reporting.
package domain

import (
	"errors"
	"fmt"
)

// Kind identifies a supported version control backend.
type Kind string

const (
	// KindGit is a Git repository (distributed, content-hash revisions).
	KindGit Kind = "git"
	// KindHg is a Mercurial repository.
	KindHg Kind = "hg"
)

// ErrNotARepository is returned when no backend marker is found anywhere
// between the start path and the filesystem root. It is a normal outcome,
// not a failure.
var ErrNotARepository = errors.New("not a repository")

// AllKinds is the default detection precedence: when one directory carries
// markers of more than one backend, the first kind listed here wins.
var AllKinds = []Kind{KindGit, KindHg}

// ParseKind validates a backend name from configuration or flags.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindGit, KindHg:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown backend kind %q", s)
}

// Marker returns the directory entry whose presence marks a repository
// root for this kind.
func (k Kind) Marker() string {
	switch k {
	case KindGit:
		return ".git"
	case KindHg:
		return ".hg"
	}
	return ""
}

// Label returns the human-readable backend name.
func (k Kind) Label() string {
	switch k {
	case KindGit:
		return "Git"
	case KindHg:
		return "Mercurial"
	}
	return string(k)
}

// Handle identifies a located repository: its root directory and the
// backend that governs it. A Handle is never mutated after creation and
// its Kind uniquely determines which backend adapter may read it.
type Handle struct {
	Root string
	Kind Kind
}
