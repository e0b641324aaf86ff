package domain

import "fmt"

// DirtyMode selects how a backend decides the working tree state. The
// check runs on every prompt render, so the default trades exactness for
// bounded cost.
type DirtyMode string

const (
	// DirtyModeMtime compares recorded size and modification time of
	// each tracked entry against the filesystem. It misses content
	// changes that preserve both, and (for git) staged changes whose
	// worktree copy matches the index.
	DirtyModeMtime DirtyMode = "mtime"
	// DirtyModeExact performs a full working tree status.
	DirtyModeExact DirtyMode = "exact"
	// DirtyModeOff skips the check; the state is always DirtyUnknown.
	DirtyModeOff DirtyMode = "off"
)

// ParseDirtyMode validates a dirty mode name from configuration.
func ParseDirtyMode(s string) (DirtyMode, error) {
	switch DirtyMode(s) {
	case DirtyModeMtime, DirtyModeExact, DirtyModeOff:
		return DirtyMode(s), nil
	}
	return "", fmt.Errorf("unknown dirty mode %q", s)
}
