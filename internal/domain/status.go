package domain

// DirtyState reports whether the working tree has uncommitted changes.
type DirtyState int

const (
	// DirtyUnknown means the check was skipped or would have cost more
	// than a prompt render budget allows.
	DirtyUnknown DirtyState = iota
	// Clean means no uncommitted changes were detected.
	Clean
	// Dirty means at least one tracked file differs from the recorded
	// revision, or the tree carries staged/merged/removed entries.
	Dirty
)

// String returns the lowercase state name.
func (d DirtyState) String() string {
	switch d {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	}
	return "unknown"
}

// Divergence counts how far a branch and its upstream have drifted
// apart.
type Divergence struct {
	// Ahead is the number of local commits the upstream lacks.
	Ahead int
	// Behind is the number of upstream commits missing locally.
	Behind int
}

// StatusRecord is the status of a located repository at one instant.
// It is assembled fresh on every invocation and read-only once built.
// Optional fields are empty strings when the underlying metadata is
// absent; there are no placeholder sentinels.
type StatusRecord struct {
	// Kind is the backend that produced this record.
	Kind Kind
	// Branch is the current symbolic reference name. Empty when the
	// history pointer is detached.
	Branch string
	// Revision is a short identifier for the current history position:
	// an abbreviated commit hash for git, a short node for hg. Empty in
	// a repository with no commits.
	Revision string
	// Upstream is the configured remote tracking reference, if any.
	Upstream string
	// Divergence is the ahead/behind count against the upstream; nil
	// when no upstream is configured or the count could not be
	// established.
	Divergence *Divergence
	// Dirty is the (possibly heuristic) working tree state.
	Dirty DirtyState
	// Path is the queried path relative to the repository root, "." at
	// the root itself.
	Path string
	// Operations lists in-progress multi-step operations such as
	// "MERGING" or "REBASE".
	Operations []string
}
