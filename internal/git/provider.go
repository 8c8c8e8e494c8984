// Package git manages the isolated workspaces tasks run in. A workspace is
// a git worktree on its own branch; the Provider interface is the only
// surface the rest of the tool sees, so tests swap in a fake and the exec
// adapter stays the single place that shells out to git.
package git

import "errors"

var (
	ErrWorkspaceExists    = errors.New("workspace already exists")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrUncommittedChanges = errors.New("workspace has uncommitted changes")
	ErrMergeConflict      = errors.New("merge conflict")
	ErrNotARepo           = errors.New("not a git repository")
)

// Workspace is an isolated checkout owned by the provider.
type Workspace struct {
	Path   string
	Branch string
}

// Provider creates, inspects, merges, and removes task workspaces.
type Provider interface {
	// RepoRoot returns the absolute path of the repository the provider
	// manages. Stable across calls; used as the repository identity.
	RepoRoot() string

	// BaseBranch detects the repository's main line (main, then master,
	// then the current branch).
	BaseBranch() (string, error)

	// CurrentBranch returns the branch checked out at the repo root.
	CurrentBranch() (string, error)

	// Create makes a workspace for name: a worktree on a new branch named
	// after the task, cut from baseRef. ErrWorkspaceExists if the
	// workspace path or branch is already taken.
	Create(name, baseRef string) (Workspace, error)

	// Remove deletes the worktree and its branch. Refuses with
	// ErrUncommittedChanges when the worktree is dirty, unless force.
	Remove(ws Workspace, force bool) error

	// IsDirty reports whether the workspace has uncommitted changes.
	IsDirty(ws Workspace) (bool, error)

	// MergeInto merges branch into target, checked out at the repo root.
	// On conflict it returns ErrMergeConflict and leaves the merge in
	// place, conflict markers and all, for manual resolution.
	MergeInto(branch, target string) error

	// Read-only review queries against a workspace branch.
	CommitsAhead(branch, base string) (int, error)
	CommitLog(branch, base string) ([]string, error)
	DiffStat(branch, base string) (string, error)
	Diff(branch, base string) (string, error)

	BranchExists(branch string) bool
	CreateBranch(branch, from string) error
	DeleteBranch(branch string, force bool) error
}
