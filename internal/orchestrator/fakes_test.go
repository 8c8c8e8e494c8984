package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/amiller68/wt/internal/config"
	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

// fakeGit implements git.Provider on an in-memory branch set. Workspace
// directories are real so briefing files can be written into them.
type fakeGit struct {
	root     string
	branches map[string]bool
	dirty    map[string]bool // workspace path -> dirty
	conflict map[string]bool // branch -> merge conflicts
	merged   []string        // "branch->target" in order
	removed  []string
}

func newFakeGit(t *testing.T) *fakeGit {
	t.Helper()
	return &fakeGit{
		root:     t.TempDir(),
		branches: map[string]bool{"main": true},
		dirty:    map[string]bool{},
		conflict: map[string]bool{},
	}
}

func (f *fakeGit) RepoRoot() string                 { return f.root }
func (f *fakeGit) BaseBranch() (string, error)      { return "main", nil }
func (f *fakeGit) CurrentBranch() (string, error)   { return "main", nil }
func (f *fakeGit) BranchExists(branch string) bool  { return f.branches[branch] }
func (f *fakeGit) CreateBranch(b, from string) error {
	f.branches[b] = true
	return nil
}
func (f *fakeGit) DeleteBranch(b string, force bool) error {
	delete(f.branches, b)
	return nil
}

func (f *fakeGit) Create(name, baseRef string) (git.Workspace, error) {
	if f.branches[name] {
		return git.Workspace{}, fmt.Errorf("%w: branch %q", git.ErrWorkspaceExists, name)
	}
	path := filepath.Join(f.root, ".worktrees", filepath.FromSlash(name))
	if err := os.MkdirAll(path, 0o755); err != nil {
		return git.Workspace{}, err
	}
	f.branches[name] = true
	return git.Workspace{Path: path, Branch: name}, nil
}

func (f *fakeGit) Remove(ws git.Workspace, force bool) error {
	if f.dirty[ws.Path] && !force {
		return fmt.Errorf("%w: %s", git.ErrUncommittedChanges, ws.Path)
	}
	f.removed = append(f.removed, ws.Branch)
	delete(f.branches, ws.Branch)
	return os.RemoveAll(ws.Path)
}

func (f *fakeGit) IsDirty(ws git.Workspace) (bool, error) {
	return f.dirty[ws.Path], nil
}

func (f *fakeGit) MergeInto(branch, target string) error {
	if f.conflict[branch] {
		return fmt.Errorf("%w: %q into %q", git.ErrMergeConflict, branch, target)
	}
	f.merged = append(f.merged, branch+"->"+target)
	return nil
}

func (f *fakeGit) CommitsAhead(branch, base string) (int, error) { return 2, nil }
func (f *fakeGit) CommitLog(branch, base string) ([]string, error) {
	return []string{"abc1234 change"}, nil
}
func (f *fakeGit) DiffStat(branch, base string) (string, error) { return "1 file changed", nil }
func (f *fakeGit) Diff(branch, base string) (string, error)     { return "+diff", nil }

// fakeSessions implements session.Orchestrator and records every call in
// order, so tests can assert the activation/teardown sequence.
type fakeSessions struct {
	windows map[session.Ref]map[string]bool
	running map[string]bool // ref:window -> worker in foreground
	ops     []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		windows: map[session.Ref]map[string]bool{},
		running: map[string]bool{},
	}
}

func (f *fakeSessions) EnsureSession(ref session.Ref) error {
	if f.windows[ref] == nil {
		f.windows[ref] = map[string]bool{}
		f.ops = append(f.ops, "ensure "+string(ref))
	}
	return nil
}

func (f *fakeSessions) CreateWindow(ref session.Ref, window, dir, startCmd string) error {
	if f.windows[ref] == nil {
		return fmt.Errorf("%w: %s", session.ErrSessionUnavailable, ref)
	}
	if f.windows[ref][window] {
		return fmt.Errorf("%w: %s:%s", session.ErrWindowExists, ref, window)
	}
	f.windows[ref][window] = true
	f.running[string(ref)+":"+window] = true
	f.ops = append(f.ops, "create "+window)
	return nil
}

func (f *fakeSessions) KillWindow(ref session.Ref, window string) error {
	if f.windows[ref] == nil || !f.windows[ref][window] {
		f.ops = append(f.ops, "kill-miss "+window)
		return nil
	}
	delete(f.windows[ref], window)
	f.ops = append(f.ops, "kill "+window)
	return nil
}

func (f *fakeSessions) WindowStatus(ref session.Ref, window, workerProc string) (session.Status, error) {
	if f.windows[ref] == nil {
		return session.NoSession, nil
	}
	if !f.windows[ref][window] {
		return session.NoWindow, nil
	}
	if f.running[string(ref)+":"+window] {
		return session.Running, nil
	}
	return session.Exited, nil
}

func (f *fakeSessions) SelectWindow(ref session.Ref, window string) error {
	if f.windows[ref] == nil || !f.windows[ref][window] {
		return fmt.Errorf("%w: %s:%s", session.ErrWindowNotFound, ref, window)
	}
	f.ops = append(f.ops, "select "+window)
	return nil
}

func (f *fakeSessions) Attach(ref session.Ref) error {
	f.ops = append(f.ops, "attach "+string(ref))
	return nil
}

func (f *fakeSessions) ListWindows(ref session.Ref) ([]string, error) {
	var names []string
	for w := range f.windows[ref] {
		names = append(names, w)
	}
	return names, nil
}

func (f *fakeSessions) KillSession(ref session.Ref) error {
	delete(f.windows, ref)
	f.ops = append(f.ops, "kill-session "+string(ref))
	return nil
}

// testCoordinator wires a coordinator over fakes and a temp store.
func testCoordinator(t *testing.T) (*Coordinator, *fakeGit, *fakeSessions) {
	t.Helper()
	g := newFakeGit(t)
	sess := newFakeSessions()
	s := store.NewAt(t.TempDir(), g.RepoRoot())
	c := New(s, g, sess, config.DefaultConfig(), nil)
	return c, g, sess
}
