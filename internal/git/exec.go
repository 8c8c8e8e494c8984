package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecProvider shells out to the git binary. Worktrees live under
// <repoRoot>/<worktreeDir>/<task-name>; slashes in task names become
// subdirectories there, matching branch namespacing.
type ExecProvider struct {
	repoRoot    string
	worktreeDir string
}

// NewExecProvider resolves the repository root from dir and returns a
// provider for it. ErrNotARepo when dir is not inside a git repository.
func NewExecProvider(dir, worktreeDir string) (*ExecProvider, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepo, dir)
	}
	if worktreeDir == "" {
		worktreeDir = ".worktrees"
	}
	return &ExecProvider{
		repoRoot:    strings.TrimSpace(string(out)),
		worktreeDir: worktreeDir,
	}, nil
}

func (p *ExecProvider) RepoRoot() string {
	return p.repoRoot
}

// git runs a git command in dir and returns trimmed stdout. Errors carry
// the trimmed combined output so the caller sees what git said.
func (p *ExecProvider) git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(string(out)), nil
}

// BaseBranch detects the main/master branch name, falling back to the
// current branch.
func (p *ExecProvider) BaseBranch() (string, error) {
	for _, name := range []string{"main", "master"} {
		if p.BranchExists(name) {
			return name, nil
		}
	}
	return p.CurrentBranch()
}

func (p *ExecProvider) CurrentBranch() (string, error) {
	out, err := p.git(p.repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return out, nil
}

func (p *ExecProvider) workspacePath(name string) string {
	return filepath.Join(p.repoRoot, p.worktreeDir, filepath.FromSlash(name))
}

func (p *ExecProvider) Create(name, baseRef string) (Workspace, error) {
	path := p.workspacePath(name)
	if _, err := os.Stat(path); err == nil {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceExists, path)
	}
	if p.BranchExists(name) {
		return Workspace{}, fmt.Errorf("%w: branch %q", ErrWorkspaceExists, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Workspace{}, fmt.Errorf("create worktree parent: %w", err)
	}
	if _, err := p.git(p.repoRoot, "worktree", "add", "-b", name, path, baseRef); err != nil {
		return Workspace{}, fmt.Errorf("create workspace %q: %w", name, err)
	}
	return Workspace{Path: path, Branch: name}, nil
}

func (p *ExecProvider) Remove(ws Workspace, force bool) error {
	if !force {
		dirty, err := p.IsDirty(ws)
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("%w: %s", ErrUncommittedChanges, ws.Path)
		}
	}
	args := []string{"worktree", "remove", ws.Path}
	if force {
		args = append(args, "--force")
	}
	if _, err := p.git(p.repoRoot, args...); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return p.DeleteBranch(ws.Branch, true)
}

func (p *ExecProvider) IsDirty(ws Workspace) (bool, error) {
	if _, err := os.Stat(ws.Path); err != nil {
		return false, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, ws.Path)
	}
	out, err := p.git(ws.Path, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("check workspace: %w", err)
	}
	return out != "", nil
}

// MergeInto merges branch into target at the repo root. A conflicted merge
// is left in place so the user can resolve and commit by hand.
func (p *ExecProvider) MergeInto(branch, target string) error {
	if _, err := p.git(p.repoRoot, "checkout", target); err != nil {
		return fmt.Errorf("checkout %q: %w", target, err)
	}
	if _, err := p.git(p.repoRoot, "merge", "--no-ff", branch); err != nil {
		if p.mergeInProgress() {
			return fmt.Errorf("%w: %q into %q, resolve and commit manually", ErrMergeConflict, branch, target)
		}
		return fmt.Errorf("merge %q into %q: %w", branch, target, err)
	}
	return nil
}

func (p *ExecProvider) mergeInProgress() bool {
	_, err := os.Stat(filepath.Join(p.repoRoot, ".git", "MERGE_HEAD"))
	return err == nil
}

func (p *ExecProvider) CommitsAhead(branch, base string) (int, error) {
	out, err := p.git(p.repoRoot, "rev-list", "--count", base+".."+branch)
	if err != nil {
		return 0, fmt.Errorf("count commits: %w", err)
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parse commit count %q: %w", out, err)
	}
	return n, nil
}

func (p *ExecProvider) CommitLog(branch, base string) ([]string, error) {
	out, err := p.git(p.repoRoot, "log", "--oneline", base+".."+branch)
	if err != nil {
		return nil, fmt.Errorf("commit log: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (p *ExecProvider) DiffStat(branch, base string) (string, error) {
	out, err := p.git(p.repoRoot, "diff", "--stat", base+"..."+branch)
	if err != nil {
		return "", fmt.Errorf("diff stat: %w", err)
	}
	return out, nil
}

func (p *ExecProvider) Diff(branch, base string) (string, error) {
	out, err := p.git(p.repoRoot, "diff", base+"..."+branch)
	if err != nil {
		return "", fmt.Errorf("diff: %w", err)
	}
	return out, nil
}

func (p *ExecProvider) BranchExists(branch string) bool {
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = p.repoRoot
	return cmd.Run() == nil
}

func (p *ExecProvider) CreateBranch(branch, from string) error {
	if _, err := p.git(p.repoRoot, "branch", branch, from); err != nil {
		return fmt.Errorf("create branch %q: %w", branch, err)
	}
	return nil
}

func (p *ExecProvider) DeleteBranch(branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := p.git(p.repoRoot, "branch", flag, branch); err != nil {
		return fmt.Errorf("delete branch %q: %w", branch, err)
	}
	return nil
}
