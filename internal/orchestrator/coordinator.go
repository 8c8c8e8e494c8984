// Package orchestrator ties the pieces together: the task store, the
// workspace provider, the session backend, and the worker briefing
// protocol. Every command the CLI exposes is one method here, so the
// ordering guarantees live in exactly one place.
package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amiller68/wt/internal/brief"
	"github.com/amiller68/wt/internal/config"
	"github.com/amiller68/wt/internal/deps"
	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/history"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

// Coordinator runs the task lifecycle for one repository.
type Coordinator struct {
	store    *store.Store
	git      git.Provider
	sessions session.Orchestrator
	cfg      *config.Config
	history  *history.Log // optional, best-effort
}

// New assembles a coordinator from its parts. history may be nil.
func New(s *store.Store, g git.Provider, sess session.Orchestrator, cfg *config.Config, h *history.Log) *Coordinator {
	return &Coordinator{store: s, git: g, sessions: sess, cfg: cfg, history: h}
}

// record appends to the event log, swallowing failures. Observability
// must never break a command.
func (c *Coordinator) record(task, eventType, detail string) {
	if c.history != nil {
		_ = c.history.Record(c.store.RepoID(), task, eventType, detail)
	}
}

func (c *Coordinator) pooledRef() session.Ref {
	return session.PooledRef(c.store.RepoID())
}

// baseBranch resolves the merge target: configured, or detected.
func (c *Coordinator) baseBranch() (string, error) {
	if c.cfg.BaseBranch != "" {
		return c.cfg.BaseBranch, nil
	}
	return c.git.BaseBranch()
}

// windowName maps a task name to its tmux window name. Dots and colons
// are target separators in tmux, so they are rewritten; rewritten names
// get a hash suffix so "a.b" and "a-b" stay distinct windows.
func windowName(task string) string {
	r := strings.NewReplacer(":", "-", ".", "-")
	name := r.Replace(task)
	if name != task {
		sum := sha256.Sum256([]byte(task))
		name += "-" + hex.EncodeToString(sum[:])[:6]
	}
	return name
}

// workerCommand is the shell command launched in a task window.
func (c *Coordinator) workerCommand(auto bool) string {
	parts := append([]string{c.cfg.Worker.Cmd}, c.cfg.Worker.EffectiveArgs(auto)...)
	if auto {
		parts = append(parts, "'Read .wt/task.md, complete the task, and keep .wt/status.json updated.'")
	}
	return strings.Join(parts, " ")
}

// SpawnRequest is everything spawn needs to know about a new task.
type SpawnRequest struct {
	Name      string
	Context   string
	Issue     string
	BlockedBy []string
	Auto      bool
}

// Spawn creates the workspace, registers the task, and, unless the task
// starts blocked, opens its window with the worker running inside.
func (c *Coordinator) Spawn(req SpawnRequest) (*store.Task, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("task name must not be empty")
	}

	existing, err := c.store.List()
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Name == req.Name {
			return nil, fmt.Errorf("%w: %q", store.ErrDuplicateTask, req.Name)
		}
	}

	base, err := c.baseBranch()
	if err != nil {
		return nil, err
	}
	ws, err := c.git.Create(req.Name, base)
	if err != nil {
		return nil, err
	}

	task := store.Task{
		Name:      req.Name,
		Branch:    ws.Branch,
		Context:   req.Context,
		Issue:     req.Issue,
		Status:    store.StatusInProgress,
		BlockedBy: req.BlockedBy,
		Workspace: store.Workspace{Path: ws.Path, Branch: ws.Branch},
		CreatedAt: time.Now().UTC(),
	}
	if deps.IsBlocked(task, existing) {
		task.Status = store.StatusBlocked
	}

	if err := c.store.Register(task); err != nil {
		return nil, err
	}
	if err := brief.Write(ws.Path, brief.Briefing{
		Task:        req.Name,
		Issue:       req.Issue,
		Description: req.Context,
	}); err != nil {
		return nil, err
	}

	if task.Status == store.StatusBlocked {
		c.record(req.Name, history.EventSpawned, "registered blocked on "+strings.Join(req.BlockedBy, ", "))
		return &task, nil
	}

	if err := c.startWorker(c.pooledRef(), &task, req.Auto); err != nil {
		return nil, err
	}
	c.record(req.Name, history.EventSpawned, "worker started on "+ws.Branch)
	return &task, nil
}

// startWorker opens the task's window and records the handle. Window
// creation happens exactly once per task; a stored WindowRef means a
// window exists.
func (c *Coordinator) startWorker(ref session.Ref, task *store.Task, auto bool) error {
	if err := c.sessions.EnsureSession(ref); err != nil {
		return err
	}
	win := windowName(task.Name)
	if err := c.sessions.CreateWindow(ref, win, task.Workspace.Path, c.workerCommand(auto)); err != nil {
		return err
	}
	task.WindowRef = session.WindowRef(ref, win)
	return c.store.SetWindowRef(task.Name, task.WindowRef)
}

// PsEntry is one row of wt ps.
type PsEntry struct {
	Task         store.Task
	Window       session.Status
	Worker       *brief.Status // nil when the worker has not reported
	CommitsAhead int
	Dirty        bool
}

// Ps reports every registered task with its window and workspace state.
func (c *Coordinator) Ps() ([]PsEntry, error) {
	tasks, err := c.store.List()
	if err != nil {
		return nil, err
	}
	base, err := c.baseBranch()
	if err != nil {
		return nil, err
	}

	entries := make([]PsEntry, 0, len(tasks))
	for _, t := range tasks {
		entry := PsEntry{Task: t, Window: session.NoWindow}
		if t.HasWindow() {
			status, err := c.sessions.WindowStatus(c.pooledRef(), windowName(t.Name), c.cfg.Worker.Cmd)
			if err != nil {
				return nil, err
			}
			entry.Window = status
		}
		if ws, err := brief.ReadStatus(t.Workspace.Path); err == nil {
			entry.Worker = ws
		}
		if n, err := c.git.CommitsAhead(t.Branch, base); err == nil {
			entry.CommitsAhead = n
		}
		if dirty, err := c.git.IsDirty(git.Workspace(t.Workspace)); err == nil {
			entry.Dirty = dirty
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReviewReport is the read-only summary of a task's work so far.
type ReviewReport struct {
	Task         store.Task
	Base         string
	CommitsAhead int
	CommitLog    []string
	DiffStat     string
	Diff         string // populated only for full reviews
	Dirty        bool
}

// Review inspects a task's branch without touching any state.
func (c *Coordinator) Review(name string, full bool) (*ReviewReport, error) {
	t, err := c.store.Get(name)
	if err != nil {
		return nil, err
	}
	base, err := c.baseBranch()
	if err != nil {
		return nil, err
	}

	report := &ReviewReport{Task: *t, Base: base}
	if report.CommitsAhead, err = c.git.CommitsAhead(t.Branch, base); err != nil {
		return nil, err
	}
	if report.CommitLog, err = c.git.CommitLog(t.Branch, base); err != nil {
		return nil, err
	}
	if report.DiffStat, err = c.git.DiffStat(t.Branch, base); err != nil {
		return nil, err
	}
	if full {
		if report.Diff, err = c.git.Diff(t.Branch, base); err != nil {
			return nil, err
		}
	}
	if report.Dirty, err = c.git.IsDirty(git.Workspace(t.Workspace)); err != nil {
		return nil, err
	}
	return report, nil
}

// MergeResult says what a merge did.
type MergeResult struct {
	Base      string
	Unblocked []string
}

// Merge lands a task's branch on the base branch and runs the completion
// cascade: mark completed, start every task the completion released, then
// tear the merged task down. On conflict nothing is touched; the
// repository is left mid-merge for manual resolution.
func (c *Coordinator) Merge(name string, removeWorkspace bool) (*MergeResult, error) {
	t, err := c.store.Get(name)
	if err != nil {
		return nil, err
	}

	dirty, err := c.git.IsDirty(git.Workspace(t.Workspace))
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("%w: %q, commit or discard before merging", git.ErrUncommittedChanges, name)
	}

	base, err := c.baseBranch()
	if err != nil {
		return nil, err
	}
	if err := c.git.MergeInto(t.Branch, base); err != nil {
		c.record(name, history.EventConflict, err.Error())
		return nil, err
	}

	// Completion cascade, in strict order: complete, resolve, activate,
	// then tear down the merged task.
	if err := c.store.UpdateStatus(name, store.StatusCompleted); err != nil {
		return nil, err
	}
	tasks, err := c.store.List()
	if err != nil {
		return nil, err
	}

	result := &MergeResult{Base: base}
	for _, u := range deps.UnblockedAfter(name, tasks) {
		if err := c.store.UpdateStatus(u.Name, store.StatusInProgress); err != nil {
			return nil, err
		}
		u.Status = store.StatusInProgress
		if err := c.startWorker(c.pooledRef(), &u, false); err != nil {
			return nil, err
		}
		c.record(u.Name, history.EventUnblocked, "released by "+name)
		result.Unblocked = append(result.Unblocked, u.Name)
	}

	if err := c.sessions.KillWindow(c.pooledRef(), windowName(name)); err != nil {
		return nil, err
	}
	if err := c.store.Unregister(name); err != nil {
		return nil, err
	}
	if removeWorkspace {
		if err := c.git.Remove(git.Workspace(t.Workspace), false); err != nil {
			return nil, err
		}
	}
	c.record(name, history.EventMerged, "merged into "+base)
	return result, nil
}

// Kill abandons a task: window gone, registration gone. Work in the
// workspace is left on disk. Killing an unknown task is a no-op so the
// command can be retried safely.
func (c *Coordinator) Kill(name string) error {
	_, err := c.store.Get(name)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if err := c.sessions.KillWindow(c.pooledRef(), windowName(name)); err != nil {
		return err
	}
	if err := c.store.Unregister(name); err != nil && !isNotFound(err) {
		return err
	}
	c.record(name, history.EventKilled, "")
	return nil
}

// Attach hands the terminal to the pooled session, first selecting the
// named task's window when given one.
func (c *Coordinator) Attach(name string) error {
	if name != "" {
		if _, err := c.store.Get(name); err != nil {
			return err
		}
		if err := c.sessions.SelectWindow(c.pooledRef(), windowName(name)); err != nil {
			return err
		}
	}
	return c.sessions.Attach(c.pooledRef())
}

// StatusSummary is the one-line overview behind wt status.
type StatusSummary struct {
	Total          int
	InProgress     int
	Blocked        int
	Completed      int
	NeedsAttention []string // tasks whose worker reported blocked/question
}

// Status aggregates task counts and flags workers waiting on a human.
func (c *Coordinator) Status() (*StatusSummary, error) {
	tasks, err := c.store.List()
	if err != nil {
		return nil, err
	}
	summary := &StatusSummary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case store.StatusInProgress:
			summary.InProgress++
		case store.StatusBlocked:
			summary.Blocked++
		case store.StatusCompleted:
			summary.Completed++
		}
		if ws, err := brief.ReadStatus(t.Workspace.Path); err == nil && ws != nil && ws.NeedsAttention() {
			summary.NeedsAttention = append(summary.NeedsAttention, t.Name)
		}
	}
	return summary, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrTaskNotFound) || errors.Is(err, store.ErrEpicNotFound)
}
