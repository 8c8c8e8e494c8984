package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/amiller68/wt/internal/brief"
	"github.com/amiller68/wt/internal/deps"
	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/history"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

// Epic mode: a batch of related tasks landing on a shared integration
// branch, with its own session so the group attaches and dies together.

// TaskSpec is one task in an epic plan.
type TaskSpec struct {
	Name      string
	Context   string
	Issue     string
	BlockedBy []string
}

// EpicPlan is what EpicSpawn will do (or did).
type EpicPlan struct {
	EpicID            string
	IntegrationBranch string
	SessionRef        session.Ref
	Started           []string
	Blocked           []string
}

func (c *Coordinator) epicRef(epicID string) session.Ref {
	return session.EpicRef(c.store.RepoID(), epicID)
}

func integrationBranch(epicID string) string {
	return "epic/" + epicID
}

// EpicSpawn validates the plan and brings the whole epic up: integration
// branch, dedicated session, one workspace per task, windows for every
// task that can start now. With dryRun only the plan comes back, nothing
// is touched.
func (c *Coordinator) EpicSpawn(epicID string, specs []TaskSpec, dryRun bool) (*EpicPlan, error) {
	if epicID == "" {
		return nil, fmt.Errorf("epic id must not be empty")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("epic %q has no tasks", epicID)
	}

	tasks := make([]store.Task, 0, len(specs))
	for _, spec := range specs {
		tasks = append(tasks, store.Task{
			Name:      spec.Name,
			Branch:    spec.Name,
			Context:   spec.Context,
			Issue:     spec.Issue,
			Status:    store.StatusPending,
			BlockedBy: spec.BlockedBy,
			CreatedAt: time.Now().UTC(),
		})
	}
	if err := deps.Validate(tasks); err != nil {
		return nil, fmt.Errorf("epic %q: %w", epicID, err)
	}

	plan := &EpicPlan{
		EpicID:            epicID,
		IntegrationBranch: integrationBranch(epicID),
		SessionRef:        c.epicRef(epicID),
	}
	for i := range tasks {
		if deps.IsBlocked(tasks[i], tasks) {
			tasks[i].Status = store.StatusBlocked
			plan.Blocked = append(plan.Blocked, tasks[i].Name)
		} else {
			tasks[i].Status = store.StatusInProgress
			plan.Started = append(plan.Started, tasks[i].Name)
		}
	}
	if dryRun {
		return plan, nil
	}

	base, err := c.baseBranch()
	if err != nil {
		return nil, err
	}
	if !c.git.BranchExists(plan.IntegrationBranch) {
		if err := c.git.CreateBranch(plan.IntegrationBranch, base); err != nil {
			return nil, err
		}
	}

	// Workspaces are cut from the integration branch, so each task sees
	// prior epic merges when it starts.
	for i := range tasks {
		ws, err := c.git.Create(tasks[i].Name, plan.IntegrationBranch)
		if err != nil {
			return nil, err
		}
		tasks[i].Branch = ws.Branch
		tasks[i].Workspace = store.Workspace{Path: ws.Path, Branch: ws.Branch}
		if err := brief.Write(ws.Path, brief.Briefing{
			Task:        tasks[i].Name,
			Issue:       tasks[i].Issue,
			Description: tasks[i].Context,
		}); err != nil {
			return nil, err
		}
	}

	ref := c.epicRef(epicID)
	if err := c.sessions.EnsureSession(ref); err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].Status != store.StatusInProgress {
			continue
		}
		win := windowName(tasks[i].Name)
		if err := c.sessions.CreateWindow(ref, win, tasks[i].Workspace.Path, c.workerCommand(false)); err != nil {
			return nil, err
		}
		tasks[i].WindowRef = session.WindowRef(ref, win)
	}

	epic := store.Epic{
		ID:                epicID,
		IntegrationBranch: plan.IntegrationBranch,
		SessionRef:        string(ref),
		Tasks:             tasks,
	}
	if err := c.store.CreateEpic(epic); err != nil {
		return nil, err
	}
	c.record("", history.EventEpicStart, fmt.Sprintf("epic %s: %d tasks, %d started", epicID, len(tasks), len(plan.Started)))
	return plan, nil
}

// EpicEntry is one task row of epic status.
type EpicEntry struct {
	Task   store.Task
	Window session.Status
	Worker *brief.Status
}

// EpicReport is the full state of an epic.
type EpicReport struct {
	Epic    store.Epic
	Entries []EpicEntry
}

// EpicStatus reports every task in the epic with window and worker state.
func (c *Coordinator) EpicStatus(epicID string) (*EpicReport, error) {
	epic, err := c.store.LoadEpic(epicID)
	if err != nil {
		return nil, err
	}

	report := &EpicReport{Epic: *epic}
	ref := session.Ref(epic.SessionRef)
	for _, t := range epic.Tasks {
		entry := EpicEntry{Task: t, Window: session.NoWindow}
		if t.HasWindow() {
			status, err := c.sessions.WindowStatus(ref, windowName(t.Name), c.cfg.Worker.Cmd)
			if err != nil {
				return nil, err
			}
			entry.Window = status
		}
		if ws, err := brief.ReadStatus(t.Workspace.Path); err == nil {
			entry.Worker = ws
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

// EpicComplete merges one finished task into the epic's integration
// branch and starts whatever that released. The completed task stays in
// the epic document so later unblock checks still see it.
func (c *Coordinator) EpicComplete(epicID, taskName string) (*MergeResult, error) {
	epic, err := c.store.LoadEpic(epicID)
	if err != nil {
		return nil, err
	}
	t := epic.Find(taskName)
	if t == nil {
		return nil, fmt.Errorf("%w: %q in epic %q", store.ErrTaskNotFound, taskName, epicID)
	}

	dirty, err := c.git.IsDirty(git.Workspace(t.Workspace))
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("%w: %q, commit or discard before completing", git.ErrUncommittedChanges, taskName)
	}

	if err := c.git.MergeInto(t.Branch, epic.IntegrationBranch); err != nil {
		c.record(taskName, history.EventConflict, err.Error())
		return nil, err
	}

	ref := session.Ref(epic.SessionRef)
	result := &MergeResult{Base: epic.IntegrationBranch}
	err = c.store.MutateEpic(epicID, func(e *store.Epic) error {
		task := e.Find(taskName)
		if task == nil {
			return fmt.Errorf("%w: %q in epic %q", store.ErrTaskNotFound, taskName, epicID)
		}
		task.Status = store.StatusCompleted

		for _, u := range deps.UnblockedAfter(taskName, e.Tasks) {
			released := e.Find(u.Name)
			released.Status = store.StatusInProgress
			win := windowName(released.Name)
			if err := c.sessions.CreateWindow(ref, win, released.Workspace.Path, c.workerCommand(false)); err != nil {
				return err
			}
			released.WindowRef = session.WindowRef(ref, win)
			c.record(released.Name, history.EventUnblocked, "released by "+taskName)
			result.Unblocked = append(result.Unblocked, released.Name)
		}

		if err := c.sessions.KillWindow(ref, windowName(taskName)); err != nil {
			return err
		}
		task.WindowRef = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.record(taskName, history.EventMerged, "merged into "+epic.IntegrationBranch)
	return result, nil
}

// EpicCleanup tears the whole epic down: session, workspaces, task
// branches, document. Dirty workspaces abort the cleanup unless forced.
// The integration branch stays; it holds the epic's merged work.
func (c *Coordinator) EpicCleanup(epicID string, force bool) error {
	epic, err := c.store.LoadEpic(epicID)
	if err != nil {
		return err
	}

	if !force {
		var dirty []string
		for _, t := range epic.Tasks {
			if t.Workspace.Path == "" {
				continue
			}
			d, err := c.git.IsDirty(git.Workspace(t.Workspace))
			if err == nil && d {
				dirty = append(dirty, t.Name)
			}
		}
		if len(dirty) > 0 {
			return fmt.Errorf("%w: %s, use force to discard", git.ErrUncommittedChanges, strings.Join(dirty, ", "))
		}
	}

	if err := c.sessions.KillSession(session.Ref(epic.SessionRef)); err != nil {
		return err
	}
	for _, t := range epic.Tasks {
		if t.Workspace.Path == "" {
			continue
		}
		if err := c.git.Remove(git.Workspace(t.Workspace), true); err != nil {
			return err
		}
	}
	if err := c.store.DeleteEpic(epicID); err != nil {
		return err
	}
	c.record("", history.EventEpicDone, "epic "+epicID+" cleaned up")
	return nil
}

// EpicAttach hands the terminal to the epic's session.
func (c *Coordinator) EpicAttach(epicID string) error {
	epic, err := c.store.LoadEpic(epicID)
	if err != nil {
		return err
	}
	return c.sessions.Attach(session.Ref(epic.SessionRef))
}

// Epics lists the IDs of every epic recorded for this repository.
func (c *Coordinator) Epics() ([]string, error) {
	return c.store.ListEpics()
}
