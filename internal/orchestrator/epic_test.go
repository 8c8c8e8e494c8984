package orchestrator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amiller68/wt/internal/deps"
	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

func epicSpecs() []TaskSpec {
	return []TaskSpec{
		{Name: "schema", Context: "design the tables"},
		{Name: "api", Context: "expose endpoints", BlockedBy: []string{"schema"}},
		{Name: "docs", Context: "write docs", BlockedBy: []string{"api"}},
	}
}

func TestEpicSpawn_DryRun(t *testing.T) {
	c, g, sess := testCoordinator(t)

	plan, err := c.EpicSpawn("v2", epicSpecs(), true)
	if err != nil {
		t.Fatalf("EpicSpawn: %v", err)
	}
	if plan.IntegrationBranch != "epic/v2" {
		t.Errorf("integration branch = %q", plan.IntegrationBranch)
	}
	if len(plan.Started) != 1 || plan.Started[0] != "schema" {
		t.Errorf("started = %v", plan.Started)
	}
	if len(plan.Blocked) != 2 {
		t.Errorf("blocked = %v", plan.Blocked)
	}

	// Dry run touches nothing.
	if g.branches["epic/v2"] {
		t.Error("dry run created the integration branch")
	}
	if len(sess.ops) != 0 {
		t.Errorf("dry run touched sessions: %v", sess.ops)
	}
	if _, err := c.store.LoadEpic("v2"); !errors.Is(err, store.ErrEpicNotFound) {
		t.Error("dry run persisted the epic")
	}
}

func TestEpicSpawn_RejectsCycles(t *testing.T) {
	c, _, _ := testCoordinator(t)

	specs := []TaskSpec{
		{Name: "a", BlockedBy: []string{"b"}},
		{Name: "b", BlockedBy: []string{"a"}},
	}
	_, err := c.EpicSpawn("v2", specs, false)
	if !errors.Is(err, deps.ErrDependencyCycle) {
		t.Errorf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestEpicSpawn(t *testing.T) {
	c, g, sess := testCoordinator(t)

	plan, err := c.EpicSpawn("v2", epicSpecs(), false)
	if err != nil {
		t.Fatalf("EpicSpawn: %v", err)
	}

	if !g.branches["epic/v2"] {
		t.Error("integration branch missing")
	}
	epic, err := c.store.LoadEpic("v2")
	if err != nil {
		t.Fatalf("LoadEpic: %v", err)
	}
	if epic.SessionRef != string(plan.SessionRef) {
		t.Errorf("session ref %q != plan %q", epic.SessionRef, plan.SessionRef)
	}

	// Only schema runs; the rest wait without windows.
	if !sess.windows[plan.SessionRef]["schema"] {
		t.Error("schema window missing")
	}
	for _, name := range []string{"api", "docs"} {
		task := epic.Find(name)
		if task.Status != store.StatusBlocked {
			t.Errorf("%s = %s, want blocked", name, task.Status)
		}
		if task.HasWindow() {
			t.Errorf("%s has a window while blocked", name)
		}
	}

	// Every task got a workspace and a briefing.
	for _, task := range epic.Tasks {
		if _, err := os.Stat(filepath.Join(task.Workspace.Path, ".wt", "task.md")); err != nil {
			t.Errorf("%s briefing missing: %v", task.Name, err)
		}
	}
}

func TestEpicComplete_ReleasesDependents(t *testing.T) {
	c, g, sess := testCoordinator(t)

	if _, err := c.EpicSpawn("v2", epicSpecs(), false); err != nil {
		t.Fatalf("EpicSpawn: %v", err)
	}

	result, err := c.EpicComplete("v2", "schema")
	if err != nil {
		t.Fatalf("EpicComplete: %v", err)
	}
	if len(g.merged) != 1 || g.merged[0] != "schema->epic/v2" {
		t.Errorf("merged = %v", g.merged)
	}
	if len(result.Unblocked) != 1 || result.Unblocked[0] != "api" {
		t.Errorf("unblocked = %v", result.Unblocked)
	}

	epic, _ := c.store.LoadEpic("v2")
	// Completed tasks stay in the document for later unblock checks.
	schema := epic.Find("schema")
	if schema == nil || schema.Status != store.StatusCompleted {
		t.Errorf("schema not kept as completed: %+v", schema)
	}
	if schema.HasWindow() {
		t.Error("schema window ref not cleared")
	}
	if epic.Find("api").Status != store.StatusInProgress {
		t.Error("api not activated")
	}
	if epic.Find("docs").Status != store.StatusBlocked {
		t.Error("docs should still wait on api")
	}

	ref := session.Ref(epic.SessionRef)
	if sess.windows[ref]["schema"] {
		t.Error("schema window survived completion")
	}
	if !sess.windows[ref]["api"] {
		t.Error("api window missing after release")
	}

	// Completing api then releases docs.
	result, err = c.EpicComplete("v2", "api")
	if err != nil {
		t.Fatalf("EpicComplete api: %v", err)
	}
	if len(result.Unblocked) != 1 || result.Unblocked[0] != "docs" {
		t.Errorf("unblocked = %v", result.Unblocked)
	}
}

func TestEpicComplete_RefusesDirty(t *testing.T) {
	c, g, _ := testCoordinator(t)

	if _, err := c.EpicSpawn("v2", epicSpecs(), false); err != nil {
		t.Fatal(err)
	}
	epic, _ := c.store.LoadEpic("v2")
	g.dirty[epic.Find("schema").Workspace.Path] = true

	_, err := c.EpicComplete("v2", "schema")
	if !errors.Is(err, git.ErrUncommittedChanges) {
		t.Fatalf("expected ErrUncommittedChanges, got %v", err)
	}
	if len(g.merged) != 0 {
		t.Error("merge attempted despite dirty workspace")
	}
}

func TestEpicCleanup(t *testing.T) {
	c, g, sess := testCoordinator(t)

	plan, err := c.EpicSpawn("v2", epicSpecs(), false)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.EpicCleanup("v2", false); err != nil {
		t.Fatalf("EpicCleanup: %v", err)
	}
	if sess.windows[plan.SessionRef] != nil {
		t.Error("epic session survived cleanup")
	}
	if len(g.removed) != 3 {
		t.Errorf("removed = %v, want all 3 workspaces", g.removed)
	}
	// The integration branch keeps the merged work.
	if !g.branches["epic/v2"] {
		t.Error("integration branch deleted")
	}
	if _, err := c.store.LoadEpic("v2"); !errors.Is(err, store.ErrEpicNotFound) {
		t.Error("epic document survived cleanup")
	}
}

func TestEpicCleanup_RefusesDirtyWithoutForce(t *testing.T) {
	c, g, _ := testCoordinator(t)

	if _, err := c.EpicSpawn("v2", epicSpecs(), false); err != nil {
		t.Fatal(err)
	}
	epic, _ := c.store.LoadEpic("v2")
	g.dirty[epic.Find("api").Workspace.Path] = true

	err := c.EpicCleanup("v2", false)
	if !errors.Is(err, git.ErrUncommittedChanges) {
		t.Fatalf("expected ErrUncommittedChanges, got %v", err)
	}
	if _, err := c.store.LoadEpic("v2"); err != nil {
		t.Error("refused cleanup removed the epic document")
	}

	if err := c.EpicCleanup("v2", true); err != nil {
		t.Fatalf("forced EpicCleanup: %v", err)
	}
}

func TestEpicStatus(t *testing.T) {
	c, _, _ := testCoordinator(t)

	if _, err := c.EpicSpawn("v2", epicSpecs(), false); err != nil {
		t.Fatal(err)
	}

	report, err := c.EpicStatus("v2")
	if err != nil {
		t.Fatalf("EpicStatus: %v", err)
	}
	if len(report.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(report.Entries))
	}
	for _, e := range report.Entries {
		if e.Task.Name == "schema" {
			if e.Window != session.Running {
				t.Errorf("schema window = %s", e.Window)
			}
			if e.Worker == nil {
				t.Error("schema worker status missing")
			}
		} else if e.Window != session.NoWindow {
			t.Errorf("%s window = %s, want no window", e.Task.Name, e.Window)
		}
	}

	if _, err := c.EpicStatus("missing"); !errors.Is(err, store.ErrEpicNotFound) {
		t.Errorf("expected ErrEpicNotFound, got %v", err)
	}
}
