package store

import "time"

// TaskStatus represents where a spawned task is in its lifecycle.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusBlocked    TaskStatus = "blocked"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// CanAdvanceTo reports whether moving from s to next is a legal forward
// transition. Status only ever moves forward: pending/blocked → in_progress
// → completed. A task leaving via kill is removed, not transitioned.
func (s TaskStatus) CanAdvanceTo(next TaskStatus) bool {
	rank := map[TaskStatus]int{
		StatusPending:    0,
		StatusBlocked:    0,
		StatusInProgress: 1,
		StatusCompleted:  2,
	}
	return rank[next] > rank[s]
}

// Workspace points at the checkout owned by the workspace provider.
// The store holds only this reference, never a copy of workspace state.
type Workspace struct {
	Path   string `json:"path"`
	Branch string `json:"branch"`
}

// Task is one unit of delegated work: a workspace on its own branch plus,
// while active, exactly one tmux window hosting the worker.
type Task struct {
	// Name is unique within the repository; slashes are allowed so names
	// can mirror branch namespacing (e.g. "auth/login").
	Name      string     `json:"identifier"`
	Branch    string     `json:"branch"`
	Context   string     `json:"context,omitempty"`
	Issue     string     `json:"issue,omitempty"`
	Status    TaskStatus `json:"status"`
	BlockedBy []string   `json:"blockedBy,omitempty"`
	Workspace Workspace  `json:"workspaceRef"`
	// WindowRef is the session-orchestrator handle ("session:window").
	// Non-empty if and only if a window exists for this task.
	WindowRef string    `json:"windowRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasWindow reports whether a window has been created and not yet destroyed.
func (t Task) HasWindow() bool {
	return t.WindowRef != ""
}

// Epic groups tasks that share one integration branch and one tmux session,
// with blocked-by edges between them.
type Epic struct {
	ID                string    `json:"epicId"`
	IntegrationBranch string    `json:"integrationBranch"`
	SessionRef        string    `json:"sessionRef"`
	Tasks             []Task    `json:"tasks"`
	Created           time.Time `json:"created"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// Find returns a pointer to the named task inside the epic, or nil.
func (e *Epic) Find(name string) *Task {
	for i := range e.Tasks {
		if e.Tasks[i].Name == name {
			return &e.Tasks[i]
		}
	}
	return nil
}
