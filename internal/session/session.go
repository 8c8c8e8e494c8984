// Package session places worker processes into terminal multiplexer
// windows and answers liveness questions about them. One session holds the
// pooled spawn windows for a repository; each epic gets a session of its
// own. Every call names its session explicitly, nothing here keeps a
// current-session global.
package session

import (
	"errors"
	"fmt"
)

var (
	// ErrWindowExists is returned by CreateWindow when the window is
	// already present. Creation is never silently skipped.
	ErrWindowExists   = errors.New("window already exists")
	ErrWindowNotFound = errors.New("window not found")
	// ErrSessionUnavailable means the multiplexer itself cannot be
	// reached: binary missing from PATH or no reachable server.
	ErrSessionUnavailable = errors.New("session backend unavailable")
)

// Status is what a window's pane is doing right now.
type Status int

const (
	// NoSession: the whole session is gone.
	NoSession Status = iota
	// NoWindow: session exists but the window does not.
	NoWindow
	// Running: the pane's foreground process is the worker.
	Running
	// Exited: the pane exists but the worker is no longer in the
	// foreground (a shell or anything else has taken over).
	Exited
)

func (s Status) String() string {
	switch s {
	case NoSession:
		return "no session"
	case NoWindow:
		return "no window"
	case Running:
		return "running"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Ref names a session. Pooled spawn sessions are one per repository,
// epic sessions one per epic; the repo identity keeps unrelated
// repositories from colliding.
type Ref string

// PooledRef is the shared session for plain spawned tasks.
func PooledRef(repoID string) Ref {
	return Ref("wt-" + repoID)
}

// EpicRef is the dedicated session for one epic's tasks.
func EpicRef(repoID, epicID string) Ref {
	return Ref(fmt.Sprintf("wt-%s-%s", repoID, epicID))
}

// WindowRef is the stored handle for a task's window.
func WindowRef(ref Ref, window string) string {
	return string(ref) + ":" + window
}

// Orchestrator creates and inspects sessions and windows. The tmux adapter
// implements it for real; orchestrator tests use a fake.
type Orchestrator interface {
	// EnsureSession creates the session if it does not exist (detached,
	// no default window left behind). Idempotent.
	EnsureSession(ref Ref) error

	// CreateWindow adds a window running startCmd in dir. ErrWindowExists
	// if the window is already present in the session.
	CreateWindow(ref Ref, window, dir, startCmd string) error

	// KillWindow destroys the window. Missing window or session is a
	// no-op, so cleanup paths can call it unconditionally.
	KillWindow(ref Ref, window string) error

	// WindowStatus classifies the window's pane. workerProc is the
	// process name that counts as Running.
	WindowStatus(ref Ref, window, workerProc string) (Status, error)

	// SelectWindow makes the window current within its session.
	// ErrWindowNotFound when the window (or the session) is absent.
	SelectWindow(ref Ref, window string) error

	// Attach hands the calling terminal to the session and blocks until
	// the user detaches.
	Attach(ref Ref) error

	// ListWindows returns the window names in the session, or nil when
	// the session does not exist.
	ListWindows(ref Ref) ([]string, error)

	// KillSession destroys the session and every window in it. Missing
	// session is a no-op.
	KillSession(ref Ref) error
}
