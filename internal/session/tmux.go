package session

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Tmux is the real Orchestrator, shelling out to the tmux binary.
type Tmux struct{}

var _ Orchestrator = (*Tmux)(nil)

// NewTmux verifies tmux is on PATH and returns the adapter.
func NewTmux() (*Tmux, error) {
	if _, err := exec.LookPath("tmux"); err != nil {
		return nil, fmt.Errorf("%w: tmux not found in PATH", ErrSessionUnavailable)
	}
	return &Tmux{}, nil
}

// run executes a tmux command and returns trimmed stdout.
func (t *Tmux) run(args ...string) (string, error) {
	out, err := exec.Command("tmux", args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("tmux %s: %s", args[0], msg)
	}
	return strings.TrimSpace(string(out)), nil
}

func (t *Tmux) hasSession(ref Ref) bool {
	return exec.Command("tmux", "has-session", "-t", "="+string(ref)).Run() == nil
}

func (t *Tmux) EnsureSession(ref Ref) error {
	if t.hasSession(ref) {
		return nil
	}
	// The placeholder window keeps tmux from exiting the session before
	// the first real window arrives; CreateWindow kills it.
	if _, err := t.run("new-session", "-d", "-s", string(ref), "-n", "_wt"); err != nil {
		return fmt.Errorf("create session %q: %w", ref, err)
	}
	return nil
}

func (t *Tmux) CreateWindow(ref Ref, window, dir, startCmd string) error {
	windows, err := t.ListWindows(ref)
	if err != nil {
		return err
	}
	for _, w := range windows {
		if w == window {
			return fmt.Errorf("%w: %s:%s", ErrWindowExists, ref, window)
		}
	}

	args := []string{"new-window", "-t", string(ref), "-n", window, "-c", dir}
	if startCmd != "" {
		args = append(args, startCmd)
	}
	if _, err := t.run(args...); err != nil {
		return fmt.Errorf("create window %q: %w", window, err)
	}

	for _, w := range windows {
		if w == "_wt" {
			t.run("kill-window", "-t", string(ref)+":_wt")
			break
		}
	}
	return nil
}

func (t *Tmux) KillWindow(ref Ref, window string) error {
	if !t.hasSession(ref) {
		return nil
	}
	windows, err := t.ListWindows(ref)
	if err != nil {
		return err
	}
	for _, w := range windows {
		if w == window {
			if _, err := t.run("kill-window", "-t", string(ref)+":"+window); err != nil {
				return fmt.Errorf("kill window %q: %w", window, err)
			}
			return nil
		}
	}
	return nil
}

func (t *Tmux) WindowStatus(ref Ref, window, workerProc string) (Status, error) {
	if !t.hasSession(ref) {
		return NoSession, nil
	}
	out, err := t.run("list-panes", "-t", string(ref)+":"+window,
		"-F", "#{pane_current_command}")
	if err != nil {
		// tmux reports missing windows through stderr; any failure on an
		// existing session means the window is gone.
		return NoWindow, nil
	}
	for _, proc := range strings.Split(out, "\n") {
		if strings.TrimSpace(proc) == workerProc {
			return Running, nil
		}
	}
	return Exited, nil
}

func (t *Tmux) SelectWindow(ref Ref, window string) error {
	windows, err := t.ListWindows(ref)
	if err != nil {
		return err
	}
	for _, w := range windows {
		if w == window {
			if _, err := t.run("select-window", "-t", string(ref)+":"+window); err != nil {
				return fmt.Errorf("select window %q: %w", window, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s:%s", ErrWindowNotFound, ref, window)
}

// Attach hands the terminal over to tmux until the user detaches. Inside
// an existing tmux client it switches instead, since nesting is refused.
func (t *Tmux) Attach(ref Ref) error {
	if os.Getenv("TMUX") != "" {
		if _, err := t.run("switch-client", "-t", string(ref)); err != nil {
			return fmt.Errorf("switch to session %q: %w", ref, err)
		}
		return nil
	}
	cmd := exec.Command("tmux", "attach-session", "-t", string(ref))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("attach to session %q: %w", ref, err)
	}
	return nil
}

func (t *Tmux) ListWindows(ref Ref) ([]string, error) {
	if !t.hasSession(ref) {
		return nil, nil
	}
	out, err := t.run("list-windows", "-t", string(ref), "-F", "#{window_name}")
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (t *Tmux) KillSession(ref Ref) error {
	if !t.hasSession(ref) {
		return nil
	}
	if _, err := t.run("kill-session", "-t", string(ref)); err != nil {
		return fmt.Errorf("kill session %q: %w", ref, err)
	}
	return nil
}
