// Package tui is the live task board: every spawned task with its window
// and worker state, refreshed while you watch. Selecting a task and
// hitting enter drops you into its tmux window.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amiller68/wt/internal/orchestrator"
)

const refreshInterval = 2 * time.Second

// Model is the top-level bubbletea model.
type Model struct {
	coord *orchestrator.Coordinator

	entries []orchestrator.PsEntry
	cursor  int

	filter    textinput.Model
	filtering bool

	width  int
	height int

	statusMsg string
	attach    string // task to attach to after quitting
	quitting  bool
}

// New creates the board model.
func New(c *orchestrator.Coordinator) Model {
	fi := textinput.New()
	fi.Placeholder = "filter tasks..."
	fi.CharLimit = 60
	fi.Width = 30

	return Model{coord: c, filter: fi}
}

// AttachTarget is the task chosen with enter, empty when the user just
// quit. The caller attaches after the terminal is restored.
func (m Model) AttachTarget() string {
	return m.attach
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadTasks(m.coord), tick())
}

// visible returns the entries matching the current filter.
func (m Model) visible() []orchestrator.PsEntry {
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		return m.entries
	}
	var out []orchestrator.PsEntry
	for _, e := range m.entries {
		if strings.Contains(e.Task.Name, query) {
			out = append(out, e)
		}
	}
	return out
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// --- messages ---

type tasksLoadedMsg struct {
	entries []orchestrator.PsEntry
	err     error
}

type tickMsg time.Time

func loadTasks(c *orchestrator.Coordinator) tea.Cmd {
	return func() tea.Msg {
		entries, err := c.Ps()
		return tasksLoadedMsg{entries: entries, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
