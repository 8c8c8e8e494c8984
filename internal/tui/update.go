package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		m.clampCursor()
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tea.Batch(loadTasks(m.coord), tick())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.cursor--
		m.clampCursor()

	case "down", "j":
		m.cursor++
		m.clampCursor()

	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, nil

	case "r":
		return m, loadTasks(m.coord)

	case "x":
		visible := m.visible()
		if m.cursor < len(visible) {
			name := visible[m.cursor].Task.Name
			if err := m.coord.Kill(name); err != nil {
				m.statusMsg = "kill failed: " + err.Error()
			} else {
				m.statusMsg = "killed " + name
			}
			return m, loadTasks(m.coord)
		}

	case "enter":
		visible := m.visible()
		if m.cursor < len(visible) {
			// Attaching needs the raw terminal back, so quit first and
			// let the caller attach.
			m.attach = visible[m.cursor].Task.Name
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filtering = false
		m.filter.Blur()
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.clampCursor()
	return m, cmd
}
