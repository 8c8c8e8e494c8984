package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amiller68/wt/internal/brief"
	"github.com/amiller68/wt/internal/orchestrator"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle      = lipgloss.NewStyle().Foreground(clrDim)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	runningStyle  = lipgloss.NewStyle().Foreground(clrGreen)
	blockedStyle  = lipgloss.NewStyle().Foreground(clrRed)
	exitedStyle   = lipgloss.NewStyle().Foreground(clrSubtle)
	doneStyle     = lipgloss.NewStyle().Foreground(clrBlue)
	dirtyStyle    = lipgloss.NewStyle().Foreground(clrYellow)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wt board"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d tasks", len(m.entries))))
	b.WriteString("\n\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("  nothing here"))
		b.WriteString("\n")
	}
	for i, e := range visible {
		cursor := "  "
		name := e.Task.Name
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
			name = selectedStyle.Render(name)
		}

		dirty := ""
		if e.Dirty {
			dirty = dirtyStyle.Render(" *")
		}
		b.WriteString(fmt.Sprintf("%s%-28s %s %s%s\n",
			cursor, name, windowBadge(e), workerBadge(e), dirty))
	}

	b.WriteString("\n")
	if m.filtering {
		b.WriteString(m.filter.View())
	} else if m.statusMsg != "" {
		b.WriteString(dimStyle.Render(m.statusMsg))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter attach · x kill · / filter · r refresh · q quit"))
	return b.String()
}

func windowBadge(e orchestrator.PsEntry) string {
	switch {
	case e.Task.Status == store.StatusBlocked:
		return blockedStyle.Render("waiting ")
	case e.Window == session.Running:
		return runningStyle.Render("running ")
	case e.Window == session.Exited:
		return exitedStyle.Render("exited  ")
	default:
		return exitedStyle.Render("no win  ")
	}
}

func workerBadge(e orchestrator.PsEntry) string {
	if e.Worker == nil {
		return dimStyle.Render("-")
	}
	label := string(e.Worker.Status)
	switch {
	case e.Worker.NeedsAttention():
		if e.Worker.Message != "" {
			label += ": " + e.Worker.Message
		}
		return blockedStyle.Render(label)
	case e.Worker.Status == brief.StateDone:
		return doneStyle.Render(label)
	default:
		return runningStyle.Render(label)
	}
}
