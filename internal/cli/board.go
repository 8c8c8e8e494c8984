package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/amiller68/wt/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the live task board",
	Long:  "An interactive board showing every task's window and worker state, refreshed live. Enter attaches to the selected task, x kills it.",
	RunE:  runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	model := tui.New(c)
	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}

	// Attach after the alt screen is torn down, or tmux would fight
	// bubbletea for the terminal.
	if m, ok := final.(tui.Model); ok && m.AttachTarget() != "" {
		return c.Attach(m.AttachTarget())
	}
	return nil
}
