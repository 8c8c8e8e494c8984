package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List tasks with window and workspace state",
	RunE:  runPs,
}

func runPs(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := c.Ps()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("%sNo tasks.%s Start one: %swt spawn <name>%s\n",
			colorDim, colorReset, colorCyan, colorReset)
		return nil
	}

	fmt.Printf("%s%-24s %-12s %-10s %-8s %6s  %s%s\n",
		colorBold, "TASK", "WINDOW", "WORKER", "STATUS", "AHEAD", "DIRTY", colorReset)
	for _, e := range entries {
		window := e.Window.String()
		worker := "-"
		if e.Worker != nil {
			worker = string(e.Worker.Status)
		}
		dirty := ""
		if e.Dirty {
			dirty = colorYellow + "yes" + colorReset
		}
		fmt.Printf("%-24s %s%-12s%s %s%-10s%s %s%-8s%s %6d  %s\n",
			e.Task.Name,
			statusColor(window), window, colorReset,
			statusColor(worker), worker, colorReset,
			statusColor(string(e.Task.Status)), e.Task.Status, colorReset,
			e.CommitsAhead, dirty)
	}
	return nil
}
