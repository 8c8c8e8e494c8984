package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/history"
	"github.com/amiller68/wt/internal/store"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log [task]",
	Short: "Show the event history for this repository",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 50, "number of events to show")
}

func runLog(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	provider, err := git.NewExecProvider(wd, "")
	if err != nil {
		return err
	}

	l, err := history.Open()
	if err != nil {
		return err
	}
	defer l.Close()

	task := ""
	if len(args) == 1 {
		task = args[0]
	}
	events, err := l.Recent(store.RepoID(provider.RepoRoot()), task, logLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("%sNo events.%s\n", colorDim, colorReset)
		return nil
	}

	for _, e := range events {
		name := e.Task
		if name == "" {
			name = "-"
		}
		fmt.Printf("  %s  %s%-16s%s %-14s %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			colorCyan, name, colorReset,
			e.EventType, e.Detail)
	}
	return nil
}
