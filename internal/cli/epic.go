package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amiller68/wt/internal/orchestrator"
)

var (
	epicDryRun bool
	epicForce  bool
)

var epicCmd = &cobra.Command{
	Use:   "epic",
	Short: "Run a batch of dependent tasks on a shared integration branch",
	Long: `An epic groups related tasks. They merge into a dedicated integration
branch instead of the base branch, live in their own tmux session, and
start in dependency order as their blockers complete.`,
}

var epicSpawnCmd = &cobra.Command{
	Use:   "spawn [id] [plan.yaml]",
	Short: "Start an epic from a plan file",
	Long: `The plan file lists the epic's tasks:

  tasks:
    - name: schema
      context: design the tables
    - name: api
      context: expose endpoints
      blocked_by: [schema]

Tasks with no outstanding blockers start immediately; the rest wait and
are started automatically as completions release them.`,
	Args: cobra.ExactArgs(2),
	RunE: runEpicSpawn,
}

var epicStatusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show every task in an epic",
	Args:  cobra.ExactArgs(1),
	RunE:  runEpicStatus,
}

var epicCompleteCmd = &cobra.Command{
	Use:   "complete [id] [task]",
	Short: "Merge a finished task into the integration branch",
	Args:  cobra.ExactArgs(2),
	RunE:  runEpicComplete,
}

var epicCleanupCmd = &cobra.Command{
	Use:   "cleanup [id]",
	Short: "Tear an epic down, keeping its integration branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runEpicCleanup,
}

var epicAttachCmd = &cobra.Command{
	Use:   "attach [id]",
	Short: "Attach to an epic's session",
	Args:  cobra.ExactArgs(1),
	RunE:  runEpicAttach,
}

var epicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List epics",
	RunE:  runEpicList,
}

func init() {
	epicSpawnCmd.Flags().BoolVar(&epicDryRun, "dry-run", false, "print the plan without touching anything")
	epicCleanupCmd.Flags().BoolVar(&epicForce, "force", false, "discard uncommitted changes in task workspaces")

	epicCmd.AddCommand(epicSpawnCmd)
	epicCmd.AddCommand(epicStatusCmd)
	epicCmd.AddCommand(epicCompleteCmd)
	epicCmd.AddCommand(epicCleanupCmd)
	epicCmd.AddCommand(epicAttachCmd)
	epicCmd.AddCommand(epicListCmd)
}

// planFile is the on-disk epic plan.
type planFile struct {
	Tasks []struct {
		Name      string   `yaml:"name"`
		Context   string   `yaml:"context,omitempty"`
		Issue     string   `yaml:"issue,omitempty"`
		BlockedBy []string `yaml:"blocked_by,omitempty"`
	} `yaml:"tasks"`
}

func loadPlan(path string) ([]orchestrator.TaskSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var plan planFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	specs := make([]orchestrator.TaskSpec, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		if t.Name == "" {
			return nil, fmt.Errorf("plan has a task without a name")
		}
		specs = append(specs, orchestrator.TaskSpec{
			Name:      t.Name,
			Context:   t.Context,
			Issue:     t.Issue,
			BlockedBy: t.BlockedBy,
		})
	}
	return specs, nil
}

func runEpicSpawn(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	specs, err := loadPlan(args[1])
	if err != nil {
		return err
	}
	plan, err := c.EpicSpawn(args[0], specs, epicDryRun)
	if err != nil {
		return err
	}

	verb := "spawned"
	if epicDryRun {
		verb = "would spawn"
	}
	fmt.Printf("%sepic %s%s %s on %s%s%s\n",
		colorBold, plan.EpicID, colorReset, verb, colorCyan, plan.IntegrationBranch, colorReset)
	for _, name := range plan.Started {
		fmt.Printf("  %sstarted%s %s\n", colorGreen, colorReset, name)
	}
	for _, name := range plan.Blocked {
		fmt.Printf("  %swaiting%s %s\n", colorYellow, colorReset, name)
	}
	if !epicDryRun {
		fmt.Printf("  attach: %swt epic attach %s%s\n", colorDim, plan.EpicID, colorReset)
	}
	return nil
}

func runEpicStatus(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := c.EpicStatus(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%sepic %s%s on %s, updated %s\n",
		colorBold, report.Epic.ID, colorReset,
		report.Epic.IntegrationBranch,
		report.Epic.LastUpdated.Format("2006-01-02 15:04"))
	for _, e := range report.Entries {
		worker := "-"
		if e.Worker != nil {
			worker = string(e.Worker.Status)
			if e.Worker.Message != "" {
				worker += ": " + e.Worker.Message
			}
		}
		blocked := ""
		if len(e.Task.BlockedBy) > 0 {
			blocked = colorDim + " (after " + strings.Join(e.Task.BlockedBy, ", ") + ")" + colorReset
		}
		fmt.Printf("  %-20s %s%-12s%s %s%-10s%s %s%s\n",
			e.Task.Name,
			statusColor(string(e.Task.Status)), e.Task.Status, colorReset,
			statusColor(e.Window.String()), e.Window, colorReset,
			worker, blocked)
	}
	return nil
}

func runEpicComplete(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := c.EpicComplete(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("%s%s%s merged into %s%s%s\n",
		colorBold, args[1], colorReset, colorGreen, result.Base, colorReset)
	for _, name := range result.Unblocked {
		fmt.Printf("  %sstarted%s %s\n", colorCyan, colorReset, name)
	}
	return nil
}

func runEpicCleanup(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := c.EpicCleanup(args[0], epicForce); err != nil {
		return err
	}
	fmt.Printf("%sepic %s%s cleaned up, work kept on %sepic/%s%s\n",
		colorBold, args[0], colorReset, colorGreen, args[0], colorReset)
	return nil
}

func runEpicAttach(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()
	return c.EpicAttach(args[0])
}

func runEpicList(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	ids, err := c.Epics()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Printf("%sNo epics.%s\n", colorDim, colorReset)
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
