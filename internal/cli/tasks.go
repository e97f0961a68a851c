package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/recordroute/internal/errs"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks [task-id]",
	Short: "List or inspect pipeline tasks",
	Long: `List all tasks known to this process or inspect one by id.

The registry is in-memory only; a fresh invocation starts empty.

Examples:
  recordroute tasks           # List all tasks
  recordroute tasks abc123    # Show details for task abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTasks,
}

var tasksCancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Mark a task as cancelled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tasks.Cancel(args[0]) {
			return errs.NotFound("task %s", args[0])
		}
		fmt.Printf("Cancelled %s\n", args[0])
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksCancelCmd)
}

func runTasks(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return showTask(args[0])
	}
	return listTasks()
}

func listTasks() error {
	all := tasks.List()
	if len(all) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	fmt.Printf("%-38s %-10s %-10s %-9s %s\n", "ID", "TYPE", "STATUS", "PROGRESS", "STARTED")
	fmt.Println("------------------------------------------------------------------------------------")

	for _, info := range all {
		fmt.Printf("%-38s %-10s %-10s %8d%% %s\n",
			info.TaskID, info.TaskType, info.Status, info.Progress,
			info.StartedAt.Format("15:04:05"))
	}

	return nil
}

func showTask(id string) error {
	info, ok := tasks.Get(id)
	if !ok {
		return errs.NotFound("task %s", id)
	}

	fmt.Printf("Task: %s\n", info.TaskID)
	fmt.Printf("  Type: %s\n", info.TaskType)
	fmt.Printf("  File: %s\n", info.FileUUID)
	fmt.Printf("  Status: %s\n", info.Status)
	fmt.Printf("  Progress: %d%%\n", info.Progress)
	fmt.Printf("  Message: %s\n", info.Message)
	fmt.Printf("  Started: %s\n", info.StartedAt.Format(time.RFC3339))

	return nil
}
