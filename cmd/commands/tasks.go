package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/todolist/internal/tasks"
)

var (
	mutedColor = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	doneStyle  = lipgloss.NewStyle().Strikethrough(true).Foreground(mutedColor)
	idStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

// NewTasksCommand returns the tasks subcommand.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage tasks from the terminal",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all tasks",
				Action: runTasksList,
			},
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<title> [description]",
				Action:    runTasksAdd,
			},
			{
				Name:      "done",
				Usage:     "Toggle a task's completed flag",
				ArgsUsage: "<task_id>",
				Action:    runTasksDone,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<task_id>",
				Action:    runTasksRm,
			},
		},
		DefaultCommand: "list",
	}
}

func openStore(cmd *cli.Command) (*tasks.Store, error) {
	cfg := loadConfig(cmd)
	store := tasks.NewStore(cfg.Store.Path)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return store, nil
}

func runTasksList(_ context.Context, cmd *cli.Command) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	return printTasks(os.Stdout, store, term.IsTerminal(int(os.Stdout.Fd())))
}

// printTasks writes the task table. Styling is only applied for terminals.
func printTasks(out io.Writer, store *tasks.Store, styled bool) error {
	list := store.ListTasks()
	if len(list) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tCREATED\tTITLE")
	for _, t := range list {
		id, title, done := t.ID, t.Title.Plain(), "[ ]"
		if t.Completed {
			done = "[x]"
		}
		if styled {
			id = idStyle.Render(id)
			if t.Completed {
				title = doneStyle.Render(title)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, done, t.CreatedAt, title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	st := store.Stats()
	_, err := fmt.Fprintf(out, "\nTotal tasks: %d | Completed: %d\n", st.Total, st.Completed)
	return err
}

func runTasksAdd(_ context.Context, cmd *cli.Command) error {
	title := cmd.Args().First()
	if title == "" {
		return fmt.Errorf("usage: todolist tasks add <title> [description]")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	t, err := store.AddTask(title, cmd.Args().Get(1))
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	fmt.Printf("Task added: %s\n", t.ID)
	return nil
}

func runTasksDone(_ context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: todolist tasks done <task_id>")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	t, err := store.ToggleTask(taskID)
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	if t.Completed {
		fmt.Printf("Task %s completed.\n", t.ID)
	} else {
		fmt.Printf("Task %s reopened.\n", t.ID)
	}
	return nil
}

func runTasksRm(_ context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: todolist tasks rm <task_id>")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	if err := store.DeleteTask(taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	fmt.Printf("Task %s deleted.\n", taskID)
	return nil
}
