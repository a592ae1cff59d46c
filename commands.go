package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pdxmph/todo-tui/internal/config"
	"github.com/pdxmph/todo-tui/internal/db"
	"github.com/pdxmph/todo-tui/internal/sms"
	"github.com/pdxmph/todo-tui/internal/tui"
	"github.com/pdxmph/todo-tui/internal/view"
)

// init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new task database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Database.Path
		if initFixtures {
			if err := db.CreateFixturesDatabase(path); err != nil {
				return err
			}
		} else if err := db.Initialize(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized database at %s\n", path)
		return nil
	},
}

var initFixtures bool

// add
var addCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

// edit
var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var (
	taskTitle       string
	taskDescription string
	taskPriority    string
	taskDue         string
	taskPhone       string
	taskClearDue    bool
)

// list
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in display order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var (
	listQuery         string
	listPriority      string
	listHideCompleted bool
)

// done
var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task done, or reopen a done task",
	Args:  cobra.ExactArgs(1),
	RunE: withTask(func(cmd *cobra.Command, a *app, task db.Task) error {
		if err := a.controller.ToggleDone(task); err != nil {
			return err
		}
		verb := "Completed"
		if task.Done {
			verb = "Reopened"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d: %s\n", verb, task.ID, task.Title)
		return nil
	}),
}

// rm
var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: withTask(func(cmd *cobra.Command, a *app, task db.Task) error {
		if err := a.controller.Delete(task); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d: %s\n", task.ID, task.Title)
		return nil
	}),
}

// sms
var smsCmd = &cobra.Command{
	Use:   "sms <id>",
	Short: "Text the task title to its phone number",
	Args: func(cmd *cobra.Command, args []string) error {
		if smsListBackends {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if smsListBackends {
			return runSMSBackends(cmd)
		}
		return withTask(func(cmd *cobra.Command, a *app, task db.Task) error {
			notice := a.controller.SendReminder(task)
			if !notice.OK {
				return fmt.Errorf("%s", notice.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), notice.Message)
			return nil
		})(cmd, args)
	},
}

var smsListBackends bool

func runSMSBackends(cmd *cobra.Command) error {
	m, err := sms.NewManager(cfg.SMS.Backend, cfg.SMSSettings())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, name := range sms.Backends() {
		marker := " "
		if name == m.Name() {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
	if !m.IsEnabled() {
		fmt.Fprintln(w, "No SMS backend is available")
	}
	return nil
}

// config
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !configSave {
			return cfg.Encode(cmd.OutOrStdout())
		}

		if configFlag != "" {
			if err := cfg.SaveTo(configFlag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFlag)
			return nil
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(dir, "config.toml"))
		return nil
	},
}

var configSave bool

// stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cliLogger(), view.DefaultFilter())
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.controller.Stats()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Total:         %d\n", s.Total)
		fmt.Fprintf(w, "Completed:     %d\n", s.Completed)
		fmt.Fprintf(w, "Pending:       %d\n", s.Pending)
		fmt.Fprintf(w, "Overdue:       %d\n", s.Overdue)
		fmt.Fprintf(w, "High priority: %d\n", s.HighPriority)
		fmt.Fprintf(w, "Completion:    %d%%\n", s.CompletionRate())
		return nil
	},
}

// migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the database schema and print its version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(cfg.Database.Path, db.Options{Logger: cliLogger()})
		if err != nil {
			return err
		}
		defer store.Close()

		v, err := store.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d\n", v)
		return nil
	},
}

// version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todo-tui %s\n", version)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initFixtures, "fixtures", false, "seed the database with sample tasks")

	for _, cmd := range []*cobra.Command{addCmd, editCmd} {
		cmd.Flags().StringVarP(&taskDescription, "description", "d", "", "description")
		cmd.Flags().StringVarP(&taskPriority, "priority", "p", "medium", "priority: low, medium or high")
		cmd.Flags().StringVar(&taskDue, "due", "", "due date ("+tui.DueDateLayout+")")
		cmd.Flags().StringVar(&taskPhone, "phone", "", "phone number for SMS reminders")
	}
	editCmd.Flags().StringVarP(&taskTitle, "title", "t", "", "new title")
	editCmd.Flags().BoolVar(&taskClearDue, "clear-due", false, "remove the due date")

	smsCmd.Flags().BoolVar(&smsListBackends, "backends", false, "list SMS backends and mark the one in use")
	configCmd.Flags().BoolVar(&configSave, "save", false, "write the configuration to the config file")

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "only tasks whose title or description contains this text")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "only tasks with this priority")
	listCmd.Flags().BoolVar(&listHideCompleted, "hide-completed", false, "omit done tasks")

	rootCmd.AddCommand(initCmd, addCmd, editCmd, listCmd, doneCmd, rmCmd, smsCmd, statsCmd, migrateCmd, configCmd, versionCmd)
}

func cliLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

// withTask opens the app and loads the task named by the first argument
func withTask(fn func(cmd *cobra.Command, a *app, task db.Task) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}

		a, err := openApp(cliLogger(), view.DefaultFilter())
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := a.store.GetTask(id)
		if err != nil {
			return err
		}
		return fn(cmd, a, *task)
	}
}

func parseDue(s string) (*time.Time, error) {
	t, err := time.ParseInLocation(tui.DueDateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (want %s)", s, tui.DueDateLayout)
	}
	return &t, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	priority, err := db.ParsePriority(taskPriority)
	if err != nil {
		return err
	}
	var due *time.Time
	if taskDue != "" {
		if due, err = parseDue(taskDue); err != nil {
			return err
		}
	}

	a, err := openApp(cliLogger(), view.DefaultFilter())
	if err != nil {
		return err
	}
	defer a.Close()

	c := a.controller
	title := strings.Join(args, " ")
	c.SetTitle(title)
	c.SetDescription(taskDescription)
	c.SetPhoneNumber(taskPhone)
	c.SetPriority(priority)
	c.SetDueDate(due)

	added, err := c.Add()
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("title must not be blank")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q\n", strings.TrimSpace(title))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withTask(func(cmd *cobra.Command, a *app, task db.Task) error {
		c := a.controller
		c.StartEditing(task)

		flags := cmd.Flags()
		if flags.Changed("title") {
			c.SetTitle(taskTitle)
		}
		if flags.Changed("description") {
			c.SetDescription(taskDescription)
		}
		if flags.Changed("phone") {
			c.SetPhoneNumber(taskPhone)
		}
		if flags.Changed("priority") {
			p, err := db.ParsePriority(taskPriority)
			if err != nil {
				return err
			}
			c.SetPriority(p)
		}
		if flags.Changed("due") {
			due, err := parseDue(taskDue)
			if err != nil {
				return err
			}
			c.SetDueDate(due)
		}
		if taskClearDue {
			c.SetDueDate(nil)
		}

		added, err := c.Add()
		if err != nil {
			return err
		}
		if !added {
			return fmt.Errorf("title must not be blank")
		}
		updated, err := a.store.GetTask(task.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d: %s\n", updated.ID, updated.Title)
		return nil
	})(cmd, args)
}

func runList(cmd *cobra.Command, args []string) error {
	filter := view.Filter{
		Query:         listQuery,
		ShowCompleted: cfg.UI.ShowCompleted && !listHideCompleted,
	}
	if listPriority != "" {
		p, err := db.ParsePriority(listPriority)
		if err != nil {
			return err
		}
		filter.Priority = &p
	}

	a, err := openApp(cliLogger(), filter)
	if err != nil {
		return err
	}
	defer a.Close()

	printTasks(cmd.OutOrStdout(), a.controller.Tasks(), time.Now())
	return nil
}

func printTasks(w io.Writer, tasks []db.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}

	for _, t := range tasks {
		mark := " "
		if t.Done {
			mark = "x"
		}
		name := t.Priority.String()
		label := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Priority.Info().Hex)).
			Render(name) + strings.Repeat(" ", max(6-len(name), 0))

		line := fmt.Sprintf("%d [%s] %s %s", t.ID, mark, label, t.Title)
		if t.DueDate != nil {
			line += " (due " + t.DueDate.Format(cfg.UI.DateFormat)
			if t.IsOverdue(now) {
				line += ", overdue"
			}
			line += ")"
		}
		fmt.Fprintln(w, line)
	}
}
