// Command todo is a single-user terminal to-do list backed by SQLite.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pdxmph/todo-tui/internal/config"
	"github.com/pdxmph/todo-tui/internal/db"
	"github.com/pdxmph/todo-tui/internal/sms"
	"github.com/pdxmph/todo-tui/internal/todo"
	"github.com/pdxmph/todo-tui/internal/tui"
	"github.com/pdxmph/todo-tui/internal/view"

	// Register SMS backends
	_ "github.com/pdxmph/todo-tui/internal/sms/command"
	_ "github.com/pdxmph/todo-tui/internal/sms/kdeconnect"
)

// Set by the release build
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

var (
	dbFlag     string
	configFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "todo",
	Short:         "A terminal to-do list",
	Long:          "A terminal to-do list. Without a subcommand it opens the interactive UI, or prints the list when output is not a terminal.",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configFlag != "" {
			cfg, err = config.LoadFrom(configFlag)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if dbFlag != "" {
			cfg.Database.Path = dbFlag
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return runList(cmd, args)
		}
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "database path (overrides config and $"+config.EnvDatabase+")")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.config/todo-tui/config.toml)")
}

// app is the store, pipeline and controller opened for one command
type app struct {
	store      *db.DB
	pipeline   *view.Pipeline
	controller *todo.Controller
}

func openApp(logger *log.Logger, filter view.Filter) (*app, error) {
	store, err := db.Open(cfg.Database.Path, db.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	messenger, err := sms.NewManager(cfg.SMS.Backend, cfg.SMSSettings())
	if err != nil {
		store.Close()
		return nil, err
	}

	p := view.New(store, view.WithFilter(filter))
	return &app{
		store:      store,
		pipeline:   p,
		controller: todo.New(store, p, todo.WithMessenger(messenger)),
	}, nil
}

func (a *app) Close() {
	a.pipeline.Close()
	a.store.Close()
}

func runTUI() error {
	// Keep log output off the alt screen
	a, err := openApp(log.New(io.Discard, "", 0), view.Filter{ShowCompleted: cfg.UI.ShowCompleted})
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(tui.New(a.controller, cfg.UI.DateFormat), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
