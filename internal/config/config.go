package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pdxmph/todo-tui/internal/sms"
)

// EnvDatabase overrides the configured database path
const EnvDatabase = "TODO_DB"

// DefaultDateFormat is the layout used to show due dates
const DefaultDateFormat = "Jan 02, 2006"

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	SMS      SMSConfig      `toml:"sms"`
	UI       UIConfig       `toml:"ui"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// SMSConfig selects and configures the reminder backend
type SMSConfig struct {
	// Backend names a registered backend. Empty picks the first available one.
	Backend string `toml:"backend"`

	// Command is the argv template for the command backend
	Command []string `toml:"command"`
}

// UIConfig holds display preferences
type UIConfig struct {
	DateFormat    string `toml:"date_format"`
	ShowCompleted bool   `toml:"show_completed"`
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "todo-tui", "tasks.db"),
		},
		UI: UIConfig{
			DateFormat:    DefaultDateFormat,
			ShowCompleted: true,
		},
	}
}

// Dir returns the standard configuration directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "todo-tui"), nil
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.toml"))
}

// LoadFrom loads configuration from a specific path
func LoadFrom(configPath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	if env := os.Getenv(EnvDatabase); env != "" {
		cfg.Database.Path = env
	}

	// Expand home directory in paths
	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path)
	}
	if cfg.UI.DateFormat == "" {
		cfg.UI.DateFormat = DefaultDateFormat
	}

	return cfg, nil
}

// SMSSettings converts the [sms] section for the backends
func (c *Config) SMSSettings() sms.Settings {
	return sms.Settings{Command: c.SMS.Command}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "~" || (len(path) > 1 && path[0] == '~' && path[1] == '/') {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return c.SaveTo(filepath.Join(dir, "config.toml"))
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return c.Encode(f)
}

// Encode writes the configuration as TOML
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
