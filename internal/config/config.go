package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"duopane/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
type Config struct {
	Panes struct {
		Left       string `yaml:"left"`        // Start directory of the left pane
		Right      string `yaml:"right"`       // Start directory of the right pane
		ShowHidden bool   `yaml:"show_hidden"` // List dot files
	} `yaml:"panes"`
	Operations struct {
		PollIntervalMS int  `yaml:"poll_interval_ms"` // Copy progress sampling interval
		ConfirmDelete  bool `yaml:"confirm_delete"`   // Ask before removing
		HistorySize    int  `yaml:"history_size"`     // Undo entries kept
	} `yaml:"operations"`
	Watch struct {
		Enabled    bool `yaml:"enabled"`     // Refresh panes on filesystem events
		DebounceMS int  `yaml:"debounce_ms"` // Quiet period before a refresh
	} `yaml:"watch"`
	Openers struct {
		Default    string            `yaml:"default"`    // Command for non-text files
		Editor     string            `yaml:"editor"`     // Overrides $EDITOR for text files
		Extensions map[string]string `yaml:"extensions"` // Extension to command template
	} `yaml:"openers"`
	Theme struct {
		Name     string `yaml:"name"`     // Theme name (default, dark, light, etc.)
		Primary  string `yaml:"primary"`  // Primary color for branding
		Success  string `yaml:"success"`  // Success message color
		Warning  string `yaml:"warning"`  // Warning message color
		Error    string `yaml:"error"`    // Error message color
		Info     string `yaml:"info"`     // Informational message color
		Emphasis string `yaml:"emphasis"` // Emphasis color for text that should stand out
		Border   string `yaml:"border"`   // Border color for frames
	} `yaml:"theme"`
}

// DefaultPath returns ~/.config/duopane/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "duopane", "config.yaml"), nil
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.InvalidConfig, err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	// Booleans are only overridden when their section is present
	var present map[string]map[string]interface{}
	_ = yaml.Unmarshal(data, &present)
	has := func(section, key string) bool {
		_, ok := present[section][key]
		return ok
	}

	if tempCfg.Panes.Left != "" {
		cfg.Panes.Left = tempCfg.Panes.Left
	}
	if tempCfg.Panes.Right != "" {
		cfg.Panes.Right = tempCfg.Panes.Right
	}
	if has("panes", "show_hidden") {
		cfg.Panes.ShowHidden = tempCfg.Panes.ShowHidden
	}

	if has("operations", "poll_interval_ms") {
		cfg.Operations.PollIntervalMS = tempCfg.Operations.PollIntervalMS
	}
	if has("operations", "confirm_delete") {
		cfg.Operations.ConfirmDelete = tempCfg.Operations.ConfirmDelete
	}
	if has("operations", "history_size") {
		cfg.Operations.HistorySize = tempCfg.Operations.HistorySize
	}

	if has("watch", "enabled") {
		cfg.Watch.Enabled = tempCfg.Watch.Enabled
	}
	if has("watch", "debounce_ms") {
		cfg.Watch.DebounceMS = tempCfg.Watch.DebounceMS
	}

	if tempCfg.Openers.Default != "" {
		cfg.Openers.Default = tempCfg.Openers.Default
	}
	cfg.Openers.Editor = tempCfg.Openers.Editor
	for ext, cmd := range tempCfg.Openers.Extensions {
		cfg.Openers.Extensions[ext] = cmd
	}

	if tempCfg.Theme.Name != "" {
		cfg.ApplyTheme(tempCfg.Theme.Name)
	}
	overrideColor(&cfg.Theme.Primary, tempCfg.Theme.Primary)
	overrideColor(&cfg.Theme.Success, tempCfg.Theme.Success)
	overrideColor(&cfg.Theme.Warning, tempCfg.Theme.Warning)
	overrideColor(&cfg.Theme.Error, tempCfg.Theme.Error)
	overrideColor(&cfg.Theme.Info, tempCfg.Theme.Info)
	overrideColor(&cfg.Theme.Emphasis, tempCfg.Theme.Emphasis)
	overrideColor(&cfg.Theme.Border, tempCfg.Theme.Border)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideColor(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Panes.Left = "."
	cfg.Panes.Right = "."
	cfg.Panes.ShowHidden = false

	cfg.Operations.PollIntervalMS = 200
	cfg.Operations.ConfirmDelete = true
	cfg.Operations.HistorySize = 50

	cfg.Watch.Enabled = true
	cfg.Watch.DebounceMS = 150

	cfg.Openers.Default = "xdg-open"
	cfg.Openers.Extensions = map[string]string{}

	cfg.ApplyTheme("default")
	return cfg
}

// PollInterval returns the copy sampling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Operations.PollIntervalMS) * time.Millisecond
}

// Debounce returns the watcher quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if c.Operations.PollIntervalMS < 10 {
		return errors.NewConfigError("poll interval must be >= 10ms", "operations.poll_interval_ms", errors.InvalidConfig, nil)
	}
	if c.Operations.HistorySize < 1 {
		return errors.NewConfigError("history size must be >= 1", "operations.history_size", errors.InvalidConfig, nil)
	}
	if c.Watch.DebounceMS < 0 {
		return errors.NewConfigError("debounce must be >= 0ms", "watch.debounce_ms", errors.InvalidConfig, nil)
	}
	for ext, cmd := range c.Openers.Extensions {
		if ext == "" {
			return errors.NewConfigError("opener extension cannot be empty", "openers.extensions", errors.InvalidConfig, nil)
		}
		if cmd == "" {
			return errors.NewConfigError(fmt.Sprintf("opener for %q has no command", ext), "openers.extensions", errors.InvalidConfig, nil)
		}
	}

	if !isTheme(c.Theme.Name) {
		return errors.NewConfigError(fmt.Sprintf("unknown theme %q", c.Theme.Name), "theme.name", errors.InvalidConfig, nil)
	}

	return nil
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Operations.PollIntervalMS = 10
	cfg.Operations.ConfirmDelete = false
	cfg.Watch.Enabled = false
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	if theme, exists := themes[name]; exists {
		return theme
	}
	return themes["default"]
}

var themes = map[string]map[string]string{
	"default": {
		"primary":  "213", // Purple
		"success":  "114", // Green
		"warning":  "220", // Yellow
		"error":    "196", // Red
		"info":     "39",  // Blue
		"emphasis": "212", // Light Pink
		"border":   "213", // Purple
	},
	"dark": {
		"primary":  "105", // Dark Blue
		"success":  "78",  // Dark Green
		"warning":  "214", // Dark Yellow
		"error":    "160", // Dark Red
		"info":     "33",  // Dark Blue
		"emphasis": "147", // Light Blue
		"border":   "105", // Dark Blue
	},
	"light": {
		"primary":  "135", // Light Purple
		"success":  "150", // Light Green
		"warning":  "222", // Light Yellow
		"error":    "210", // Light Red
		"info":     "117", // Light Blue
		"emphasis": "219", // Very Light Pink
		"border":   "135", // Light Purple
	},
	"monochrome": {
		"primary":  "245", // Light Grey
		"success":  "252", // White
		"warning":  "241", // Medium Grey
		"error":    "232", // Black
		"info":     "248", // Grey
		"emphasis": "255", // Bright White
		"border":   "245", // Light Grey
	},
}

func isTheme(name string) bool {
	_, ok := themes[name]
	return ok
}

// ApplyTheme sets the theme in the configuration.
// It updates the theme colors based on the theme name.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Emphasis = theme["emphasis"]
	c.Theme.Border = theme["border"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
