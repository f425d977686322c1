// Package config handles configuration loading, validation, and management for ps2kbd.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete host configuration.
type Config struct {
	// Keyboard configures capture and interpretation.
	Keyboard KeyboardConfig `toml:"keyboard" json:"keyboard" yaml:"keyboard"`

	// Console configures the virtual consoles.
	Console ConsoleConfig `toml:"console" json:"console" yaml:"console"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Metrics configuration.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// KeyboardConfig holds driver settings.
type KeyboardConfig struct {
	// ScancodeSet is the set the keyboard emits: 1, or 2 when the
	// controller's translation is off.
	ScancodeSet int `toml:"scancode_set" json:"scancode_set" yaml:"scancode_set"`

	// QueueCapacity bounds the capture queue.
	QueueCapacity int `toml:"queue_capacity" json:"queue_capacity" yaml:"queue_capacity"`

	// Keymap is a keymap file path, or "builtin:<name>".
	Keymap string `toml:"keymap" json:"keymap" yaml:"keymap"`

	// WatchKeymap reloads the keymap file when it changes.
	WatchKeymap bool `toml:"watch_keymap" json:"watch_keymap" yaml:"watch_keymap"`

	// PollIntervalMs is the delay between port polls when idle.
	PollIntervalMs int `toml:"poll_interval_ms" json:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// ConsoleConfig holds virtual console geometry.
type ConsoleConfig struct {
	Count  int `toml:"count" json:"count" yaml:"count"`
	Width  int `toml:"width" json:"width" yaml:"width"`
	Height int `toml:"height" json:"height" yaml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stderr, stdout, file, both or discard.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file used by the file and both outputs.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled" yaml:"enabled"`
	Addr    string `toml:"addr" json:"addr" yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Keyboard: KeyboardConfig{
			ScancodeSet:    1,
			QueueCapacity:  128,
			Keymap:         "builtin:us",
			PollIntervalMs: 2,
		},
		Console: ConsoleConfig{
			Count:  12,
			Width:  80,
			Height: 25,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "discard",
			FilePath: filepath.Join(Dir(), "ps2kbd.log"),
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9167",
		},
	}
}

// Dir returns the ps2kbd configuration directory.
// PS2KBD_CONFIG_DIR overrides the XDG location.
func Dir() string {
	if envDir := os.Getenv("PS2KBD_CONFIG_DIR"); envDir != "" {
		return envDir
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, _ := os.UserHomeDir()
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "ps2kbd")
}

// Path returns the default configuration file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := Decode(data, filepath.Ext(path), cfg); err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Decode parses data over cfg. ext selects the format; anything other than
// .json, .yaml and .yml is read as TOML.
func Decode(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("decode TOML: unknown key %q", undecoded[0].String())
		}
	}
	return nil
}

// Encode writes cfg in the format selected by ext.
func (c *Config) Encode(ext string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(ext) {
	case ".json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encode JSON: %w", err)
		}
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		enc.Close()
	default:
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("encode TOML: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := c.Encode(filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with PS2KBD_ and use underscores.
// Unparsable numbers are left as they are.
func (c *Config) ApplyEnvOverrides() {
	envInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	// Keyboard overrides
	envInt("PS2KBD_SCANCODE_SET", &c.Keyboard.ScancodeSet)
	envInt("PS2KBD_QUEUE_CAPACITY", &c.Keyboard.QueueCapacity)
	envString("PS2KBD_KEYMAP", &c.Keyboard.Keymap)

	// Logging overrides
	envString("PS2KBD_LOG_LEVEL", &c.Logging.Level)
	envString("PS2KBD_LOG_FORMAT", &c.Logging.Format)
	envString("PS2KBD_LOG_OUTPUT", &c.Logging.Output)
	envString("PS2KBD_LOG_PATH", &c.Logging.FilePath)

	// Metrics overrides
	if v := os.Getenv("PS2KBD_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
		c.Metrics.Enabled = true
	}
}
