// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDataDir       = "~/.todoreminder"
	DefaultDBFile        = "todo.db"
	DefaultSweepInterval = time.Hour
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultTheme         = "classic"

	appDirName      = "todoreminder"
	userConfigName  = "config.toml"
	projectFileName = ".todo.toml"
)

// Config holds the full configuration.
type Config struct {
	// Paths
	DataDir  string `toml:"data_dir"`
	DBFile   string `toml:"db_file"`
	SeedFile string `toml:"seed_file"`

	// Background sweep period
	SweepInterval Duration `toml:"sweep_interval"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Plain CLI output theme: classic, neon or mono
	Theme string `toml:"theme"`

	Notify NotifyConfig `toml:"notify"`

	// Source is the config file that was loaded last, if any.
	Source string `toml:"-"`
}

// NotifyConfig controls reminder delivery.
type NotifyConfig struct {
	// Enabled shows desktop notifications; when false they are only logged.
	Enabled bool `toml:"enabled"`
	// RequirePermission gates arming on an explicit grant.
	RequirePermission bool   `toml:"require_permission"`
	AppIcon           string `toml:"app_icon"`
}

// Duration decodes TOML strings like "1h" or "30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults returns a config with every field at its default.
func Defaults() *Config {
	return &Config{
		DataDir:       DefaultDataDir,
		DBFile:        DefaultDBFile,
		SweepInterval: Duration{DefaultSweepInterval},
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Theme:         DefaultTheme,
		Notify: NotifyConfig{
			Enabled:           true,
			RequirePermission: true,
		},
	}
}

// LoadOptions selects config sources.
type LoadOptions struct {
	// File, when set, replaces the user and project file lookup.
	File string
	// Env looks up environment variables; nil means os.LookupEnv.
	Env func(string) (string, bool)
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file ($XDG_CONFIG_HOME/todoreminder/config.toml)
// 3. Project config file (.todo.toml in the current directory)
// 4. Environment variables (TODO_*)
// Flags are applied by the caller afterwards, then Finalize.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Defaults()

	files := []string{opts.File}
	if opts.File == "" {
		files = []string{userConfigFile(), projectFileName}
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := loadFile(cfg, f, opts.File != ""); err != nil {
			return nil, err
		}
	}

	env := opts.Env
	if env == nil {
		env = os.LookupEnv
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.Source = path
	return nil
}

func userConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName, userConfigName)
}

func applyEnv(cfg *Config, env func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TODO_DATA_DIR", &cfg.DataDir)
	str("TODO_DB_FILE", &cfg.DBFile)
	str("TODO_SEED_FILE", &cfg.SeedFile)
	str("TODO_LOG_LEVEL", &cfg.LogLevel)
	str("TODO_LOG_FORMAT", &cfg.LogFormat)
	str("TODO_THEME", &cfg.Theme)
	str("TODO_NOTIFY_APP_ICON", &cfg.Notify.AppIcon)

	if v, ok := env("TODO_SWEEP_INTERVAL"); ok && v != "" {
		if err := cfg.SweepInterval.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("TODO_SWEEP_INTERVAL: %w", err)
		}
	}
	for key, dst := range map[string]*bool{
		"TODO_NOTIFY_ENABLED":            &cfg.Notify.Enabled,
		"TODO_NOTIFY_REQUIRE_PERMISSION": &cfg.Notify.RequirePermission,
	} {
		if v, ok := env(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

// Finalize expands paths and checks values.
func (c *Config) Finalize() error {
	dir, err := expandHome(c.DataDir)
	if err != nil {
		return err
	}
	c.DataDir = filepath.Clean(dir)
	if c.SeedFile != "" {
		if c.SeedFile, err = expandHome(c.SeedFile); err != nil {
			return err
		}
	}
	if c.SweepInterval.Duration < time.Second {
		return fmt.Errorf("sweep_interval %s is below one second", c.SweepInterval.Duration)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format %q: want text, json or logfmt", c.LogFormat)
	}
	return nil
}

// DBPath is the SQLite database file.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.DataDir, c.DBFile)
}

// LockDir holds background job lock files.
func (c *Config) LockDir() string { return filepath.Join(c.DataDir, "jobs") }

// PermissionFile marks the notification permission grant.
func (c *Config) PermissionFile() string { return filepath.Join(c.DataDir, "notify.granted") }

// LogFile is where the interactive UI and daemon write logs.
func (c *Config) LogFile() string { return filepath.Join(c.DataDir, "todo.log") }

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
