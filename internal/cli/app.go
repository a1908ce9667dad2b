package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoreminder/internal/alarm"
	"github.com/idilsaglam/todoreminder/internal/config"
	"github.com/idilsaglam/todoreminder/internal/logging"
	"github.com/idilsaglam/todoreminder/internal/notify"
	"github.com/idilsaglam/todoreminder/internal/repository"
	"github.com/idilsaglam/todoreminder/internal/store/seedfile"
	"github.com/idilsaglam/todoreminder/internal/store/sqlitestore"
	"github.com/idilsaglam/todoreminder/internal/ui"
)

// app is the dependency graph shared by the subcommands. It is built
// lazily so --help never touches the data dir.
type app struct {
	flags rootFlags

	cfg     *config.Config
	logger  *log.Logger
	logFile *os.File
	store   *sqlitestore.Store
	alarms  *alarm.Scheduler
	perm    notify.Permission
	repo    *repository.Repository
}

type openMode int

const (
	// logs go to stderr
	modeCLI openMode = iota
	// logs go to the log file; the terminal belongs to the UI
	modeTUI
	// logs go to stderr with timestamps
	modeDaemon
)

func (a *app) loadConfig() error {
	cfg, err := config.Load(config.LoadOptions{File: a.flags.configFile})
	if err != nil {
		return err
	}
	if a.flags.dataDir != "" {
		cfg.DataDir = a.flags.dataDir
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if a.flags.theme != "" {
		cfg.Theme = a.flags.theme
	}
	if err := cfg.Finalize(); err != nil {
		return usageError{msg: err.Error()}
	}
	a.cfg = cfg

	ui.SetTheme(cfg.Theme)
	if a.flags.color || a.flags.noColor {
		ui.SetColorForcing(a.flags.color, a.flags.noColor)
	}
	return nil
}

// open builds everything up to the repository.
func (a *app) open(mode openMode) error {
	if a.repo != nil {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}
	cfg := a.cfg

	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	switch mode {
	case modeTUI:
		f, err := logging.OpenFile(cfg.LogFile())
		if err != nil {
			return err
		}
		a.logFile = f
		opts.Timestamps = true
		a.logger = logging.New(f, opts)
	case modeDaemon:
		opts.Timestamps = true
		a.logger = logging.New(os.Stderr, opts)
	default:
		a.logger = logging.New(os.Stderr, opts)
	}
	if cfg.Source != "" {
		a.logger.Debug("config loaded", "file", cfg.Source)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := sqlitestore.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	a.store = store
	if store.Wiped {
		a.logger.Warn("database schema changed; existing todos were dropped", "db", cfg.DBPath())
	}

	starter, err := seedfile.Load(cfg.SeedFile)
	if err != nil {
		return err
	}

	var notifier notify.Notifier = notify.NewLogNotifier(a.logger)
	if cfg.Notify.Enabled {
		notifier = notify.NewDesktop(cfg.Notify.AppIcon, a.logger)
	}
	a.alarms = alarm.New(notifier, alarm.WithLogger(a.logger))

	a.perm = notify.Always{}
	if cfg.Notify.RequirePermission {
		a.perm = notify.NewFilePermission(cfg.PermissionFile())
	}

	a.repo = repository.New(store,
		repository.WithAlarms(a.alarms),
		repository.WithLogger(a.logger),
		repository.WithStarter(starter),
	)
	return nil
}

// seed inserts the starter items into an empty database, as on first launch.
func (a *app) seed(ctx context.Context) error {
	if _, err := a.repo.SeedIfEmpty(ctx); err != nil {
		return err
	}
	return nil
}

func (a *app) close() {
	if a.alarms != nil {
		a.alarms.Stop()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Warn("close database", "err", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
