package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todoreminder/internal/job"
	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/tui"
	"github.com/idilsaglam/todoreminder/internal/ui"
)

// watchDebounce collapses the burst of file events one SQLite commit makes.
const watchDebounce = 200 * time.Millisecond

func newDaemonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Deliver reminders and sweep expired ones in the background",
		Args:  exactArgs(0, "daemon"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeDaemon); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, err := a.startBackground(ctx)
			if err != nil {
				return err
			}
			defer runner.Stop()
			if len(runner.Active()) == 0 {
				return fmt.Errorf("another todo process already runs the background jobs for %s", a.cfg.DataDir)
			}

			a.logger.Info("daemon started", "db", a.cfg.DBPath(), "sweep", a.cfg.SweepInterval.Duration,
				"next_sweep", runner.NextRun(job.SweepExpiredReminders).Format(time.RFC3339))
			<-ctx.Done()
			a.logger.Info("daemon stopping")
			return nil
		},
	}
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  exactArgs(0, "tui"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeTUI); err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := a.seed(ctx); err != nil {
				return err
			}
			runner, err := a.startBackground(ctx)
			if err != nil {
				return err
			}
			defer runner.Stop()

			if err := tui.Run(ctx, a.repo, a.perm, time.Local); err != nil {
				return err
			}
			ui.OK("bye")
			return nil
		},
	}
}

// startBackground arms stored reminders, follows database changes made
// by other processes and schedules the expiry sweep. The sweep is skipped
// when another process already runs it.
func (a *app) startBackground(ctx context.Context) (*job.Runner, error) {
	items, err := a.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	n := a.alarms.Restore(items)
	a.logger.Info("reminders restored", "count", n)

	err = a.store.Watch(ctx, watchDebounce, func() {
		a.repo.Refresh(ctx)
		items, err := a.repo.ListAll(ctx)
		if err != nil {
			a.logger.Error("reload after change", "err", err)
			return
		}
		a.reconcile(items)
	})
	if err != nil {
		return nil, err
	}

	runner := job.NewRunner(a.cfg.LockDir(), a.logger)
	scheduled, err := runner.Schedule(job.SweepExpiredReminders, a.cfg.SweepInterval.Duration, func(ctx context.Context) error {
		n, err := a.repo.SweepExpired(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			a.logger.Info("expired reminders cleared", "count", n)
		}
		return nil
	})
	if err != nil {
		runner.Stop()
		return nil, err
	}
	if scheduled {
		if err := runner.Trigger(job.SweepExpiredReminders); err != nil {
			a.logger.Error("initial sweep", "err", err)
		}
	}
	runner.Start()
	return runner, nil
}

// reconcile makes the pending alarms match the stored reminders after
// another process changed them. A pending alarm survives only while its
// item is still armed for the same future time; Restore then re-arms the
// rest.
func (a *app) reconcile(items []model.Item) {
	now := time.Now()
	due := make(map[int64]time.Time, len(items))
	for _, it := range items {
		if it.HasReminder() {
			due[it.ID] = *it.DueDate
		}
	}
	for _, id := range a.alarms.Pending() {
		want, armed := due[id]
		at, ok := a.alarms.At(id)
		if !ok {
			continue
		}
		if !armed || !want.Equal(at) || want.Before(now) {
			a.alarms.Cancel(id)
		}
	}
	a.alarms.Restore(items)
}
