package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todoreminder/internal/datefmt"
	"github.com/idilsaglam/todoreminder/internal/job"
	"github.com/idilsaglam/todoreminder/internal/reminder"
	"github.com/idilsaglam/todoreminder/internal/state"
	"github.com/idilsaglam/todoreminder/internal/ui"
)

func newRemindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remind <id> <HH:MM|YYYY-MM-DD HH:MM>",
		Short: "Arm a reminder for a todo",
		Long: `Arm a reminder for a todo. HH:MM means today at that time, even when
it has already passed; the next sweep clears reminders in the past.`,
		Args: minArgs(2, "remind <id> <HH:MM|YYYY-MM-DD HH:MM>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("remind", args[0])
			if err != nil {
				return err
			}
			at, err := datefmt.Parse(strings.Join(args[1:], " "), time.Now())
			if err != nil {
				return usagef("remind: %v", err)
			}
			if err := a.open(modeCLI); err != nil {
				return err
			}

			ctx := cmd.Context()
			d := state.NewDetail(a.repo, a.perm, id, state.WithLogger(a.logger))
			d.Load(ctx)
			if s, ok := d.Status().(state.Error); ok {
				return usagef("remind: %s", s.Message)
			}
			d.SelectDueDate(at)
			if err := d.SelectTime(at.Hour(), at.Minute()); err != nil {
				return usagef("remind: %v", err)
			}
			d.SetReminder(ctx)

			switch s := d.Status().(type) {
			case state.RequiresPermission:
				return errors.New("notifications are not allowed yet; run `todo notify grant`")
			case state.Error:
				return errors.New(s.Message)
			}
			ui.OK("reminder set for " + d.FormattedDueDate())
			if running, _ := job.Running(a.cfg.LockDir(), job.SweepExpiredReminders); !running {
				fmt.Fprintln(ui.Stdout(), ui.C(ui.Dim, "Tip: `todo daemon` delivers reminders in the background"))
			}
			return nil
		},
	}
}

func newClearRemindersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-reminders",
		Short: "Clear every armed reminder",
		Args:  exactArgs(0, "clear-reminders"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeCLI); err != nil {
				return err
			}
			ctx := cmd.Context()
			items, err := a.repo.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			n, err := a.repo.ClearReminders(ctx, items)
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("cleared %d reminders", n))
			return nil
		},
	}
}

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Clear reminders whose time has passed",
		Args:  exactArgs(0, "sweep"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeCLI); err != nil {
				return err
			}
			n, err := a.repo.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("cleared %d expired reminders", n))
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the starter todos into an empty list",
		Args:  exactArgs(0, "seed"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeCLI); err != nil {
				return err
			}
			n, err := a.repo.SeedIfEmpty(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				ui.Warn("list is not empty; nothing seeded")
				return nil
			}
			ui.OK(fmt.Sprintf("seeded %d todos", n))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show reminders, permission and daemon state",
		Args:  exactArgs(0, "status"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeCLI); err != nil {
				return err
			}
			items, err := a.repo.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			t := ui.Current()

			upcoming := reminder.Upcoming(time.Now(), items)
			next := ui.C(t.Muted, "none")
			if len(upcoming) > 0 {
				first := upcoming[0]
				next = fmt.Sprintf("#%d at %s", first.ID, datefmt.Format(first.DueDate, nil))
			}

			daemon := ui.C(t.Muted, "stopped")
			if running, err := job.Running(a.cfg.LockDir(), job.SweepExpiredReminders); err != nil {
				daemon = ui.C(t.Error, err.Error())
			} else if running {
				daemon = ui.C(t.Success, "running")
			}
			source := a.cfg.Source
			if source == "" {
				source = "defaults"
			}

			d, p := stats(items)
			ui.Panel([]string{
				ui.C(t.Title, "Status"),
				"",
				fmt.Sprintf("Todos         %d done, %d pending", d, p),
				fmt.Sprintf("Upcoming      %d", len(upcoming)),
				"Next          " + next,
				"Notifications " + permissionLabel(a.perm.Granted()),
				"Daemon        " + daemon,
				"Database      " + a.cfg.DBPath(),
				"Config        " + source,
			})
			return nil
		},
	}
}

func newNotifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify grant|revoke|status",
		Short: "Allow or disallow reminder notifications",
		Args:  exactArgs(1, "notify grant|revoke|status"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeCLI); err != nil {
				return err
			}
			switch args[0] {
			case "grant":
				if err := a.perm.Grant(); err != nil {
					return err
				}
				ui.OK("notifications allowed")
			case "revoke":
				if err := a.perm.Revoke(); err != nil {
					return err
				}
				ui.OK("notifications disallowed")
			case "status":
				fmt.Fprintln(ui.Stdout(), "notifications "+permissionLabel(a.perm.Granted()))
			default:
				return usagef("usage: todo notify grant|revoke|status")
			}
			return nil
		},
	}
	return cmd
}

func permissionLabel(granted bool) string {
	t := ui.Current()
	if granted {
		return ui.C(t.Success, "allowed")
	}
	return ui.C(t.Pending, "not allowed")
}
