package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/ui"
)

func newListCmd(a *app) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    exactArgs(0, "ls [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeCLI); err != nil {
				return err
			}
			items, err := a.repo.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			ui.Panel(listPanel(items, group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a todo (title can be multiple words)",
		Args:  minArgs(1, "add <title...> [-d description]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(modeCLI); err != nil {
				return err
			}
			it, err := a.repo.Create(cmd.Context(), model.Item{
				Title:       strings.Join(args, " "),
				Description: desc,
			})
			if errors.Is(err, model.ErrEmptyTitle) {
				return usagef("add: empty title")
			}
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("added #%d", it.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "description")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  exactArgs(1, "show <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("show", args[0])
			if err != nil {
				return err
			}
			if err := a.open(modeCLI); err != nil {
				return err
			}
			it, err := a.repo.Get(cmd.Context(), id)
			if err != nil {
				return notFoundHint(err)
			}
			ui.Panel(detailLines(it))
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var title, desc string
	cmd := &cobra.Command{
		Use:   "edit <id> [--title t] [--desc d]",
		Short: "Change the title or description of a todo",
		Args:  exactArgs(1, "edit <id> [--title t] [--desc d]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("edit", args[0])
			if err != nil {
				return err
			}
			titleSet, descSet := cmd.Flags().Changed("title"), cmd.Flags().Changed("desc")
			if !titleSet && !descSet {
				return usagef("edit: nothing to change (use --title or --desc)")
			}
			if err := a.open(modeCLI); err != nil {
				return err
			}
			ctx := cmd.Context()
			it, err := a.repo.Get(ctx, id)
			if err != nil {
				return notFoundHint(err)
			}
			if titleSet {
				it.Title = title
			}
			if descSet {
				it.Description = desc
			}
			if err := a.repo.Update(ctx, it); err != nil {
				if errors.Is(err, model.ErrEmptyTitle) {
					return usagef("edit: empty title")
				}
				return err
			}
			ui.OK("updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "new description")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle done for a todo",
		Args:  exactArgs(1, "done <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("done", args[0])
			if err != nil {
				return err
			}
			if err := a.open(modeCLI); err != nil {
				return err
			}
			ctx := cmd.Context()
			it, err := a.repo.Get(ctx, id)
			if err != nil {
				return notFoundHint(err)
			}
			it.Completed = !it.Completed
			if err := a.repo.Update(ctx, it); err != nil {
				return err
			}
			ui.OK("toggled")
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a todo",
		Args:  exactArgs(1, "rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("rm", args[0])
			if err != nil {
				return err
			}
			if err := a.open(modeCLI); err != nil {
				return err
			}
			if err := a.repo.Delete(cmd.Context(), id); err != nil {
				return err
			}
			ui.OK("removed")
			return nil
		},
	}
}

func notFoundHint(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return usagef("%v (run `todo ls` to see valid ids)", err)
	}
	return err
}
