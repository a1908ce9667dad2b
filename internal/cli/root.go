package cli

import (
	"github.com/spf13/cobra"
)

// rootFlags apply to every subcommand.
type rootFlags struct {
	configFile string
	dataDir    string
	logLevel   string
	theme      string
	noColor    bool
	color      bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "todo - a to-do list with reminders",
		Long: `todo keeps a list of to-dos in a local SQLite database and reminds you
of them with desktop notifications.

Examples:
  todo add "Buy milk" -d "2 liters"
  todo remind 1 18:30
  todo ls --group
  todo daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("missing subcommand")
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "config file (default: user and project config)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "directory holding the database and lock files")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.flags.theme, "theme", "", "output theme: classic, neon or mono")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colors")
	pf.BoolVar(&a.flags.color, "color", false, "force colors")

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newDoneCmd(a),
		newRemoveCmd(a),
		newRemindCmd(a),
		newClearRemindersCmd(a),
		newSweepCmd(a),
		newSeedCmd(a),
		newStatusCmd(a),
		newNotifyCmd(a),
		newDaemonCmd(a),
		newTUICmd(a),
	)
	return root
}
