package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isabella232/gamesym/internal/symstore"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Validate a store configuration",
		Long: `Validate a store configuration file and print the resulting store tree.

The configuration is checked against the schema and each store's
required fields, then built, so a passing validate means every other
command will accept the same file.

Examples:
  gamesym validate stores.cue
  gamesym --config stores.cue validate`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				rootOpts.Config = args[0]
			}
			return runValidate(rootOpts, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	_, server, err := loadStores(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	formatter.VerboseLog("configuration %s builds %d store(s)", opts.Config, len(symstore.AllStores(server)))

	if formatter.Format == "json" {
		return formatter.SuccessJSON(storeTreeJSON(server))
	}

	fmt.Fprintln(formatter.Writer, "configuration valid")
	printStoreTree(formatter.Writer, server, 0)
	return nil
}
