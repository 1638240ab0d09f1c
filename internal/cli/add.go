package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/isabella232/gamesym/internal/buildid"
	"github.com/isabella232/gamesym/internal/symstore"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Name    string
	BuildID string
}

// AddResult is the JSON payload of a successful publish.
type AddResult struct {
	Filename string `json:"filename"`
	BuildID  string `json:"build_id"`
	Location string `json:"location"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Publish a file into the configured stores",
		Long: `Publish a local binary or debug-info file into every configured
store that accepts writes.

The build id is read from the file's GNU build-id note unless
--build-id overrides it. Read-only stores in the chain are skipped;
the command fails only when no store accepts the file.

Examples:
  gamesym --config stores.cue add ./game.debug
  gamesym --config stores.cue add ./game.elf --name game.elf --build-id deadbeef`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "store filename (default: the file's base name)")
	cmd.Flags().StringVar(&opts.BuildID, "build-id", "", "build id (hex, default: read from the file)")

	return cmd
}

func runAdd(opts *AddOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := context.Background()

	_, server, err := loadStores(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(path)
	}

	var id buildid.BuildID
	if opts.BuildID != "" {
		if id, err = buildid.FromHex(opts.BuildID); err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "parsing build id", err)
		}
	} else {
		if id, err = (buildid.ELFReader{}).ReadBuildID(path); err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reading build id from file", err)
		}
		formatter.VerboseLog("read build id %s from %s", id, path)
	}

	ref, err := server.AddFile(ctx, symstore.NewLocalFileReference(path), name, id, formatter.GetErrWriter())
	if err != nil {
		if symstore.IsNoUsableStores(err) {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitFailure, "no store accepted the file", err)
		}
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "publishing file", err)
	}

	if formatter.Format == "json" {
		return formatter.SuccessJSON(AddResult{
			Filename: name,
			BuildID:  id.String(),
			Location: ref.Location(),
		})
	}
	fmt.Fprintln(formatter.Writer, ref.Location())
	return nil
}
