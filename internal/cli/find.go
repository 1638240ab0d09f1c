package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isabella232/gamesym/internal/buildid"
	"github.com/isabella232/gamesym/internal/sessionlog"
	"github.com/isabella232/gamesym/internal/storecfg"
	"github.com/isabella232/gamesym/internal/symstore"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	BuildID   string
	DebugInfo bool
	Force     bool
}

// FindResult is the JSON payload of a successful lookup.
type FindResult struct {
	Filename string `json:"filename"`
	BuildID  string `json:"build_id,omitempty"`
	Location string `json:"location"`
	Local    bool   `json:"local"`
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <filename>",
		Short: "Search the store chain for a file",
		Long: `Search the configured store chain for a file by name and build id.

The cascade consults each store in configuration order, populates
caches in front of the hit, and prints where the file was found.

Examples:
  gamesym --config stores.cue find game.elf --build-id deadbeef
  gamesym --config stores.cue find game.debug --debug-info --force`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BuildID, "build-id", "", "expected build id (hex)")
	cmd.Flags().BoolVar(&opts.DebugInfo, "debug-info", false, "treat the file as split debug info")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "bypass not-found caches")

	return cmd
}

func runFind(opts *FindOptions, filename string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := context.Background()

	cfg, server, err := loadStores(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	id := buildid.Empty
	if opts.BuildID != "" {
		if id, err = buildid.FromHex(opts.BuildID); err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "parsing build id", err)
		}
	}

	recorder, closeLog, err := openRecorder(ctx, cfg, fmt.Sprintf("find %s", filename))
	if err != nil {
		return err
	}
	defer closeLog()

	ref, err := server.FindFile(ctx, symstore.FileQuery{
		Filename:        filename,
		BuildID:         id,
		IsDebugInfoFile: opts.DebugInfo,
		Log:             formatter.GetErrWriter(),
		ForceLoad:       opts.Force,
	})
	if err != nil {
		recordOutcome(ctx, recorder, filename, opts.BuildID, sessionlog.OutcomeError, err.Error())
		return WrapExitError(ExitCommandError, "searching stores", err)
	}
	if ref == nil {
		recordOutcome(ctx, recorder, filename, opts.BuildID, sessionlog.OutcomeMiss, "")
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("%q not found in any configured store", filename), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%q not found", filename))
	}
	recordOutcome(ctx, recorder, filename, opts.BuildID, sessionlog.OutcomeHit, ref.Location())

	if formatter.Format == "json" {
		return formatter.SuccessJSON(FindResult{
			Filename: filename,
			BuildID:  opts.BuildID,
			Location: ref.Location(),
			Local:    ref.IsFilesystemLocation(),
		})
	}
	fmt.Fprintln(formatter.Writer, ref.Location())
	return nil
}

// openRecorder starts a session log recorder when the configuration
// names a session database. Commands run fine without one.
func openRecorder(ctx context.Context, cfg *storecfg.Config, label string) (*sessionlog.Recorder, func(), error) {
	if cfg.SessionLog == "" {
		return nil, func() {}, nil
	}
	store, err := sessionlog.Open(cfg.SessionLog)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "opening session log", err)
	}
	sess, err := store.BeginSession(ctx, label)
	if err != nil {
		store.Close()
		return nil, nil, WrapExitError(ExitCommandError, "starting session", err)
	}
	return sessionlog.NewRecorder(store, sess.Token), func() { store.Close() }, nil
}

// recordOutcome writes one attempt record if session logging is on.
func recordOutcome(ctx context.Context, rec *sessionlog.Recorder, filename, buildID, outcome, detail string) {
	if rec == nil {
		return
	}
	// The chain is queried as a whole; per-store attribution lives in
	// the human-readable search log.
	_ = rec.RecordAttempt(ctx, filename, "chain", filename, buildID, outcome, detail)
}
