package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/isabella232/gamesym/internal/sessionlog"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// TraceResult holds a session's complete recorded history.
type TraceResult struct {
	Session   string                `json:"session"`
	Label     string                `json:"label,omitempty"`
	Attempts  []sessionlog.Attempt  `json:"attempts"`
	Telemetry []sessionlog.Telemetry `json:"telemetry,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [session]",
		Short: "Show a recorded session's search history",
		Long: `Show the search attempts and load telemetry recorded for a session.

Without a session token the command lists all recorded sessions.
The database defaults to the sessionLog path of the configuration
and can be overridden with --db.

Examples:
  gamesym --config stores.cue trace
  gamesym --config stores.cue trace 0190b5a2-...-b1f
  gamesym trace --db ./sessions.db 0190b5a2-...-b1f`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := ""
			if len(args) == 1 {
				session = args[0]
			}
			return runTrace(opts, session, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the session log database")

	return cmd
}

func runTrace(opts *TraceOptions, session string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := context.Background()

	dbPath := opts.Database
	if dbPath == "" && opts.Config != "" {
		cfg, _, err := loadStores(opts.RootOptions)
		if err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return err
		}
		dbPath = cfg.SessionLog
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no session log: pass --db or configure sessionLog")
	}

	store, err := sessionlog.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeSession, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening session log", err)
	}
	defer store.Close()

	if session == "" {
		return listSessions(ctx, store, formatter)
	}
	return showSession(ctx, store, session, formatter)
}

func listSessions(ctx context.Context, store *sessionlog.Store, formatter *OutputFormatter) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing sessions", err)
	}

	if formatter.Format == "json" {
		return formatter.SuccessJSON(sessions)
	}
	for _, s := range sessions {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s\n", s.Token, s.StartedAt.Format("2006-01-02 15:04:05"), s.Label)
	}
	return nil
}

func showSession(ctx context.Context, store *sessionlog.Store, session string, formatter *OutputFormatter) error {
	attempts, err := store.Attempts(ctx, session)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading attempts", err)
	}
	telemetry, err := store.TelemetryRecords(ctx, session)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading telemetry", err)
	}
	if len(attempts) == 0 && len(telemetry) == 0 {
		_ = formatter.Error(ErrCodeSession, fmt.Sprintf("no records for session %q", session), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("no records for session %q", session))
	}

	result := TraceResult{Session: session, Attempts: attempts, Telemetry: telemetry}
	if formatter.Format == "json" {
		return formatter.SuccessJSON(result)
	}
	renderTrace(formatter.Writer, result)
	return nil
}

// renderTrace writes the deterministic text form of a session trace.
func renderTrace(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "session %s\n", result.Session)
	for _, a := range result.Attempts {
		detail := ""
		if a.Detail != "" {
			detail = "  " + a.Detail
		}
		id := a.BuildID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%4d  %-8s  %-24s  %s (%s)%s\n", a.Seq, a.Outcome, a.Module, a.Filename, id, detail)
	}
	for _, t := range result.Telemetry {
		fmt.Fprintf(w, "%4d  load      modules=%d binaries=%d>%d symbols=%d>%d\n",
			t.Seq, t.ModulesCount,
			t.BinariesLoadedBeforeCount, t.BinariesLoadedAfterCount,
			t.SymbolsLoadedBeforeCount, t.SymbolsLoadedAfterCount)
	}
}
