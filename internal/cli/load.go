package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isabella232/gamesym/internal/argv"
	"github.com/isabella232/gamesym/internal/modules"
	"github.com/isabella232/gamesym/internal/sessionlog"
	"github.com/isabella232/gamesym/internal/storecfg"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Manifest    string
	Interactive bool
	Force       bool
	CrashDump   bool
}

// LoadModuleResult is one module's outcome in the JSON payload.
type LoadModuleResult struct {
	Name      string `json:"name"`
	Binary    string `json:"binary,omitempty"`
	Symbols   string `json:"symbols,omitempty"`
	Loaded    bool   `json:"loaded"`
	SearchLog string `json:"search_log,omitempty"`
}

// LoadSummary is the JSON payload of a batch load.
type LoadSummary struct {
	Ok                 bool               `json:"ok"`
	Modules            []LoadModuleResult `json:"modules"`
	SuggestSymbolStore bool               `json:"suggest_symbol_store,omitempty"`
	LaunchCommand      string             `json:"launch_command,omitempty"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run a batch module load from a manifest",
		Long: `Run a batch binary and symbol load over the modules of a YAML
manifest, using the configured store chain.

Placeholder modules are backed by binaries located in the stores;
every module then gets a debug-info lookup. Inclusion settings from
the configuration apply, and each module's search log is printed with
--verbose.

Examples:
  gamesym --config stores.cue load --manifest modules.yaml
  gamesym --config stores.cue load --manifest modules.yaml --force --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "path to YAML module manifest (required)")
	_ = cmd.MarkFlagRequired("manifest")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", true, "treat the batch as user initiated")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "bypass not-found caches")
	cmd.Flags().BoolVar(&opts.CrashDump, "crash-dump", false, "treat the batch as a crash-dump load")

	return cmd
}

func runLoad(opts *LoadOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := context.Background()

	cfg, server, err := loadStores(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	manifest, err := storecfg.LoadManifest(opts.Manifest)
	if err != nil {
		_ = formatter.Error(ErrCodeManifest, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading manifest", err)
	}
	mods, err := manifest.ToModules()
	if err != nil {
		_ = formatter.Error(ErrCodeManifest, err.Error(), nil)
		return WrapExitError(ExitCommandError, "converting manifest", err)
	}

	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		downloadDir, err = os.MkdirTemp("", "gamesym-download-")
		if err != nil {
			return WrapExitError(ExitCommandError, "creating download directory", err)
		}
		defer os.RemoveAll(downloadDir)
	}

	recorder, closeLog, err := openRecorder(ctx, cfg, fmt.Sprintf("load %s", opts.Manifest))
	if err != nil {
		return err
	}
	defer closeLog()

	logHolder := modules.NewModuleSearchLogHolder()
	loaderOpts := []modules.LoaderOption{
		modules.WithSymbolStoreEnabled(anyCacheConfigured(cfg)),
	}
	if opts.CrashDump {
		loaderOpts = append(loaderOpts, modules.ForCrashDump())
	}
	if recorder != nil {
		loaderOpts = append(loaderOpts, modules.WithTelemetrySink(recorder))
	}

	loader := modules.NewModuleFileLoader(
		modules.NewBinaryLoader(server, modules.LocalReloader{}, downloadDir),
		modules.NewSymbolLoader(server, downloadDir),
		logHolder,
		loaderOpts...,
	)

	settings := storecfg.InclusionSettings(cfg.Inclusion)
	result, res, err := loader.LoadModuleFiles(ctx, mods, settings, opts.Interactive, opts.Force)
	if err != nil {
		return WrapExitError(ExitCommandError, "batch load interrupted", err)
	}

	summary := LoadSummary{Ok: res.Ok, SuggestSymbolStore: res.SuggestToEnableSymbolStore}
	summary.LaunchCommand = launchCommand(manifest.Launch, result)
	for _, m := range result {
		entry := LoadModuleResult{Name: m.Name(), Loaded: m.HasSymbolsLoaded()}
		if lm, ok := m.(*modules.LocalModule); ok {
			entry.Binary = lm.BinaryPath()
			entry.Symbols = lm.SymbolFilePath()
		}
		if opts.Verbose {
			entry.SearchLog = logHolder.Get(m)
		}
		summary.Modules = append(summary.Modules, entry)

		if recorder != nil {
			outcome := sessionOutcome(m)
			_ = recorder.RecordAttempt(ctx, m.Name(), "chain", m.Name(), m.BuildID().String(), outcome, "")
		}
	}

	if formatter.Format == "json" {
		if err := formatter.SuccessJSON(summary); err != nil {
			return err
		}
	} else {
		printLoadSummary(formatter, summary)
	}

	if !res.Ok {
		return NewExitError(ExitFailure, "some modules failed to load")
	}
	return nil
}

// launchCommand builds the debugger launch command line from the
// launch module's resolved binary and the manifest launch args.
// Quoting follows the remote debugger's argument parsing rules, so
// paths and arguments with spaces survive the round trip.
func launchCommand(launch *storecfg.LaunchSpec, result []modules.Module) string {
	if launch == nil {
		return ""
	}
	for _, m := range result {
		if m.Name() != launch.Module {
			continue
		}
		lm, ok := m.(*modules.LocalModule)
		if !ok || lm.BinaryPath() == "" {
			return ""
		}
		args := append([]string{lm.BinaryPath()}, launch.Args...)
		return strings.Join(argv.QuoteAll(args), " ")
	}
	return ""
}

func sessionOutcome(m modules.Module) string {
	if m.HasSymbolsLoaded() {
		return sessionlog.OutcomeHit
	}
	return sessionlog.OutcomeMiss
}

// anyCacheConfigured reports whether the configuration contains a
// cache store, which counts as having the symbol store feature
// enabled.
func anyCacheConfigured(cfg *storecfg.Config) bool {
	var walk func(specs []storecfg.StoreSpec) bool
	walk = func(specs []storecfg.StoreSpec) bool {
		for _, s := range specs {
			if s.Cache || walk(s.Stores) {
				return true
			}
		}
		return false
	}
	return walk(cfg.Stores)
}

func printLoadSummary(f *OutputFormatter, summary LoadSummary) {
	for _, m := range summary.Modules {
		status := "symbols loaded"
		if !m.Loaded {
			status = "no symbols"
		}
		fmt.Fprintf(f.Writer, "%-30s %s\n", m.Name, status)
		if f.Verbose && m.SearchLog != "" {
			fmt.Fprint(f.GetErrWriter(), m.SearchLog)
		}
	}
	if summary.SuggestSymbolStore {
		fmt.Fprintln(f.Writer, "hint: enable a symbol store cache to speed up future loads")
	}
	if summary.LaunchCommand != "" {
		fmt.Fprintf(f.Writer, "launch: %s\n", summary.LaunchCommand)
	}
}
