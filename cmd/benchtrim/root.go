package main

import (
	"errors"
	"fmt"
	"io"

	"benchtrim/internal/benchmark"
	"benchtrim/internal/config"
	"benchtrim/internal/db"
	errs "benchtrim/internal/errors"
	"benchtrim/internal/pipeline"
	"benchtrim/internal/report"
	"benchtrim/internal/telemetry"

	"github.com/spf13/cobra"
)

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if errors.Is(err, errs.ErrUsage) {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return errs.ExitCode(err)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "benchtrim [flags] <input-file-path> <output-file-path>",
		Short: "Rescale nanobench JSON results",
		Long: `benchtrim reads a nanobench JSON result document, rescales median(elapsed)
of every result and elapsed of every measurement by 1e8, truncates them to five
decimal places, and writes the document as indented JSON to the output path.`,
		Args:          requireInputOutput,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, cfgFile, args, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errs.NewUsageError("%v", err)
	})

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./benchtrim.yaml if present)")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

// requireInputOutput accepts two or more positional arguments. Anything past
// the second is ignored.
func requireInputOutput(_ *cobra.Command, args []string) error {
	if len(args) < 2 {
		return errs.NewUsageError("expected <input-file-path> <output-file-path>, got %d argument(s)", len(args))
	}
	return nil
}

func runTransform(cmd *cobra.Command, cfgFile string, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	closeLog := telemetry.InitLogger(stderr, telemetry.LoggerOptions{
		Debug:  cfg.Verbose,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	defer closeLog()

	if len(args) > 2 {
		telemetry.LogWarn("Ignoring extra arguments", "args", args[2:])
	}

	opts := pipeline.Options{
		Input:     args[0],
		Output:    args[1],
		Indent:    cfg.Indent,
		Summary:   cfg.Summary,
		Threshold: cfg.Threshold,
		Out:       stdout,
	}

	var metrics *telemetry.Metrics
	if cfg.MetricsFile != "" {
		metrics = telemetry.NewMetrics()
		opts.Metrics = metrics
	}

	if cfg.History.DSN != "" {
		store, err := openHistory(cfg.History)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				telemetry.LogError("Failed to close history store", err)
			}
		}()
		opts.Store = store
	}

	if opts.Summary || opts.Store != nil {
		opts.Reporter = report.NewReporter(stdout, cfg.NoColor)
	}

	_, runErr := pipeline.Run(opts)

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			if runErr == nil {
				return errs.NewIOError(cfg.MetricsFile, err)
			}
			telemetry.LogError("Failed to write metrics", err, "path", cfg.MetricsFile)
		}
	}

	return runErr
}

func openHistory(cfg config.HistoryConfig) (benchmark.Store, error) {
	store, err := db.NewStore(db.StoreConfig{Driver: cfg.Driver, DSN: cfg.DSN})
	if err != nil {
		return nil, errs.NewIOError("history", fmt.Errorf("failed to open %s history store: %w", cfg.Driver, err))
	}
	telemetry.LogDebug("Opened history store", "driver", cfg.Driver)
	return store, nil
}
