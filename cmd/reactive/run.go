package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/scenario"
	"github.com/vango-dev/reactive/pkg/reactive"
)

type runOptions struct {
	configPath string
	metrics    bool
	trace      bool
	jsonOutput bool
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and check its expectations",
		Long: `Run builds the scenario's graph, executes every step and checks the
expectations attached to it.

Examples:
  reactive run counter.yaml
  reactive run counter.yaml --json
  reactive run counter.yaml --metrics
  reactive run counter.yaml --trace --config reactive.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to reactive.yaml (default: search upward)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print Prometheus metrics after the report")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Export flush spans to stderr")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON")

	return cmd
}

func runScenario(cmd *cobra.Command, path string, opts runOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.metrics {
		cfg.Metrics.Enabled = true
	}
	if opts.trace {
		cfg.Tracing.Enabled = true
	}

	logger := cfg.Logger(cmd.ErrOrStderr())
	obs, err := setupObservability(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer obs.shutdown(context.Background())

	prev := reactive.CurrentConfig()
	reactive.Configure(cfg.ReactiveConfig(logger, obs.monitor))
	defer reactive.Configure(prev)

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	report, runErr := scenario.NewRunner(logger).Run(cmd.Context(), s)
	if report != nil {
		if err := writeReport(cmd.OutOrStdout(), report, opts.jsonOutput); err != nil {
			return err
		}
	}
	if opts.metrics {
		if err := obs.writeMetrics(cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return runErr
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeReport(w io.Writer, report *scenario.Report, asJSON bool) error {
	if !asJSON {
		if err := report.WriteText(w); err != nil {
			return errors.New("X002").Wrap(err)
		}
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.New("X002").Wrap(err)
	}
	return nil
}
