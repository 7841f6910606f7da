package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/scenario"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func graphCmd() *cobra.Command {
	var (
		format string
		steps  bool
	)

	cmd := &cobra.Command{
		Use:   "graph <scenario.yaml>",
		Short: "Print the dependency graph of a scenario",
		Long: `Graph builds the scenario's nodes and prints a snapshot of the
reactive graph: owners, computations, signals and selector keys with
their heights, states and edges.

Examples:
  reactive graph counter.yaml
  reactive graph counter.yaml --format yaml
  reactive graph counter.yaml --steps`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return errors.New("X001").WithDetailf("Unknown format %q", format)
			}

			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			if steps {
				report, runErr := scenario.NewRunner(nil).Run(cmd.Context(), s)
				if report == nil {
					return runErr
				}
				if err := writeGraph(cmd.OutOrStdout(), report.Graph, format); err != nil {
					return err
				}
				return runErr
			}

			net, err := scenario.Build(s)
			if err != nil {
				return err
			}
			defer net.Close()
			return writeGraph(cmd.OutOrStdout(), net.Graph(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&steps, "steps", false, "Run the scenario's steps before taking the snapshot")

	return cmd
}

func writeGraph(w io.Writer, g reactive.Graph, format string) error {
	var err error
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(g); err == nil {
			err = enc.Close()
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(g)
	}
	if err != nil {
		return errors.New("X002").Wrap(err)
	}
	return nil
}
