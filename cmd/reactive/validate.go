package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/scenario"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Check scenario files without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				s, err := scenario.Load(path)
				if err != nil {
					return err
				}
				success(cmd, "%s: %d nodes, %d steps", path, len(s.Nodes), len(s.Steps))
			}
			return nil
		},
	}
}
