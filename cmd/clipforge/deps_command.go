package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			requiredOK := deps.AllRequiredAvailable(statuses)
			statuses = append(statuses, deps.CheckFFmpegVersion(cmd.Context(), cfg.FFmpegBinary()))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				availability := "available"
				if !status.Available {
					availability = status.Detail
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(status.Optional),
					availability,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dependency", "Command", "Optional", "Status"},
				rows,
			))

			if !requiredOK {
				return fmt.Errorf("required dependencies are missing")
			}
			return nil
		},
	}
}
