package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pausetrim/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external binary availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			missing := false
			for _, status := range statuses {
				state := "ok"
				detail := status.Command
				if !status.Available {
					state = "missing"
					detail = status.Detail
					if !status.Optional {
						missing = true
					}
				}
				rows = append(rows, []string{status.Name, state, detail, status.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Dependency", "State", "Detail", "Used for"}, rows))

			if missing {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}
}
