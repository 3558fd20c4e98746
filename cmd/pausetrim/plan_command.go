package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pausetrim/internal/analysis"
	"pausetrim/internal/planner"
	"pausetrim/internal/queue"
	"pausetrim/internal/timeline"
)

type planOutput struct {
	Source          string              `json:"source"`
	DurationSeconds float64             `json:"duration_seconds"`
	Silences        []timeline.Interval `json:"silences"`
	KeepRanges      []timeline.Interval `json:"keep_ranges"`
	RetainedSeconds float64             `json:"retained_seconds"`
	FilterComplex   string              `json:"filter_complex"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan FILE",
		Short: "Show the edit plan for a file without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			source, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}

			item := &queue.Item{JobID: uuid.NewString(), SourcePath: source}
			if err := runStage(cmd, analysis.NewAnalyzer(cfg, logger), item); err != nil {
				return err
			}
			if err := runStage(cmd, planner.NewPlanner(cfg, logger), item); err != nil {
				return err
			}

			if !asJSON {
				return printPlan(cmd.OutOrStdout(), cfg, item)
			}

			silences, err := item.Silences()
			if err != nil {
				return err
			}
			keep, err := item.KeepRanges()
			if err != nil {
				return err
			}
			payload := planOutput{
				Source:          source,
				DurationSeconds: item.DurationSeconds,
				Silences:        silences,
				KeepRanges:      keep,
				RetainedSeconds: totalLength(keep),
				FilterComplex:   item.FilterComplex,
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(payload)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the plan as JSON")
	return cmd
}
