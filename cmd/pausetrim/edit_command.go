package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pausetrim/internal/analysis"
	"pausetrim/internal/config"
	"pausetrim/internal/fileutil"
	"pausetrim/internal/media/ffmpeg"
	"pausetrim/internal/organizer"
	"pausetrim/internal/planner"
	"pausetrim/internal/queue"
	"pausetrim/internal/render"
	"pausetrim/internal/stage"
	"pausetrim/internal/storage/s3"
	"pausetrim/internal/timeline"
)

func newEditCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Shorten long pauses in a single video file",
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
			if !fileutil.IsVideoFile(source) {
				return fmt.Errorf("unsupported file type: %s", filepath.Ext(source))
			}
			if strings.TrimSpace(outputDir) != "" {
				edited := *cfg
				expanded, err := config.ExpandPath(outputDir)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				edited.Paths.OutputDir = expanded
				cfg = &edited
			}

			item := &queue.Item{JobID: uuid.NewString(), SourcePath: source}
			out := cmd.OutOrStdout()

			if err := runStage(cmd, analysis.NewAnalyzer(cfg, logger), item); err != nil {
				return err
			}
			if err := runStage(cmd, planner.NewPlanner(cfg, logger), item); err != nil {
				return err
			}

			if dryRun {
				return printPlan(out, cfg, item)
			}

			if err := runStage(cmd, render.NewRenderer(cfg, logger), item); err != nil {
				return err
			}

			uploader, err := s3.NewUploader(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("configure upload: %w", err)
			}
			var org stage.Handler
			if uploader != nil {
				org = organizer.NewOrganizerWithDependencies(cfg, logger, uploader, nil)
			} else {
				org = organizer.NewOrganizer(cfg, logger)
			}
			if err := runStage(cmd, org, item); err != nil {
				return err
			}

			fmt.Fprintf(out, "Wrote %s\n", item.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory for the edited file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze and plan without rendering")
	return cmd
}

func runStage(cmd *cobra.Command, handler stage.Handler, item *queue.Item) error {
	if err := handler.Prepare(cmd.Context(), item); err != nil {
		return err
	}
	return handler.Execute(cmd.Context(), item)
}

func printPlan(out io.Writer, cfg *config.Config, item *queue.Item) error {
	silences, err := item.Silences()
	if err != nil {
		return err
	}
	keep, err := item.KeepRanges()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Source duration: %s\n", formatSeconds(item.DurationSeconds))
	fmt.Fprintf(out, "Detected silences: %d\n", len(silences))
	if len(silences) > 0 {
		rows := make([][]string, 0, len(silences))
		for _, s := range silences {
			rows = append(rows, []string{formatSeconds(s.Start), formatSeconds(s.End), formatSeconds(s.Length())})
		}
		fmt.Fprintln(out, renderTable([]string{"Start", "End", "Length"}, rows, 1, 2, 3))
	}

	retained := totalLength(keep)
	rows := make([][]string, 0, len(keep))
	for _, r := range keep {
		rows = append(rows, []string{formatSeconds(r.Start), formatSeconds(r.End), formatSeconds(r.Length())})
	}
	fmt.Fprintf(out, "Keep ranges: %d\n", len(keep))
	fmt.Fprintln(out, renderTable([]string{"Start", "End", "Length"}, rows, 1, 2, 3))
	fmt.Fprintf(out, "Retained %s of %s (removing %s)\n",
		formatSeconds(retained), formatSeconds(item.DurationSeconds), formatSeconds(item.DurationSeconds-retained))

	args, err := ffmpeg.RenderArgs(item.SourcePath, fileutil.EditedOutputName(item.SourcePath, cfg.Paths.OutputSuffix), render.Options(cfg, item.FilterComplex))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nffmpeg %s\n", strings.Join(args, " "))
	return nil
}

func totalLength(ranges []timeline.Interval) float64 {
	total := 0.0
	for _, r := range ranges {
		total += r.Length()
	}
	return total
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.3fs", v)
}
