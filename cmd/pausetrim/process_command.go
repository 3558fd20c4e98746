package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pausetrim/internal/config"
	"pausetrim/internal/organizer"
	"pausetrim/internal/queue"
	"pausetrim/internal/storage/s3"
	"pausetrim/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Process queued items until the queue is drained",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				uploader, err := s3.NewUploader(runCtx, cfg)
				if err != nil {
					return fmt.Errorf("configure upload: %w", err)
				}
				var stageUploader organizer.Uploader
				if uploader != nil {
					stageUploader = uploader
				}

				manager := workflow.NewManager(cfg, store, logger, workflow.DefaultStages(cfg, logger, stageUploader))
				for _, check := range manager.HealthChecks(runCtx) {
					if !check.Ready {
						return fmt.Errorf("stage %s not ready: %s", check.Name, check.Detail)
					}
				}

				summary, err := manager.RunOnce(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if summary.Processed+summary.Failed == 0 {
					fmt.Fprintln(out, "Nothing to process")
					return nil
				}
				fmt.Fprintf(out, "Processed %d item(s), %d failed in %s\n",
					summary.Processed, summary.Failed, summary.Elapsed.Round(time.Second))
				return nil
			})
		},
	}
}
