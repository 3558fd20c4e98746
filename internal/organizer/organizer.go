// Package organizer implements the final pipeline stage: moving the rendered
// file to its destination, optionally uploading it, and cleaning up the job
// work directory.
package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pausetrim/internal/analysis"
	"pausetrim/internal/config"
	"pausetrim/internal/fileutil"
	"pausetrim/internal/logging"
	"pausetrim/internal/notifications"
	"pausetrim/internal/queue"
	"pausetrim/internal/services"
	"pausetrim/internal/stage"
)

// Uploader pushes a local file to remote storage and returns its URL.
type Uploader interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}

// Organizer moves rendered files to their final destination.
type Organizer struct {
	cfg      *config.Config
	logger   *slog.Logger
	uploader Uploader
	notifier notifications.Service
}

// NewOrganizer constructs the organizing stage handler.
func NewOrganizer(cfg *config.Config, logger *slog.Logger) *Organizer {
	return NewOrganizerWithDependencies(cfg, logger, nil, notifications.NewService(cfg))
}

// NewOrganizerWithDependencies allows injecting collaborators (used in tests
// and when S3 uploads are enabled).
func NewOrganizerWithDependencies(cfg *config.Config, logger *slog.Logger, uploader Uploader, notifier notifications.Service) *Organizer {
	return &Organizer{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		uploader: uploader,
		notifier: notifier,
	}
}

func (o *Organizer) Prepare(_ context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	item.SetProgress("Organizing", "Moving rendered file")
	if strings.TrimSpace(item.OutputPath) == "" {
		return services.Wrap(services.ErrValidation, "organizing", "validate inputs",
			"Item has no rendered file; run rendering first", nil)
	}
	if _, err := os.Stat(item.OutputPath); err != nil {
		return services.Wrap(services.ErrValidation, "organizing", "validate inputs",
			fmt.Sprintf("Rendered file not accessible: %s", item.OutputPath), err)
	}
	return nil
}

func (o *Organizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := o.logger.With(logging.String(logging.FieldJobID, item.JobID))

	destDir := strings.TrimSpace(o.cfg.Paths.OutputDir)
	if destDir == "" {
		destDir = filepath.Dir(item.SourcePath)
	}
	if err := fileutil.EnsureDir(destDir); err != nil {
		return services.Wrap(services.ErrConfiguration, "organizing", "prepare destination",
			fmt.Sprintf("Cannot create output directory %s", destDir), err)
	}

	finalPath := fileutil.UniquePath(filepath.Join(destDir, filepath.Base(item.OutputPath)))
	if err := fileutil.MoveFile(item.OutputPath, finalPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "organizing", "move output",
			fmt.Sprintf("Cannot move rendered file to %s", finalPath), err)
	}
	item.OutputPath = finalPath

	if o.uploader != nil {
		item.SetProgress("Organizing", "Uploading")
		url, err := o.uploader.UploadFile(ctx, finalPath)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "organizing", "upload output", "S3 upload failed", err)
		}
		logger.Info("upload complete", logging.String("url", url))
	}

	workDir := analysis.JobWorkDir(o.cfg, item.JobID)
	if err := os.RemoveAll(workDir); err != nil {
		logger.Warn("work dir cleanup failed", logging.String("dir", workDir), logging.Error(err))
	}

	item.SetProgress("Completed", fmt.Sprintf("Output: %s", filepath.Base(finalPath)))
	logger.Info("organization complete", logging.String("final_file", finalPath))
	if o.notifier != nil {
		if err := o.notifier.NotifyJobCompleted(ctx, item.SourcePath, finalPath); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

func (o *Organizer) HealthCheck(context.Context) stage.Health {
	destDir := strings.TrimSpace(o.cfg.Paths.OutputDir)
	if destDir == "" {
		return stage.Healthy("organizer")
	}
	if err := fileutil.EnsureDir(destDir); err != nil {
		return stage.Unhealthy("organizer", fmt.Sprintf("output directory unavailable: %v", err))
	}
	return stage.Healthy("organizer")
}
