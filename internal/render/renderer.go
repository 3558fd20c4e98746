// Package render implements the third pipeline stage: executing the planned
// filter graph with ffmpeg and producing the edited file in the job work
// directory.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pausetrim/internal/analysis"
	"pausetrim/internal/config"
	"pausetrim/internal/deps"
	"pausetrim/internal/fileutil"
	"pausetrim/internal/logging"
	"pausetrim/internal/media/ffmpeg"
	"pausetrim/internal/notifications"
	"pausetrim/internal/queue"
	"pausetrim/internal/services"
	"pausetrim/internal/stage"
)

// RenderFunc executes the render. Matches ffmpeg.Render.
type RenderFunc func(ctx context.Context, binary, source, output string, opts ffmpeg.RenderOptions) error

// Renderer runs the planned filter graph and writes the edited file.
type Renderer struct {
	cfg      *config.Config
	logger   *slog.Logger
	render   RenderFunc
	notifier notifications.Service
}

// NewRenderer constructs the render stage handler using the real ffmpeg binary.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	return NewRendererWithDependencies(cfg, logger, ffmpeg.Render, notifications.NewService(cfg))
}

// NewRendererWithDependencies allows injecting collaborators (used in tests).
func NewRendererWithDependencies(cfg *config.Config, logger *slog.Logger, render RenderFunc, notifier notifications.Service) *Renderer {
	return &Renderer{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "render"),
		render:   render,
		notifier: notifier,
	}
}

func (r *Renderer) Prepare(_ context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	item.SetProgress("Rendering", "Preparing render")
	if strings.TrimSpace(item.FilterComplex) == "" {
		return services.Wrap(services.ErrValidation, "rendering", "validate inputs",
			"Item has no filter graph; run planning first", nil)
	}
	return nil
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := r.logger.With(logging.String(logging.FieldJobID, item.JobID))

	workDir := analysis.JobWorkDir(r.cfg, item.JobID)
	if err := fileutil.EnsureDir(workDir); err != nil {
		return services.Wrap(services.ErrConfiguration, "rendering", "prepare work dir",
			fmt.Sprintf("Cannot create work directory %s", workDir), err)
	}
	output := filepath.Join(workDir, fileutil.EditedOutputName(item.SourcePath, r.cfg.Paths.OutputSuffix))

	item.SetProgress("Rendering", "Running ffmpeg")
	opts := Options(r.cfg, item.FilterComplex)
	if err := r.render(ctx, r.cfg.Tools.FFmpeg, item.SourcePath, output, opts); err != nil {
		_ = os.Remove(output)
		return services.Wrap(services.ErrExternalTool, "rendering", "run ffmpeg", "ffmpeg render failed", err)
	}
	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "rendering", "verify output",
			fmt.Sprintf("Render produced no usable output at %s", output), err)
	}

	item.OutputPath = output
	item.SetProgress("Rendering", "Render complete")
	logger.Info("render complete", logging.String("output", output))
	if r.notifier != nil {
		if err := r.notifier.NotifyRenderCompleted(ctx, item.SourcePath); err != nil {
			logger.Warn("render notification failed", logging.Error(err))
		}
	}
	return nil
}

func (r *Renderer) HealthCheck(context.Context) stage.Health {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: r.cfg.Tools.FFmpeg, Description: "Render"},
	})
	if !statuses[0].Available {
		return stage.Unhealthy("render", statuses[0].Detail)
	}
	return stage.Healthy("render")
}

// Options maps encode configuration onto ffmpeg render options.
func Options(cfg *config.Config, filterComplex string) ffmpeg.RenderOptions {
	return ffmpeg.RenderOptions{
		FilterComplex: filterComplex,
		VideoCodec:    cfg.Encode.VideoCodec,
		Preset:        cfg.Encode.Preset,
		CRF:           cfg.Encode.CRF,
		AudioCodec:    cfg.Encode.AudioCodec,
		AudioBitrate:  cfg.Encode.AudioBitrate,
		Faststart:     cfg.Encode.Faststart,
	}
}
