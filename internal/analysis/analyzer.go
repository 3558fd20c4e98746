package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pausetrim/internal/config"
	"pausetrim/internal/deps"
	"pausetrim/internal/fileutil"
	"pausetrim/internal/logging"
	"pausetrim/internal/media/ffmpeg"
	"pausetrim/internal/media/ffprobe"
	"pausetrim/internal/notifications"
	"pausetrim/internal/queue"
	"pausetrim/internal/services"
	"pausetrim/internal/stage"
	"pausetrim/internal/timeline"
)

// ProbeFunc inspects a media file. Matches ffprobe.Inspect.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// ExtractFunc renders the detection WAV. Matches ffmpeg.ExtractDetectionAudio.
type ExtractFunc func(ctx context.Context, binary, source, dest, filterChain string) error

// DetectFunc runs silencedetect over the WAV. Matches ffmpeg.DetectSilences.
type DetectFunc func(ctx context.Context, binary, audioPath string, thresholdDB, minSilence float64) (ffmpeg.Detection, error)

// Analyzer probes the source and records its silence intervals.
type Analyzer struct {
	cfg      *config.Config
	logger   *slog.Logger
	probe    ProbeFunc
	extract  ExtractFunc
	detect   DetectFunc
	notifier notifications.Service
}

// NewAnalyzer constructs the analysis stage handler using the real ffmpeg
// and ffprobe binaries.
func NewAnalyzer(cfg *config.Config, logger *slog.Logger) *Analyzer {
	return NewAnalyzerWithDependencies(cfg, logger, ffprobe.Inspect, ffmpeg.ExtractDetectionAudio, ffmpeg.DetectSilences, notifications.NewService(cfg))
}

// NewAnalyzerWithDependencies allows injecting collaborators (used in tests).
func NewAnalyzerWithDependencies(cfg *config.Config, logger *slog.Logger, probe ProbeFunc, extract ExtractFunc, detect DetectFunc, notifier notifications.Service) *Analyzer {
	return &Analyzer{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "analysis"),
		probe:    probe,
		extract:  extract,
		detect:   detect,
		notifier: notifier,
	}
}

func (a *Analyzer) Prepare(_ context.Context, item *queue.Item) error {
	item.ErrorMessage = ""
	item.SetProgress("Analyzing", "Probing source")
	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "analyzing", "validate inputs", "Queue item has no source path", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "analyzing", "validate inputs",
			fmt.Sprintf("Source file not accessible: %s", source), err)
	}
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, item *queue.Item) error {
	logger := a.logger.With(logging.String(logging.FieldJobID, item.JobID))

	result, err := a.probe(ctx, a.cfg.Tools.FFprobe, item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "analyzing", "probe source", "ffprobe failed", err)
	}
	if result.VideoStreamCount() == 0 || result.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "analyzing", "probe source",
			fmt.Sprintf("Source needs one video and one audio stream, found %d video / %d audio",
				result.VideoStreamCount(), result.AudioStreamCount()), nil)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return services.Wrap(services.ErrValidation, "analyzing", "probe source", "Source reports no duration", nil)
	}
	item.DurationSeconds = duration

	workDir := JobWorkDir(a.cfg, item.JobID)
	if err := fileutil.EnsureDir(workDir); err != nil {
		return services.Wrap(services.ErrConfiguration, "analyzing", "prepare work dir",
			fmt.Sprintf("Cannot create work directory %s", workDir), err)
	}
	wavPath := filepath.Join(workDir, "detection.wav")
	defer os.Remove(wavPath)

	item.SetProgress("Analyzing", "Extracting detection audio")
	if err := a.extract(ctx, a.cfg.Tools.FFmpeg, item.SourcePath, wavPath, DetectionChain(a.cfg.Detection)); err != nil {
		return services.Wrap(services.ErrExternalTool, "analyzing", "extract audio", "ffmpeg audio extraction failed", err)
	}

	item.SetProgress("Analyzing", "Detecting silences")
	detection, err := a.detect(ctx, a.cfg.Tools.FFmpeg, wavPath, a.cfg.Detection.ThresholdDB, a.cfg.Detection.MinSilenceSec)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "analyzing", "detect silences", "ffmpeg silencedetect failed", err)
	}

	silences := timeline.PairSilences(detection.Starts, detection.Ends)
	if err := item.SetSilences(silences); err != nil {
		return services.Wrap(services.ErrValidation, "analyzing", "store silences", "Cannot encode detected silences", err)
	}
	item.SetProgress("Analyzing", fmt.Sprintf("Found %d silences", len(silences)))

	logger.Info("analysis complete",
		logging.Float64("duration_s", duration),
		logging.Int("silences", len(silences)),
	)
	if a.notifier != nil {
		if err := a.notifier.NotifyAnalysisComplete(ctx, item.SourcePath, len(silences)); err != nil {
			logger.Warn("analysis notification failed", logging.Error(err))
		}
	}
	return nil
}

func (a *Analyzer) HealthCheck(context.Context) stage.Health {
	for _, status := range deps.CheckBinaries(deps.Requirements(a.cfg)) {
		if !status.Available {
			return stage.Unhealthy("analysis", status.Detail)
		}
	}
	return stage.Healthy("analysis")
}

// JobWorkDir returns the scratch directory for one job.
func JobWorkDir(cfg *config.Config, jobID string) string {
	return filepath.Join(cfg.Paths.WorkDir, jobID)
}

// DetectionChain builds the ffmpeg audio filter chain applied to the
// throwaway detection track: denoise first, then band-limit to the
// voice range so silencedetect is not fooled by rumble or hiss.
func DetectionChain(det config.Detection) string {
	parts := make([]string, 0, 3)
	if det.Denoise {
		parts = append(parts, "afftdn=nr=10:nf=-25")
	}
	if det.HighpassHz > 0 {
		parts = append(parts, fmt.Sprintf("highpass=f=%d", det.HighpassHz))
	}
	if det.LowpassHz > 0 {
		parts = append(parts, fmt.Sprintf("lowpass=f=%d", det.LowpassHz))
	}
	return strings.Join(parts, ",")
}
