package analysis_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pausetrim/internal/analysis"
	"pausetrim/internal/config"
	"pausetrim/internal/logging"
	"pausetrim/internal/media/ffmpeg"
	"pausetrim/internal/media/ffprobe"
	"pausetrim/internal/queue"
	"pausetrim/internal/services"
	"pausetrim/internal/testsupport"
)

func newTestItem(t *testing.T) *queue.Item {
	t.Helper()
	source := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(source, []byte("container"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &queue.Item{JobID: "job-1", SourcePath: source, Status: queue.StatusAnalyzing}
}

func stubProbe(result ffprobe.Result, err error) analysis.ProbeFunc {
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return result, err
	}
}

func stubExtract(t *testing.T) analysis.ExtractFunc {
	return func(_ context.Context, _, _, dest, _ string) error {
		t.Helper()
		return os.WriteFile(dest, []byte("wav"), 0o644)
	}
}

func goodProbeResult() ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
		},
		Format: ffprobe.Format{Duration: "10.0"},
	}
}

func TestAnalyzerExecuteStoresSilences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	detect := func(context.Context, string, string, float64, float64) (ffmpeg.Detection, error) {
		return ffmpeg.Detection{Starts: []float64{2.0}, Ends: []float64{5.0}}, nil
	}
	analyzer := analysis.NewAnalyzerWithDependencies(cfg, logging.NewNop(), stubProbe(goodProbeResult(), nil), stubExtract(t), detect, nil)

	item := newTestItem(t)
	if err := analyzer.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := analyzer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.DurationSeconds != 10.0 {
		t.Fatalf("duration = %v", item.DurationSeconds)
	}
	silences, err := item.Silences()
	if err != nil {
		t.Fatal(err)
	}
	if len(silences) != 1 || silences[0].Start != 2.0 || silences[0].End != 5.0 {
		t.Fatalf("unexpected silences %+v", silences)
	}
	wav := filepath.Join(analysis.JobWorkDir(cfg, item.JobID), "detection.wav")
	if _, err := os.Stat(wav); !os.IsNotExist(err) {
		t.Fatal("expected detection WAV removed")
	}
}

func TestAnalyzerPrepareRejectsMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	analyzer := analysis.NewAnalyzerWithDependencies(cfg, logging.NewNop(), stubProbe(goodProbeResult(), nil), stubExtract(t), nil, nil)

	item := &queue.Item{JobID: "job-2", SourcePath: filepath.Join(t.TempDir(), "missing.mp4")}
	err := analyzer.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzerExecuteRejectsMissingStreams(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video"}},
		Format:  ffprobe.Format{Duration: "10.0"},
	}
	analyzer := analysis.NewAnalyzerWithDependencies(cfg, logging.NewNop(), stubProbe(result, nil), stubExtract(t), nil, nil)

	err := analyzer.Execute(context.Background(), newTestItem(t))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzerExecuteWrapsProbeFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	analyzer := analysis.NewAnalyzerWithDependencies(cfg, logging.NewNop(), stubProbe(ffprobe.Result{}, errors.New("boom")), stubExtract(t), nil, nil)

	err := analyzer.Execute(context.Background(), newTestItem(t))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestDetectionChain(t *testing.T) {
	chain := analysis.DetectionChain(config.Detection{Denoise: true, HighpassHz: 80, LowpassHz: 12000})
	if chain != "afftdn=nr=10:nf=-25,highpass=f=80,lowpass=f=12000" {
		t.Fatalf("chain = %q", chain)
	}
	if analysis.DetectionChain(config.Detection{}) != "" {
		t.Fatal("expected empty chain when everything is disabled")
	}
}
