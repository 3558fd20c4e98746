package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pausetrim/internal/analysis"
	"pausetrim/internal/config"
	"pausetrim/internal/fileutil"
	"pausetrim/internal/logging"
	"pausetrim/internal/organizer"
	"pausetrim/internal/queue"
	"pausetrim/internal/services"
	"pausetrim/internal/testsupport"
)

func renderedItem(t *testing.T, cfg *config.Config) *queue.Item {
	t.Helper()
	item := &queue.Item{JobID: "job-1", SourcePath: "/in/talk.mp4", Status: queue.StatusOrganizing}
	workDir := analysis.JobWorkDir(cfg, item.JobID)
	if err := fileutil.EnsureDir(workDir); err != nil {
		t.Fatal(err)
	}
	item.OutputPath = filepath.Join(workDir, "talk_edited.mp4")
	if err := os.WriteFile(item.OutputPath, []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	return item
}

func TestOrganizerExecuteMovesToOutputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.NewOrganizer(cfg, logging.NewNop())
	item := renderedItem(t, cfg)

	if err := org.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := org.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := filepath.Join(cfg.Paths.OutputDir, "talk_edited.mp4")
	if item.OutputPath != want {
		t.Fatalf("final path = %q, want %q", item.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected final file: %v", err)
	}
	if _, err := os.Stat(analysis.JobWorkDir(cfg, item.JobID)); !os.IsNotExist(err) {
		t.Fatal("expected work dir removed")
	}
}

func TestOrganizerExecuteAvoidsOverwrite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.NewOrganizer(cfg, logging.NewNop())
	item := renderedItem(t, cfg)

	existing := filepath.Join(cfg.Paths.OutputDir, "talk_edited.mp4")
	if err := os.WriteFile(existing, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := org.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := filepath.Join(cfg.Paths.OutputDir, "talk_edited (1).mp4")
	if item.OutputPath != want {
		t.Fatalf("final path = %q, want %q", item.OutputPath, want)
	}
	data, err := os.ReadFile(existing)
	if err != nil || string(data) != "previous" {
		t.Fatalf("existing file clobbered: %q %v", data, err)
	}
}

func TestOrganizerPrepareRequiresRenderedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.NewOrganizer(cfg, logging.NewNop())

	err := org.Prepare(context.Background(), &queue.Item{JobID: "job-2"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeUploader struct {
	uploaded string
	err      error
}

func (f *fakeUploader) UploadFile(_ context.Context, localPath string) (string, error) {
	f.uploaded = localPath
	return "https://bucket.s3.us-east-1.amazonaws.com/" + filepath.Base(localPath), f.err
}

func TestOrganizerExecuteUploadsWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	uploader := &fakeUploader{}
	org := organizer.NewOrganizerWithDependencies(cfg, logging.NewNop(), uploader, nil)
	item := renderedItem(t, cfg)

	if err := org.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if uploader.uploaded != item.OutputPath {
		t.Fatalf("uploaded %q, want %q", uploader.uploaded, item.OutputPath)
	}
}

func TestOrganizerExecuteWrapsUploadFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	uploader := &fakeUploader{err: errors.New("denied")}
	org := organizer.NewOrganizerWithDependencies(cfg, logging.NewNop(), uploader, nil)
	item := renderedItem(t, cfg)

	if err := org.Execute(context.Background(), item); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
