package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEditedOutputName(t *testing.T) {
	cases := []struct {
		source string
		suffix string
		want   string
	}{
		{"clip.mp4", "_edited", "clip_edited.mp4"},
		{"/videos/lecture.part1.mkv", "_edited", "lecture.part1_edited.mkv"},
		{"noext", "_edited", "noext_edited"},
	}
	for _, tc := range cases {
		if got := EditedOutputName(tc.source, tc.suffix); got != tc.want {
			t.Errorf("EditedOutputName(%q) = %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestEditedOutputPath(t *testing.T) {
	got := EditedOutputPath("/in/talk.mp4", "/out", "_edited")
	want := filepath.Join("/out", "talk_edited.mp4")
	if got != want {
		t.Fatalf("EditedOutputPath = %q, want %q", got, want)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk_edited.mp4")

	if got := UniquePath(path); got != path {
		t.Fatalf("expected free path unchanged, got %q", got)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := UniquePath(path)
	want := filepath.Join(dir, "talk_edited (1).mp4")
	if got != want {
		t.Fatalf("UniquePath = %q, want %q", got, want)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected source removed")
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestIsVideoFile(t *testing.T) {
	if !IsVideoFile("a.MP4") {
		t.Fatal("expected .MP4 accepted")
	}
	if IsVideoFile("notes.txt") {
		t.Fatal("expected .txt rejected")
	}
}
