package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// RenderOptions configures the final filter_complex render.
type RenderOptions struct {
	FilterComplex string
	VideoLabel    string
	AudioLabel    string
	VideoCodec    string
	Preset        string
	CRF           int
	AudioCodec    string
	AudioBitrate  string
	Faststart     bool
}

// RenderArgs builds the ffmpeg argument list for a render without executing
// it. Exposed so a dry run can show exactly what would be invoked.
func RenderArgs(source, output string, opts RenderOptions) ([]string, error) {
	if strings.TrimSpace(opts.FilterComplex) == "" {
		return nil, errors.New("ffmpeg render: empty filter_complex")
	}
	videoLabel := opts.VideoLabel
	if videoLabel == "" {
		videoLabel = "vcat"
	}
	audioLabel := opts.AudioLabel
	if audioLabel == "" {
		audioLabel = "aout"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-i", source,
		"-filter_complex", opts.FilterComplex,
		"-map", "[" + videoLabel + "]",
		"-map", "[" + audioLabel + "]",
	}
	if opts.VideoCodec != "" {
		args = append(args, "-c:v", opts.VideoCodec)
	}
	if opts.Preset != "" {
		args = append(args, "-preset", opts.Preset)
	}
	if opts.CRF > 0 {
		args = append(args, "-crf", fmt.Sprintf("%d", opts.CRF))
	}
	if opts.AudioCodec != "" {
		args = append(args, "-c:a", opts.AudioCodec)
	}
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	if opts.Faststart {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, output)
	return args, nil
}

// Render executes the filter_complex render of source into output.
func Render(ctx context.Context, binary, source, output string, opts RenderOptions) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args, err := RenderArgs(source, output, opts)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg render: %w: %s", err, tailLines(string(out), 12))
	}
	return nil
}

// tailLines keeps error messages readable when ffmpeg dumps a long log.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
