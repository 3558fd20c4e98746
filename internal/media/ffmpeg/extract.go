package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExtractDetectionAudio renders the source's audio to a mono 48kHz WAV at
// dest, applying filterChain first when non-empty. The cleaned WAV is what
// silence detection runs against; it is never part of the final output.
func ExtractDetectionAudio(ctx context.Context, binary, source, dest, filterChain string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
	}
	if chain := strings.TrimSpace(filterChain); chain != "" {
		args = append(args, "-af", chain)
	}
	args = append(args,
		"-ac", "1",
		"-ar", "48000",
		"-c:a", "pcm_s16le",
		dest,
	)
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
