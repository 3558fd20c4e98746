package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var (
	silenceStartPattern = regexp.MustCompile(`silence_start:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	silenceEndPattern   = regexp.MustCompile(`silence_end:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
)

// Detection holds the raw boundary sequences reported by silencedetect.
// Starts and Ends are in log order and may be unbalanced; pairing them into
// intervals is the caller's concern.
type Detection struct {
	Starts []float64
	Ends   []float64
}

// DetectSilences runs a silencedetect pass over audioPath and returns the
// reported boundaries. thresholdDB is the noise floor in dBFS (negative),
// minSilence the minimum silence duration in seconds.
func DetectSilences(ctx context.Context, binary, audioPath string, thresholdDB, minSilence float64) (Detection, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", thresholdDB, minSilence)
	args := []string{
		"-hide_banner",
		"-nostats",
		"-i", audioPath,
		"-af", filter,
		"-f", "null",
		"-",
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Detection{}, fmt.Errorf("ffmpeg silencedetect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return ParseSilenceLog(string(output)), nil
}

// ParseSilenceLog extracts silence_start and silence_end timestamps from
// silencedetect's stderr output. Negative timestamps (ffmpeg emits them for
// silence reaching the very start of the stream) are floored at zero.
func ParseSilenceLog(log string) Detection {
	var det Detection
	for _, match := range silenceStartPattern.FindAllStringSubmatch(log, -1) {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			det.Starts = append(det.Starts, max(v, 0))
		}
	}
	for _, match := range silenceEndPattern.FindAllStringSubmatch(log, -1) {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			det.Ends = append(det.Ends, max(v, 0))
		}
	}
	return det
}
