// Package deps reports the availability of the external binaries
// pausetrim shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"pausetrim/internal/config"
)

// Requirement defines an external dependency pausetrim relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configured pipeline needs.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg, ffprobe := "ffmpeg", "ffprobe"
	if cfg != nil {
		ffmpeg = cfg.Tools.FFmpeg
		ffprobe = cfg.Tools.FFprobe
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Silence detection and rendering"},
		{Name: "FFprobe", Command: ffprobe, Description: "Duration and stream probing"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		} else {
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// Verify returns an error when any required binary is missing.
func Verify(cfg *config.Config) error {
	for _, status := range CheckBinaries(Requirements(cfg)) {
		if !status.Available && !status.Optional {
			return fmt.Errorf("%s unavailable: %s", status.Name, status.Detail)
		}
	}
	return nil
}
