// Package deps reports the availability of external binaries the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"loom/internal/config"
)

// Requirement defines an external binary loom relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}

// ForConfig lists the binaries the configured pipeline needs.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "ffprobe", Command: cfg.Tools.FFprobe, Description: "Measures clip durations for chapter timelines"},
		{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Description: "Extracts thumbnail frames from merged videos"},
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
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing filters statuses down to unavailable binaries.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}
