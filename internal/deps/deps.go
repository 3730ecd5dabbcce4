// Package deps reports whether the external binaries a sweep shells out
// to are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary bitrate-lab relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// SweepRequirements lists the binaries a sweep uses.
func SweepRequirements(ffmpegBinary string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Encodes every rendition and extracts audio"},
		{Name: "FFprobe", Command: "ffprobe", Description: "Reads duration and stream layout of the input", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// FirstMissing returns an error naming the first unavailable required binary.
func FirstMissing(statuses []Status) error {
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			return fmt.Errorf("%s unavailable: %s", s.Name, s.Detail)
		}
	}
	return nil
}
