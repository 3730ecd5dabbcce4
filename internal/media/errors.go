package media

import (
	"fmt"
	"strings"
)

const stderrTailLines = 5

// ExecError reports a failed ffmpeg run together with the end of its stderr.
type ExecError struct {
	Kind   Kind
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	tail := StderrTail(e.Stderr, stderrTailLines)
	if tail == "" {
		return fmt.Sprintf("ffmpeg %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ffmpeg %s: %v: %s", e.Kind, e.Err, tail)
}

func (e *ExecError) Unwrap() error { return e.Err }

// StderrTail returns the last n non-empty lines of stderr joined by " | ".
func StderrTail(stderr string, n int) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append(kept, line)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, " | ")
}
