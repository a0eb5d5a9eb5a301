package transcode

import (
	"fmt"
	"strings"
)

const stderrTailLines = 5

// Error reports a failed transcode with the last lines ffmpeg printed.
type Error struct {
	Input  string
	Err    error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ffmpeg failed: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg failed: %v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func tail(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
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
