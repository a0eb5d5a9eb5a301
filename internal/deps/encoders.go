package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output() //nolint:gosec
}

// CheckEncoders reports whether ffmpeg was built with each named encoder.
// A nil runner executes the binary.
func CheckEncoders(ctx context.Context, run Runner, ffmpeg string, encoders ...string) []Status {
	if run == nil {
		run = execRunner
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	results := make([]Status, 0, len(encoders))
	output, err := run(checkCtx, ffmpeg, "-hide_banner", "-encoders")
	available := parseEncoders(output)
	for _, name := range encoders {
		status := Status{
			Name:        "Encoder " + name,
			Command:     ffmpeg,
			Description: "Required for compression",
		}
		switch {
		case err != nil:
			status.Detail = fmt.Sprintf("cannot list encoders: %v", err)
		case !available[name]:
			status.Detail = fmt.Sprintf("ffmpeg built without %s", name)
		default:
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// parseEncoders extracts encoder names from `ffmpeg -encoders` output, whose
// entries look like " V....D libx264   libx264 H.264 ...".
func parseEncoders(output []byte) map[string]bool {
	names := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	inList := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "------") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && len(fields[0]) == 6 {
			names[fields[1]] = true
		}
	}
	return names
}
