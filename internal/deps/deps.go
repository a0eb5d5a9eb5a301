package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Requirement names an external binary and what it is needed for.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports whether a requirement could be satisfied. Optional marks
// capabilities whose absence degrades rather than blocks a run.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinary resolves req.Command on PATH. On success Command holds the
// resolved path.
func CheckBinary(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := lookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// CheckBinaries runs CheckBinary for each requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, CheckBinary(req))
	}
	return results
}
