package preflight

import (
	"context"
	"fmt"

	"mp4press/internal/config"
	"mp4press/internal/deps"
	"mp4press/internal/workdir"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Optional bool
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes every preflight check for cfg and layout. A nil runner
// executes binaries directly.
func RunAll(ctx context.Context, cfg *config.Config, layout workdir.Layout, run deps.Runner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Working directory", layout.Working)}
	for _, role := range []workdir.Role{workdir.RoleDone, workdir.RoleProcessed, workdir.RoleError} {
		results = append(results, CheckCreatableDirectory(roleLabel(role), layout.Dir(role)))
	}
	if cfg.Paths.LogDir != "" {
		r := CheckCreatableDirectory("Log directory", cfg.Paths.LogDir)
		r.Optional = true
		results = append(results, r)
	}

	for _, status := range CheckSystemDeps(ctx, cfg, run) {
		detail := status.Detail
		if status.Available {
			detail = status.Command
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Detail:   detail,
			Optional: status.Optional,
		})
	}
	return results
}

func roleLabel(role workdir.Role) string {
	switch role {
	case workdir.RoleDone:
		return "Done directory"
	case workdir.RoleProcessed:
		return "Processed directory"
	case workdir.RoleError:
		return "Error directory"
	default:
		return fmt.Sprintf("%s directory", role)
	}
}
