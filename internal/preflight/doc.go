// Package preflight provides readiness checks for the directories and
// external binaries a pipeline run depends on.
//
// The run command calls RunAll before touching any file and aborts when a
// required check fails. The "mp4press check" command prints every result.
package preflight
