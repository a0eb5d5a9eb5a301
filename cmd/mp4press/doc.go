// Package main hosts the mp4press CLI entrypoint and command graph.
//
// The root command runs the routing pipeline over a working directory, once
// or continuously with --watch. Subcommands cover configuration scaffolding,
// journal history, and preflight checks. Configuration resolution, logger
// construction, and collaborator wiring live here so the internal packages
// stay free of flag handling.
package main
