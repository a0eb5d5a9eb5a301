// Package workdir resolves the four directory roles a run operates on
// (Working, Done, Processed, Error), creates the role directories on demand,
// and guards the working directory with a file lock so two runs never race on
// the same scan-and-move cycle.
package workdir
