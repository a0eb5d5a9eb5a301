// Package router owns the lifecycle of a single file: inspect it, decide its
// disposition, perform the move or transcode exactly once, and clean up after
// a failed compression.
//
// Route never deletes an original. Every original ends in exactly one of the
// Done, Processed, or Error directories, or stays in Working when a
// filesystem operation fails or the context is cancelled. A failed
// compression never leaves its artifact in Done.
package router
