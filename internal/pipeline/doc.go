// Package pipeline drives the rescan loop: list the working directory, route
// every candidate sequentially, and list again until a pass finds nothing.
//
// Files dropped into the working directory while a pass is running are
// picked up by the next pass. A file that fails unexpectedly stays where it
// is and is not retried within the same run, so the loop always terminates.
package pipeline
