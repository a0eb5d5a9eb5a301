// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect runs the ffprobe binary; InspectWith accepts a Runner so callers
// and tests can substitute the process invocation.
package ffprobe
