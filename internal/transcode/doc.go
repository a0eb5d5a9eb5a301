// Package transcode runs the external encoder that shrinks oversized files to
// a fixed frame. Only terminal success or failure is observable; callers
// decide what to do with a partial output.
package transcode
