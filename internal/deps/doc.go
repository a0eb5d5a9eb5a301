// Package deps reports whether the external binaries mp4press shells out to
// are installed and capable of the configured encode.
package deps
