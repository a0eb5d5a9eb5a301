// Package media turns probe output into the validity and dimension facts the
// router decides on. Probe failures are reported as an invalid Info value,
// never as an error.
package media
