// Package config loads, normalizes, and validates mp4press configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MP4PRESS_FFMPEG. The Config type centralizes every knob the pipeline and CLI
// need: the working directory and its role directories, the resolution policy,
// ffmpeg settings, journal location, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
