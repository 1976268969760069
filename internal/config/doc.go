// Package config loads, normalizes, and validates bookreel configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI needs:
// book metadata, chapter/audio/video directories, synthesis concurrency and
// retry budgets, render worker counts, and upload settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical log formats, and clear validation
// errors.
package config
