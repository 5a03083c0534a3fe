// Package config loads, normalizes, and validates ideascore configuration.
//
// It supplies repository defaults, reads TOML files, expands "~" in paths and
// honours the GITHUB_TOKEN environment fallback. The GitHub credential lives
// here and is handed to the search client explicitly; nothing else in the
// repository reads it.
package config
