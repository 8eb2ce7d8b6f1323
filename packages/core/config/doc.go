// Package config handles configuration loading and management for dromus.
//
// It provides functionality for:
//   - Loading configuration from .dromus.yml, .dromusrc or .dromus.json files
//   - Default configuration values
//   - Merging command line overrides over file settings
//   - Freezing the result into an immutable per-run Options snapshot
package config
