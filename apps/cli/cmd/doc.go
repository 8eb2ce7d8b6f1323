// Package cmd implements the dromus CLI commands using Cobra.
//
// Available commands:
//   - run: Render event files or stdin as a terminal report
//   - validate: Check NDJSON event files against the event schema
//   - schema: Print the event schema
//   - version: Show dromus version information
//   - completion: Generate shell completion scripts
//
// Flags default from DROMUS_* environment variables and override the
// config file. Watch mode re-renders when event files change.
package cmd
