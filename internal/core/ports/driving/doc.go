// Package driving lists what the CLI, MCP server and TUI may ask of the core.
// The implementations are in internal/core/services; adapters depend on
// these interfaces only.
package driving
