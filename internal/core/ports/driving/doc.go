// Package driving provides interfaces for application entry points
// (primary/inbound ports) used by the CLI, HTTP API and TUI adapters.
package driving
