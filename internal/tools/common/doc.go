// Package common provides shared helpers for MCP tool implementations,
// such as account resolution and handler instrumentation, so the tool
// packages behave consistently.
package common
