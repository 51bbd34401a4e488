// Package cmd implements the command-line interface for sheetsmcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google Sheets tools for AI assistants
//   - auth: Manage stored Google OAuth credentials (url, exchange, status, clear)
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
