// Package batch provides common utilities for batch operations across all MCP tools.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Formatting batch results in a consistent structure
//   - Converting dispatcher outcomes into per-operation results
//   - Handling partial failures in batch operations
package batch
