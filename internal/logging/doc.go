// Package logging provides structured logging utilities for the sheetsmcp application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - Token sanitization for safe credential logging
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "sheets.batch_update")
//	logger.Info("dispatching batch",
//	    logging.Spreadsheet(id),
//	    logging.Requests(len(reqs)))
//
// # Security Considerations
//
// OAuth tokens are never logged directly; use SanitizeToken for any
// token-adjacent log output.
package logging
