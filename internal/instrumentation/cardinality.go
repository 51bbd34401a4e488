package instrumentation

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with document identifiers.

// TruncateDocumentID shortens a spreadsheet ID to an 8-character prefix for
// low-cardinality logging. Spreadsheet IDs are 44 characters of entropy, so a
// prefix still distinguishes documents in a typical deployment without
// leaking the full shareable ID.
//
// Example:
//
//	TruncateDocumentID("1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")  // "1BxiMVs0…"
//	TruncateDocumentID("short")                                          // "short"
//	TruncateDocumentID("")                                               // "unknown"
func TruncateDocumentID(id string) string {
	if id == "" {
		return "unknown"
	}
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}

// Common operation types for Google API metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationRead        = "read"
	OperationWrite       = "write"
	OperationAppend      = "append"
	OperationClear       = "clear"
	OperationCreate      = "create"
	OperationList        = "list"
	OperationMetadata    = "metadata"
	OperationBatchUpdate = "batch_update"
)
