package instrumentation

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys, shared across instruments for consistent labeling.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrAccount   = "account"
	attrKind      = "kind"
)

// Histogram bucket boundaries in seconds. HTTP requests skew fast, Google API
// calls and tool invocations can take much longer.
var (
	httpDurationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}
	slowDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	batchSizeBuckets    = []float64{1, 2, 5, 10, 25, 50, 100}
)

// Metrics provides methods for recording observability metrics. Every Record
// method is safe to call on a zero-initialized instrument and simply does
// nothing, so callers never need to guard individual recordings.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
	googleAPIRetriesTotal      metric.Int64Counter

	// OAuth metrics
	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	// Batch dispatch metrics
	dispatchOperationsTotal metric.Int64Counter
	dispatchBatchSize       metric.Int64Histogram

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels (account
	// names) are attached to metrics.
	detailedLabels bool
}

// NewMetrics creates a Metrics instance with all instruments registered on
// the given meter. The detailedLabels parameter controls whether
// high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	var firstErr error

	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name,
			metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return c
	}
	histogram := func(name, desc, unit string, buckets []float64) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name,
			metric.WithDescription(desc), metric.WithUnit(unit),
			metric.WithExplicitBucketBoundaries(buckets...))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return h
	}

	m := &Metrics{
		detailedLabels: detailedLabels,

		httpRequestsTotal: counter("http_requests_total",
			"Total number of HTTP requests", "{request}"),
		httpRequestDuration: histogram("http_request_duration_seconds",
			"HTTP request duration in seconds", "s", httpDurationBuckets),

		googleAPIOperationsTotal: counter("google_api_operations_total",
			"Total number of Google API operations", "{operation}"),
		googleAPIOperationDuration: histogram("google_api_operation_duration_seconds",
			"Google API operation duration in seconds", "s", slowDurationBuckets),
		googleAPIRetriesTotal: counter("google_api_retries_total",
			"Total number of retried Google API calls", "{retry}"),

		oauthAuthTotal: counter("oauth_auth_total",
			"Total number of OAuth authentication attempts", "{attempt}"),
		oauthTokenRefreshTotal: counter("oauth_token_refresh_total",
			"Total number of OAuth token refresh attempts", "{attempt}"),

		dispatchOperationsTotal: counter("dispatch_operations_total",
			"Total number of spreadsheet mutations dispatched", "{operation}"),

		toolInvocationsTotal: counter("mcp_tool_invocations_total",
			"Total number of MCP tool invocations", "{invocation}"),
		toolDuration: histogram("mcp_tool_duration_seconds",
			"MCP tool execution duration in seconds", "s", slowDurationBuckets),
	}

	var err error
	m.activeSessions, err = meter.Int64UpDownCounter("active_sessions",
		metric.WithDescription("Number of active user sessions"),
		metric.WithUnit("{session}"))
	if err != nil && firstErr == nil {
		firstErr = err
	}

	m.dispatchBatchSize, err = meter.Int64Histogram("dispatch_batch_size",
		metric.WithDescription("Number of operations grouped into one batch dispatch"),
		metric.WithUnit("{operation}"),
		metric.WithExplicitBucketBoundaries(batchSizeBuckets...))
	if err != nil && firstErr == nil {
		firstErr = err
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIOperation records a Google API operation.
//
// Parameters:
//   - service: Google service name (sheets, drive)
//   - operation: Operation type (read, write, append, clear, batch_update, metadata, list)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIRetry records one retried Google API call.
func (m *Metrics) RecordGoogleAPIRetry(ctx context.Context, operation string) {
	if m.googleAPIRetriesTotal == nil {
		return
	}

	m.googleAPIRetriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
	))
}

// RecordOAuthAuth records an OAuth authentication attempt.
// Result should be one of: "success", "failure".
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuthTotal == nil {
		return
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt.
// Result should be one of: "success", "failure", "expired".
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.oauthTokenRefreshTotal == nil {
		return
	}

	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordDispatchOperation records one spreadsheet mutation routed through the
// batch dispatcher.
//
// Parameters:
//   - kind: Operation kind (format, conditional_format, merge, chart, formula, named_range)
//   - status: Result status ("success" or "error")
func (m *Metrics) RecordDispatchOperation(ctx context.Context, kind, status string) {
	if m.dispatchOperationsTotal == nil {
		return
	}

	m.dispatchOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	))
}

// RecordDispatchBatchSize records how many operations one dispatch grouped.
func (m *Metrics) RecordDispatchBatchSize(ctx context.Context, size int) {
	if m.dispatchBatchSize == nil {
		return
	}

	m.dispatchBatchSize.Record(ctx, int64(size))
}

// RecordToolInvocation records an MCP tool invocation. The account label is
// only attached when detailed labels are enabled, keeping cardinality bounded
// by default.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "sheets_read_range", "sheets_format_cells")
//   - status: Result status ("success" or "error")
//   - account: Account the invocation ran under; may be empty
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m.activeSessions != nil {
		m.activeSessions.Add(ctx, 1)
	}
}

// DecrementActiveSessions decrements the active sessions counter.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m.activeSessions != nil {
		m.activeSessions.Add(ctx, -1)
	}
}
