// Package server provides the MCP server context, session management,
// and operational HTTP endpoints for the sheetsmcp application.
//
// # Key Components
//
// ServerContext manages Google Sheets clients with lazy initialization and
// caching. It supports multiple accounts: each account gets its own client
// and batch dispatcher, created on first use from the stored OAuth token.
//
// SessionIDManager handles multi-account session tracking for HTTP transport.
// It maps Bearer tokens to accounts, enabling multiple users to share a
// single MCP server instance.
//
// HealthChecker exposes /healthz, /readyz, and /healthz/detailed endpoints
// for liveness and readiness probes.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolating
// operational metrics from the main application traffic.
package server
