// Package resources provides MCP resources for exposing account and
// spreadsheet context. Resources are read-only data sources that MCP clients
// can fetch without invoking a tool, such as the list of recently modified
// spreadsheets or the stored credential status for the current account.
//
// Resources resolve the account from the request context, so on HTTP
// transport each session sees its own data.
package resources
