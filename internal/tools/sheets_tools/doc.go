// Package sheets_tools registers the Google Sheets MCP tools: reading and
// writing cell values, formatting, conditional formatting, merging, charts,
// formulas, named ranges, and spreadsheet management.
//
// Each handler validates its arguments locally, checks that the stored
// credential carries the scopes the operation needs, builds typed operation
// specs, and hands them to the batch dispatcher. Mutating tools are only
// registered when the server runs with write operations enabled.
package sheets_tools
