// Package sheets translates tool-level requests into Google Sheets API
// calls.
//
// The package has three layers:
//
//   - RangeAddress parses A1 notation into half-open grid coordinates and
//     formats them back; ParseRange/String round-trip on resolved ranges.
//   - OperationSpec is a tagged union over the supported mutations (cell
//     formatting, conditional format rules, merges, charts, formulas, named
//     ranges). Each variant validates locally before anything is built, and
//     the builders turn validated specs into batchUpdate requests.
//   - Dispatcher groups the built requests per spreadsheet into a single
//     atomic batchUpdate, routes plain formulas through the values API, and
//     retries transient failures (429, 5xx, timeouts) with exponential
//     backoff. Results are reported per sub-request; partial success is
//     never collapsed into one error.
//
// Client wraps the generated sheets/v4 and drive/v3 services for one
// account, with spreadsheet listing backed by a Drive MIME-type query.
package sheets
