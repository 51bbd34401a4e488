package google

// Google OAuth scope URLs used by the application.
const (
	ScopeSpreadsheets         = "https://www.googleapis.com/auth/spreadsheets"
	ScopeSpreadsheetsReadOnly = "https://www.googleapis.com/auth/spreadsheets.readonly"
	ScopeDrive                = "https://www.googleapis.com/auth/drive"
	ScopeDriveReadOnly        = "https://www.googleapis.com/auth/drive.readonly"
	ScopeDriveFile            = "https://www.googleapis.com/auth/drive.file"
)

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP
// functionality. These scopes are used consistently across the application
// for OAuth configurations.
//
// The scopes provide access to:
//   - Google Sheets: read and write spreadsheet content, formatting, charts
//   - Google Drive: list and create spreadsheet files
var DefaultOAuthScopes = []string{
	ScopeSpreadsheets,
	ScopeDrive,
}

// ReadOnlyOAuthScopes are the scopes sufficient for read-only operation.
var ReadOnlyOAuthScopes = []string{
	ScopeSpreadsheetsReadOnly,
	ScopeDriveReadOnly,
}

// scopeImplies maps each broad scope to the narrower scopes it covers. A
// credential granted the full spreadsheets scope satisfies a read-only
// requirement without re-consent.
var scopeImplies = map[string][]string{
	ScopeSpreadsheets: {ScopeSpreadsheetsReadOnly},
	ScopeDrive:        {ScopeDriveReadOnly, ScopeDriveFile},
}

// expandScopes returns the granted scopes plus every narrower scope they
// imply.
func expandScopes(granted []string) []string {
	out := granted
	for _, s := range granted {
		out = unionScopes(out, scopeImplies[s])
	}
	return out
}
