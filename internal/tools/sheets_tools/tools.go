package sheets_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetsmcp/internal/google"
	"github.com/teemow/sheetsmcp/internal/server"
	"github.com/teemow/sheetsmcp/internal/sheets"
	"github.com/teemow/sheetsmcp/internal/tools/batch"
	"github.com/teemow/sheetsmcp/internal/tools/common"
)

// RegisterSheetsTools registers all Sheets-related tools with the MCP server.
// In read-only mode only the data-fetching tools are registered.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterDataTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register data tools: %w", err)
	}

	if err := RegisterManagementTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register management tools: %w", err)
	}

	if err := RegisterNamedRangeTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register named range tools: %w", err)
	}

	if err := RegisterChartTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register chart tools: %w", err)
	}

	if readOnly {
		return nil
	}

	if err := RegisterFormatTools(s, sc); err != nil {
		return fmt.Errorf("failed to register format tools: %w", err)
	}

	if err := RegisterFormulaTools(s, sc); err != nil {
		return fmt.Errorf("failed to register formula tools: %w", err)
	}

	// Batch update tool: multiple operation specs in one dispatch
	batchUpdateTool := mcp.NewTool("sheets_batch_update",
		mcp.WithDescription("Apply multiple operations (format, conditional_format, merge, chart, formula, named_range) to a spreadsheet in one batch. Structural operations are submitted atomically; each operation reports its own outcome."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("operations",
			mcp.Required(),
			mcp.Description(`JSON array of operations. Each entry has a "type" field (format, conditional_format, merge, chart, formula, named_range) plus the fields of the matching single-operation tool, e.g. [{"type":"format","range":"A1:B2","bold":true},{"type":"merge","range":"A1:B1"}]`),
		),
	)

	s.AddTool(batchUpdateTool, common.InstrumentedToolHandlerWithService("sheets_batch_update", "sheets", "batch_update", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleBatchUpdate(ctx, request, sc)
	}))

	return nil
}

func handleBatchUpdate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheetId"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	entries, err := decodeOperationEntries(args["operations"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultError("operations must contain at least one entry"), nil
	}

	specs := make([]*sheets.OperationSpec, len(entries))
	for i, entry := range entries {
		spec, err := parseOperationEntry(entry)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("operations[%d]: %v", i, err)), nil
		}
		specs[i] = spec
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}

	return dispatchSpecs(ctx, sc, account, spreadsheetID, specs)
}

// decodeOperationEntries accepts either a JSON-encoded string or a decoded
// array of operation objects, since MCP clients serialize arrays both ways.
func decodeOperationEntries(raw interface{}) ([]map[string]interface{}, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errors.New("operations is required")
	case string:
		var entries []map[string]interface{}
		if err := json.Unmarshal([]byte(v), &entries); err != nil {
			return nil, fmt.Errorf("operations must be a JSON array of objects: %v", err)
		}
		return entries, nil
	case []interface{}:
		entries := make([]map[string]interface{}, len(v))
		for i, item := range v {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("operations[%d] must be an object", i)
			}
			entries[i] = entry
		}
		return entries, nil
	default:
		return nil, errors.New("operations must be a string or array of objects")
	}
}

// requireScopes verifies the stored credential covers the scopes the
// operation needs before any remote call is attempted.
func requireScopes(account string, scopes ...string) error {
	store := google.NewCredentialStoreForAccount(account, google.OAuthConfig(), nil)
	return store.RequireScopes(scopes...)
}

// scopeErrorResult turns a credential failure into an actionable tool error.
func scopeErrorResult(err error) *mcp.CallToolResult {
	var authErr *google.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Kind {
		case google.AuthNotFound:
			return mcp.NewToolResultError(fmt.Sprintf(
				"No Google credential stored for account %q. Use the google_get_auth_url tool or run 'sheetsmcp auth url' to authorize.", authErr.Account))
		case google.AuthScopeUpgradeRequired:
			return mcp.NewToolResultError(fmt.Sprintf(
				"The stored credential for account %q is missing scopes %v. Re-run the consent flow (google_get_auth_url or 'sheetsmcp auth url') to grant them.", authErr.Account, authErr.MissingScopes))
		case google.AuthRefreshDenied:
			return mcp.NewToolResultError(fmt.Sprintf(
				"The refresh token for account %q was rejected. Re-run the consent flow (google_get_auth_url or 'sheetsmcp auth url').", authErr.Account))
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("credential check failed: %v", err))
}

// clientFor returns the Sheets client for the account, or an error result
// telling the caller how to authenticate.
func clientFor(sc *server.ServerContext, account string) (*sheets.Client, *mcp.CallToolResult) {
	client := sc.SheetsClientForAccount(account)
	if client == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf(
			"No Sheets client available for account %q. Use the google_get_auth_url tool or run 'sheetsmcp auth url' to authorize.", account))
	}
	return client, nil
}

// dispatchSpecs runs the specs through the account's dispatcher and reports
// per-operation outcomes. A single failed operation of a single-spec call is
// surfaced as a tool error so clients do not mistake it for success.
func dispatchSpecs(ctx context.Context, sc *server.ServerContext, account, spreadsheetID string, specs []*sheets.OperationSpec) (*mcp.CallToolResult, error) {
	dispatcher := sc.DispatcherForAccount(account)
	if dispatcher == nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"No Sheets client available for account %q. Use the google_get_auth_url tool or run 'sheetsmcp auth url' to authorize.", account)), nil
	}

	outcomes := dispatcher.Dispatch(ctx, spreadsheetID, specs)

	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordDispatchBatchSize(ctx, len(outcomes))
		for _, o := range outcomes {
			status := "success"
			if !o.Applied {
				status = "error"
			}
			metrics.RecordDispatchOperation(ctx, o.Kind, status)
		}
	}

	results := batch.FromDispatchResults(outcomes)
	if len(outcomes) == 1 && !outcomes[0].Applied {
		return mcp.NewToolResultError(outcomes[0].Error), nil
	}
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// jsonResult marshals a success payload for the client.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
