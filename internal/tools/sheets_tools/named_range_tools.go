package sheets_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetsmcp/internal/google"
	"github.com/teemow/sheetsmcp/internal/server"
	"github.com/teemow/sheetsmcp/internal/sheets"
	"github.com/teemow/sheetsmcp/internal/tools/common"
)

// RegisterNamedRangeTools registers the named range tools. Listing is
// always available; creation and deletion require write mode.
func RegisterNamedRangeTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listNamedRangesTool := mcp.NewTool("sheets_list_named_ranges",
		mcp.WithDescription("List the named ranges defined in a spreadsheet with their IDs and referenced ranges"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
	)

	s.AddTool(listNamedRangesTool, common.InstrumentedToolHandlerWithService("sheets_list_named_ranges", "sheets", "named_range", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListNamedRanges(ctx, request, sc)
	}))

	if readOnly {
		return nil
	}

	createNamedRangeTool := mcp.NewTool("sheets_create_named_range",
		mcp.WithDescription("Create a named range so formulas can refer to a range by name, e.g. 'Sales' instead of 'Sheet1!B2:B100'"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name for the range. Must start with a letter or underscore and contain only letters, digits, and underscores; cell-reference-like names (e.g. 'A1', 'R1C1') are rejected."),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range the name refers to, e.g. 'Sheet1!B2:B100'"),
		),
	)

	s.AddTool(createNamedRangeTool, common.InstrumentedToolHandlerWithService("sheets_create_named_range", "sheets", "named_range", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleNamedRangeChange(ctx, request, sc, sheets.NamedRangeAdd)
	}))

	deleteNamedRangeTool := mcp.NewTool("sheets_delete_named_range",
		mcp.WithDescription("Delete a named range by its ID. The cell contents are not affected."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("namedRangeId",
			mcp.Required(),
			mcp.Description("ID of the named range, as reported by sheets_list_named_ranges"),
		),
	)

	s.AddTool(deleteNamedRangeTool, common.InstrumentedToolHandlerWithService("sheets_delete_named_range", "sheets", "named_range", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleNamedRangeChange(ctx, request, sc, sheets.NamedRangeDelete)
	}))

	return nil
}

func handleNamedRangeChange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, action string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	args["action"] = action
	spec, err := parseNamedRangeArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	return dispatchSpecs(ctx, sc, account, spreadsheetID, []*sheets.OperationSpec{{NamedRange: spec}})
}

func handleListNamedRanges(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheetsReadOnly); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	ranges, err := client.ListNamedRanges(ctx, spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list named ranges: %v", err)), nil
	}
	if len(ranges) == 0 {
		return mcp.NewToolResultText("No named ranges defined"), nil
	}
	return jsonResult(ranges)
}
