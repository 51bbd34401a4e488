package sheets_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetsmcp/internal/google"
	"github.com/teemow/sheetsmcp/internal/server"
	"github.com/teemow/sheetsmcp/internal/sheets"
	"github.com/teemow/sheetsmcp/internal/tools/common"
)

// RegisterFormulaTools registers the formula tools. Not available in
// read-only mode.
func RegisterFormulaTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	applyFormulaTool := mcp.NewTool("sheets_apply_formula",
		mcp.WithDescription("Write a formula into every cell of a range. A leading '=' is added if missing."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range the formula is written to, e.g. 'Sheet1!D2:D10'"),
		),
		mcp.WithString("formula",
			mcp.Required(),
			mcp.Description("The formula, e.g. '=SUM(A2:C2)'. Relative references adjust per cell."),
		),
	)

	s.AddTool(applyFormulaTool, common.InstrumentedToolHandlerWithService("sheets_apply_formula", "sheets", "formula", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleApplyFormula(ctx, request, sc, false)
	}))

	applyArrayFormulaTool := mcp.NewTool("sheets_apply_array_formula",
		mcp.WithDescription("Write an ARRAYFORMULA into the top-left cell of a range so one formula fills the whole range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range the array formula should fill, e.g. 'Sheet1!D2:D100'"),
		),
		mcp.WithString("formula",
			mcp.Required(),
			mcp.Description("The formula, e.g. '=ARRAYFORMULA(A2:A100*B2:B100)'. An ARRAYFORMULA wrapper is added if missing."),
		),
	)

	s.AddTool(applyArrayFormulaTool, common.InstrumentedToolHandlerWithService("sheets_apply_array_formula", "sheets", "formula", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleApplyFormula(ctx, request, sc, true)
	}))

	return nil
}

func handleApplyFormula(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, array bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	spec, err := parseFormulaArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec.Array = array
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	return dispatchSpecs(ctx, sc, account, spreadsheetID, []*sheets.OperationSpec{{Formula: spec}})
}
