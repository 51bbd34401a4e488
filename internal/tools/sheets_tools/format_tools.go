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

// RegisterFormatTools registers the cell formatting tools. All of them
// mutate the spreadsheet, so none are available in read-only mode.
func RegisterFormatTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	formatCellsTool := mcp.NewTool("sheets_format_cells",
		mcp.WithDescription("Format cells in a range: text style, colors, alignment, wrapping, and number format"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range to format, e.g. 'Sheet1!A1:D1'"),
		),
		mcp.WithBoolean("bold", mcp.Description("Bold text")),
		mcp.WithBoolean("italic", mcp.Description("Italic text")),
		mcp.WithBoolean("underline", mcp.Description("Underlined text")),
		mcp.WithBoolean("strikethrough", mcp.Description("Struck-through text")),
		mcp.WithString("fontFamily", mcp.Description("Font family name, e.g. 'Roboto'")),
		mcp.WithNumber("fontSize", mcp.Description("Font size in points")),
		mcp.WithString("textColor",
			mcp.Description("Text color as hex ('#ff0000'), named color ('red'), or RGB components"),
		),
		mcp.WithString("backgroundColor",
			mcp.Description("Background color as hex ('#f3f3f3'), named color, or RGB components"),
		),
		mcp.WithString("horizontalAlignment",
			mcp.Description("Horizontal alignment: LEFT, CENTER, or RIGHT"),
		),
		mcp.WithString("verticalAlignment",
			mcp.Description("Vertical alignment: TOP, MIDDLE, or BOTTOM"),
		),
		mcp.WithString("wrapStrategy",
			mcp.Description("Text wrapping: OVERFLOW_CELL, CLIP, or WRAP"),
		),
		mcp.WithString("numberFormat",
			mcp.Description("Number format pattern, e.g. '#,##0.00', '0.0%', 'yyyy-mm-dd', or '$#,##0'"),
		),
	)

	s.AddTool(formatCellsTool, common.InstrumentedToolHandlerWithService("sheets_format_cells", "sheets", "format", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleFormatCells(ctx, request, sc)
	}))

	setNumberFormatTool := mcp.NewTool("sheets_set_number_format",
		mcp.WithDescription("Set the number format pattern for a range, e.g. currency, percent, or date formats"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range to format, e.g. 'Sheet1!B2:B100'"),
		),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Number format pattern, e.g. '#,##0.00', '0.0%', 'yyyy-mm-dd', or '$#,##0'"),
		),
	)

	s.AddTool(setNumberFormatTool, common.InstrumentedToolHandlerWithService("sheets_set_number_format", "sheets", "format", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSetNumberFormat(ctx, request, sc)
	}))

	conditionalFormatTool := mcp.NewTool("sheets_add_conditional_format",
		mcp.WithDescription("Add a conditional format rule that styles cells matching a condition"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range the rule applies to, e.g. 'Sheet1!B2:B100'"),
		),
		mcp.WithString("conditionType",
			mcp.Required(),
			mcp.Description("Condition type, e.g. NUMBER_GREATER, NUMBER_BETWEEN, TEXT_CONTAINS, CUSTOM_FORMULA, NOT_BLANK"),
		),
		mcp.WithString("conditionValues",
			mcp.Description(`Condition values as a JSON array, e.g. ["100"] for NUMBER_GREATER or ["10","20"] for NUMBER_BETWEEN. Omit for value-free conditions like NOT_BLANK.`),
		),
		mcp.WithString("backgroundColor",
			mcp.Description("Background color applied to matching cells (hex, named, or RGB)"),
		),
		mcp.WithString("textColor",
			mcp.Description("Text color applied to matching cells (hex, named, or RGB)"),
		),
		mcp.WithBoolean("bold", mcp.Description("Bold text for matching cells")),
		mcp.WithBoolean("italic", mcp.Description("Italic text for matching cells")),
	)

	s.AddTool(conditionalFormatTool, common.InstrumentedToolHandlerWithService("sheets_add_conditional_format", "sheets", "conditional_format", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddConditionalFormat(ctx, request, sc)
	}))

	mergeCellsTool := mcp.NewTool("sheets_merge_cells",
		mcp.WithDescription("Merge cells in a range into one cell, one cell per row, or one cell per column"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range to merge, e.g. 'Sheet1!A1:C1'"),
		),
		mcp.WithString("mergeType",
			mcp.Description("MERGE_ALL (default), MERGE_COLUMNS, or MERGE_ROWS"),
		),
	)

	s.AddTool(mergeCellsTool, common.InstrumentedToolHandlerWithService("sheets_merge_cells", "sheets", "merge", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleMergeCells(ctx, request, sc)
	}))

	return nil
}

func handleFormatCells(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	spec, err := parseFormatArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	return dispatchSpecs(ctx, sc, account, spreadsheetID, []*sheets.OperationSpec{{Format: spec}})
}

// handleSetNumberFormat is a focused front for the format operation that
// only carries a number format pattern.
func handleSetNumberFormat(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	addr, err := parseRangeArg(args, "range")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern := getString(args, "pattern")

	spec := &sheets.FormatSpec{
		Range:               addr,
		NumberFormatPattern: pattern,
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	return dispatchSpecs(ctx, sc, account, spreadsheetID, []*sheets.OperationSpec{{Format: spec}})
}

func handleAddConditionalFormat(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	spec, err := parseConditionalFormatArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	return dispatchSpecs(ctx, sc, account, spreadsheetID, []*sheets.OperationSpec{{ConditionalFormat: spec}})
}

func handleMergeCells(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	spec, err := parseMergeArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	return dispatchSpecs(ctx, sc, account, spreadsheetID, []*sheets.OperationSpec{{Merge: spec}})
}
