package sheets_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetsmcp/internal/google"
	"github.com/teemow/sheetsmcp/internal/server"
	"github.com/teemow/sheetsmcp/internal/sheets"
	"github.com/teemow/sheetsmcp/internal/tools/batch"
	"github.com/teemow/sheetsmcp/internal/tools/common"
)

// RegisterDataTools registers the cell-value tools. Reads are always
// available; writes require write mode.
func RegisterDataTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	readRangeTool := mcp.NewTool("sheets_read_range",
		mcp.WithDescription("Read cell values from a range in A1 notation (e.g. 'Sheet1!A1:D10', 'B3', 'A:C')"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range to read. Without a sheet prefix the first sheet is used."),
		),
		mcp.WithString("renderOption",
			mcp.Description("How values are rendered: FORMATTED_VALUE (default), UNFORMATTED_VALUE, or FORMULA"),
		),
	)

	s.AddTool(readRangeTool, common.InstrumentedToolHandlerWithService("sheets_read_range", "sheets", "read", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleReadRange(ctx, request, sc)
	}))

	if readOnly {
		return nil
	}

	writeRangeTool := mcp.NewTool("sheets_write_range",
		mcp.WithDescription("Write a 2D array of values to a range. Existing values in the range are overwritten."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range to write, e.g. 'Sheet1!A1:B2'"),
		),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description(`2D JSON array of cell values, e.g. [["Name","Score"],["Alice","95"]]`),
		),
		mcp.WithString("inputOption",
			mcp.Description("How input is interpreted: USER_ENTERED (default, parses formulas and numbers) or RAW"),
		),
	)

	s.AddTool(writeRangeTool, common.InstrumentedToolHandlerWithService("sheets_write_range", "sheets", "write", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWriteRange(ctx, request, sc, false)
	}))

	appendRowsTool := mcp.NewTool("sheets_append_rows",
		mcp.WithDescription("Append rows after the last row of data overlapping the given range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range locating the table to append to, e.g. 'Sheet1!A1'"),
		),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description(`2D JSON array of rows to append, e.g. [["Bob","87"]]`),
		),
		mcp.WithString("inputOption",
			mcp.Description("How input is interpreted: USER_ENTERED (default) or RAW"),
		),
	)

	s.AddTool(appendRowsTool, common.InstrumentedToolHandlerWithService("sheets_append_rows", "sheets", "append", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWriteRange(ctx, request, sc, true)
	}))

	clearRangeTool := mcp.NewTool("sheets_clear_range",
		mcp.WithDescription("Clear cell values (not formatting) from one or more ranges"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description(`A1 range to clear, e.g. 'Sheet1!A1:D10', or a JSON array of ranges`),
		),
	)

	s.AddTool(clearRangeTool, common.InstrumentedToolHandlerWithService("sheets_clear_range", "sheets", "clear", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleClearRange(ctx, request, sc)
	}))

	updateCellTool := mcp.NewTool("sheets_update_cell",
		mcp.WithDescription("Update a single cell. The reference must address exactly one cell, e.g. 'Sheet1!B3'."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("cell",
			mcp.Required(),
			mcp.Description("Single-cell A1 reference, e.g. 'Sheet1!B3' or 'B3'"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("The value to write. Formulas (starting with '=') are parsed with USER_ENTERED."),
		),
	)

	s.AddTool(updateCellTool, common.InstrumentedToolHandlerWithService("sheets_update_cell", "sheets", "write", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateCell(ctx, request, sc)
	}))

	return nil
}

func handleReadRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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
	renderOption := strings.ToUpper(getString(args, "renderOption"))

	if err := requireScopes(account, google.ScopeSpreadsheetsReadOnly); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	grid, err := client.ReadRange(ctx, spreadsheetID, addr.String(), renderOption)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read range: %v", err)), nil
	}
	return jsonResult(grid)
}

func handleWriteRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, appendRows bool) (*mcp.CallToolResult, error) {
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
	values, err := parseValuesArg(args["values"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(values) == 0 {
		return mcp.NewToolResultError("values must contain at least one row"), nil
	}
	inputOption := strings.ToUpper(getString(args, "inputOption"))

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	var result *sheets.UpdateResult
	if appendRows {
		result, err = client.AppendRows(ctx, spreadsheetID, addr.String(), values, inputOption)
	} else {
		result, err = client.WriteRange(ctx, spreadsheetID, addr.String(), values, inputOption)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to write values: %v", err)), nil
	}
	return jsonResult(result)
}

func handleClearRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	ranges, err := batch.ParseStringOrArray(args["range"], "range")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	addrs := make([]string, 0, len(ranges))
	for _, r := range ranges {
		addr, err := sheets.ParseRange(r)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid range %q: %v", r, err)), nil
		}
		addrs = append(addrs, addr.String())
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	if len(addrs) == 1 {
		cleared, err := client.ClearRange(ctx, spreadsheetID, addrs[0])
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to clear range: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cleared range %s", cleared)), nil
	}

	results := batch.ProcessBatch(addrs, func(a1 string) (string, error) {
		cleared, err := client.ClearRange(ctx, spreadsheetID, a1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("cleared %s", cleared), nil
	})
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// handleUpdateCell is the single-cell write path. It shares the range and
// write machinery with sheets_write_range; the only extra rule is that the
// reference must span exactly one cell.
func handleUpdateCell(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	addr, err := parseRangeArg(args, "cell")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !addr.IsSingleCell() {
		return mcp.NewToolResultError(fmt.Sprintf("%q addresses more than one cell; use sheets_write_range for ranges", getString(args, "cell"))), nil
	}
	value, present := args["value"]
	if !present {
		return mcp.NewToolResultError("value is required"), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	result, err := client.WriteRange(ctx, spreadsheetID, addr.String(), [][]interface{}{{value}}, sheets.InputUserEntered)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update cell: %v", err)), nil
	}
	return jsonResult(result)
}
