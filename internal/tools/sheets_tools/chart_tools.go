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

// RegisterChartTools registers the embedded chart tools. Reading a chart back
// is always available; creating, updating, and moving charts require write
// mode.
func RegisterChartTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getChartDataTool := mcp.NewTool("sheets_get_chart_data",
		mcp.WithDescription("Get an embedded chart's type, title, data ranges, and position by chart ID"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithNumber("chartId",
			mcp.Required(),
			mcp.Description("ID of the chart, as reported when it was created"),
		),
	)

	s.AddTool(getChartDataTool, common.InstrumentedToolHandlerWithService("sheets_get_chart_data", "sheets", "chart", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetChartData(ctx, request, sc)
	}))

	if readOnly {
		return nil
	}

	createChartTool := mcp.NewTool("sheets_create_chart",
		mcp.WithDescription("Create an embedded chart from a data range. The first row of the range is used as series labels."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("chartType",
			mcp.Required(),
			mcp.Description("Chart type: LINE, BAR, COLUMN, PIE, SCATTER, or AREA"),
		),
		mcp.WithString("dataRange",
			mcp.Required(),
			mcp.Description("A1 range holding the chart data, e.g. 'Sheet1!A1:B10'"),
		),
		mcp.WithString("title", mcp.Description("Chart title")),
		mcp.WithString("subtitle", mcp.Description("Chart subtitle")),
		mcp.WithString("legendPosition",
			mcp.Description("Legend position: BOTTOM_LEGEND, LEFT_LEGEND, RIGHT_LEGEND, TOP_LEGEND, or NO_LEGEND"),
		),
		mcp.WithNumber("pieHole",
			mcp.Description("For PIE charts: hole ratio between 0 and 0.9 (0.4 makes a donut)"),
		),
		mcp.WithString("anchorCell",
			mcp.Description("Cell the chart's top-left corner is anchored to, e.g. 'Sheet1!E2' (default: E2 on the data sheet)"),
		),
		mcp.WithNumber("offsetX", mcp.Description("Horizontal offset from the anchor cell in pixels")),
		mcp.WithNumber("offsetY", mcp.Description("Vertical offset from the anchor cell in pixels")),
		mcp.WithNumber("width", mcp.Description("Chart width in pixels (default: 600)")),
		mcp.WithNumber("height", mcp.Description("Chart height in pixels (default: 371)")),
	)

	s.AddTool(createChartTool, common.InstrumentedToolHandlerWithService("sheets_create_chart", "sheets", "chart", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleChartSpec(ctx, request, sc, false, false)
	}))

	updateChartTool := mcp.NewTool("sheets_update_chart",
		mcp.WithDescription("Replace an existing chart's specification (type, data range, titles, legend) keeping its position"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithNumber("chartId",
			mcp.Required(),
			mcp.Description("ID of the chart to update, as reported when it was created"),
		),
		mcp.WithString("chartType",
			mcp.Required(),
			mcp.Description("Chart type: LINE, BAR, COLUMN, PIE, SCATTER, or AREA"),
		),
		mcp.WithString("dataRange",
			mcp.Required(),
			mcp.Description("A1 range holding the chart data, e.g. 'Sheet1!A1:B10'"),
		),
		mcp.WithString("title", mcp.Description("Chart title")),
		mcp.WithString("subtitle", mcp.Description("Chart subtitle")),
		mcp.WithString("legendPosition",
			mcp.Description("Legend position: BOTTOM_LEGEND, LEFT_LEGEND, RIGHT_LEGEND, TOP_LEGEND, or NO_LEGEND"),
		),
		mcp.WithNumber("pieHole",
			mcp.Description("For PIE charts: hole ratio between 0 and 0.9"),
		),
	)

	s.AddTool(updateChartTool, common.InstrumentedToolHandlerWithService("sheets_update_chart", "sheets", "chart", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleChartSpec(ctx, request, sc, true, false)
	}))

	positionChartTool := mcp.NewTool("sheets_position_chart",
		mcp.WithDescription("Move or resize an existing chart without changing its data or appearance"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithNumber("chartId",
			mcp.Required(),
			mcp.Description("ID of the chart to move"),
		),
		mcp.WithString("anchorCell",
			mcp.Required(),
			mcp.Description("Cell the chart's top-left corner is anchored to, e.g. 'Sheet1!E2'"),
		),
		mcp.WithNumber("offsetX", mcp.Description("Horizontal offset from the anchor cell in pixels")),
		mcp.WithNumber("offsetY", mcp.Description("Vertical offset from the anchor cell in pixels")),
		mcp.WithNumber("width", mcp.Description("Chart width in pixels")),
		mcp.WithNumber("height", mcp.Description("Chart height in pixels")),
	)

	s.AddTool(positionChartTool, common.InstrumentedToolHandlerWithService("sheets_position_chart", "sheets", "chart", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleChartSpec(ctx, request, sc, true, true)
	}))

	return nil
}

func handleGetChartData(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	chartID := getInt64(args, "chartId")
	if chartID == 0 {
		return mcp.NewToolResultError("chartId is required"), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheetsReadOnly); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	info, err := client.GetChartInfo(ctx, spreadsheetID, chartID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get chart data: %v", err)), nil
	}
	return jsonResult(info)
}

func handleChartSpec(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, requireChartID, repositionOnly bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	if requireChartID && getInt64(args, "chartId") == 0 {
		return mcp.NewToolResultError("chartId is required"), nil
	}
	if repositionOnly {
		args["repositionOnly"] = true
	}

	spec, err := parseChartArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	return dispatchSpecs(ctx, sc, account, spreadsheetID, []*sheets.OperationSpec{{Chart: spec}})
}
