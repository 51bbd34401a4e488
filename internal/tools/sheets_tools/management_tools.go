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

// RegisterManagementTools registers the spreadsheet and worksheet management
// tools. Listing and inspection are always available; creation requires
// write mode.
func RegisterManagementTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getInfoTool := mcp.NewTool("sheets_get_info",
		mcp.WithDescription("Get spreadsheet metadata: title, URL, and the sheets it contains with their IDs and dimensions"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
	)

	s.AddTool(getInfoTool, common.InstrumentedToolHandlerWithService("sheets_get_info", "sheets", "get_info", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetInfo(ctx, request, sc)
	}))

	listSpreadsheetsTool := mcp.NewTool("sheets_list_spreadsheets",
		mcp.WithDescription("List spreadsheets accessible to the account, most recently modified first"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of spreadsheets to return (default: 25, max: 100)"),
		),
	)

	s.AddTool(listSpreadsheetsTool, common.InstrumentedToolHandlerWithService("sheets_list_spreadsheets", "sheets", "list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListSpreadsheets(ctx, request, sc)
	}))

	if readOnly {
		return nil
	}

	createSpreadsheetTool := mcp.NewTool("sheets_create_spreadsheet",
		mcp.WithDescription("Create a new spreadsheet with a single default worksheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the new spreadsheet"),
		),
	)

	s.AddTool(createSpreadsheetTool, common.InstrumentedToolHandlerWithService("sheets_create_spreadsheet", "sheets", "create", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateSpreadsheet(ctx, request, sc)
	}))

	createWorksheetTool := mcp.NewTool("sheets_create_worksheet",
		mcp.WithDescription("Add a new worksheet (tab) to an existing spreadsheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the new worksheet"),
		),
		mcp.WithNumber("rows",
			mcp.Description("Row count for the new worksheet (default: 1000)"),
		),
		mcp.WithNumber("columns",
			mcp.Description("Column count for the new worksheet (default: 26)"),
		),
	)

	s.AddTool(createWorksheetTool, common.InstrumentedToolHandlerWithService("sheets_create_worksheet", "sheets", "create_worksheet", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateWorksheet(ctx, request, sc)
	}))

	managePermissionsTool := mcp.NewTool("sheets_manage_permissions",
		mcp.WithDescription("Share a spreadsheet: grant reader, commenter, writer, or owner access to a user, group, domain, or anyone with the link"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the document URL"),
		),
		mcp.WithString("role",
			mcp.Description("Access level: reader, commenter, writer, or owner (default: reader)"),
		),
		mcp.WithString("type",
			mcp.Description("Grantee type: user, group, domain, or anyone (default: user)"),
		),
		mcp.WithString("emailAddress",
			mcp.Description("Grantee email address, required for user and group grants"),
		),
		mcp.WithString("domain",
			mcp.Description("Grantee domain, e.g. 'example.com', required for domain grants"),
		),
		mcp.WithBoolean("allowFileDiscovery",
			mcp.Description("Let domain or anyone grants find the file in search results"),
		),
		mcp.WithBoolean("transferOwnership",
			mcp.Description("Transfer ownership to the grantee; required with the owner role"),
		),
		mcp.WithBoolean("sendNotificationEmail",
			mcp.Description("Send the grantee a sharing notification email"),
		),
		mcp.WithString("emailMessage",
			mcp.Description("Optional note included in the notification email"),
		),
	)

	s.AddTool(managePermissionsTool, common.InstrumentedToolHandlerWithService("sheets_manage_permissions", "drive", "permissions", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleManagePermissions(ctx, request, sc)
	}))

	return nil
}

func handleGetInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	info, err := client.GetSpreadsheetInfo(ctx, spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet info: %v", err)), nil
	}
	return jsonResult(info)
}

func handleListSpreadsheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	maxResults := getInt64(args, "maxResults")
	if maxResults <= 0 {
		maxResults = 25
	}
	if maxResults > 100 {
		maxResults = 100
	}

	// Listing goes through the Drive API, so the Drive read scope is the
	// one that matters here.
	if err := requireScopes(account, google.ScopeDriveReadOnly); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	refs, err := client.ListSpreadsheets(ctx, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list spreadsheets: %v", err)), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("No spreadsheets found"), nil
	}
	return jsonResult(refs)
}

func handleCreateSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	title, _ := args["title"].(string)
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	info, err := client.CreateSpreadsheet(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create spreadsheet: %v", err)), nil
	}
	return jsonResult(info)
}

func handleCreateWorksheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	title, _ := args["title"].(string)
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	rows := getInt64(args, "rows")
	if rows <= 0 {
		rows = 1000
	}
	cols := getInt64(args, "columns")
	if cols <= 0 {
		cols = 26
	}

	if err := requireScopes(account, google.ScopeSpreadsheets); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	sheet, err := client.AddWorksheet(ctx, spreadsheetID, title, rows, cols)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create worksheet: %v", err)), nil
	}
	return jsonResult(sheet)
}

func handleManagePermissions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, _ := args["spreadsheetId"].(string)
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	spec := &sheets.PermissionSpec{
		Role:               getString(args, "role"),
		Type:               getString(args, "type"),
		EmailAddress:       getString(args, "emailAddress"),
		Domain:             getString(args, "domain"),
		AllowFileDiscovery: getBool(args, "allowFileDiscovery"),
		TransferOwnership:  getBool(args, "transferOwnership"),
		SendNotification:   getBool(args, "sendNotificationEmail"),
		EmailMessage:       getString(args, "emailMessage"),
	}
	if spec.Role == "" {
		spec.Role = sheets.RoleReader
	}
	if spec.Type == "" {
		spec.Type = sheets.GranteeUser
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Sharing goes through the Drive API and needs the full Drive scope.
	if err := requireScopes(account, google.ScopeDrive); err != nil {
		return scopeErrorResult(err), nil
	}
	client, errResult := clientFor(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	info, err := client.ManagePermissions(ctx, spreadsheetID, spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update permissions: %v", err)), nil
	}
	return jsonResult(info)
}
