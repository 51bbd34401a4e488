package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetsmcp/internal/google"
	"github.com/teemow/sheetsmcp/internal/server"
	"github.com/teemow/sheetsmcp/internal/tools/common"
)

// listResourceLimit caps the number of spreadsheets returned by the
// spreadsheet listing resource.
const listResourceLimit = 25

// RegisterSpreadsheetResources registers session-specific spreadsheet resources.
// These give MCP clients read-only context about the current account without
// requiring a tool call.
func RegisterSpreadsheetResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listResource := mcp.NewResource(
		"sheets://spreadsheets",
		"Recent Spreadsheets",
		mcp.WithResourceDescription("Google Sheets documents accessible to the current account, most recently modified first"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(listResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSpreadsheetList(ctx, request, sc)
	})

	authResource := mcp.NewResource(
		"auth://status",
		"Authorization Status",
		mcp.WithResourceDescription("Stored Google OAuth credential status for the current account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(authResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAuthStatus(ctx, request, sc)
	})

	return nil
}

// accountFromContext resolves the account for a resource read. Resources have
// no arguments, so only the transport-provided context account applies.
func accountFromContext(ctx context.Context) string {
	return common.GetAccountFromArgs(ctx, nil)
}

func handleSpreadsheetList(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := accountFromContext(ctx)

	client := sc.SheetsClientForAccount(account)
	if client == nil {
		return nil, fmt.Errorf("no Sheets client available for account %s, authorize it first", account)
	}

	refs, err := client.ListSpreadsheets(ctx, listResourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list spreadsheets: %w", err)
	}

	listData := map[string]interface{}{
		"account":      account,
		"count":        len(refs),
		"spreadsheets": refs,
	}

	return jsonResourceContents(request.Params.URI, listData)
}

func handleAuthStatus(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := accountFromContext(ctx)

	store := google.NewCredentialStoreForAccount(account, google.OAuthConfig(), sc.Logger())

	statusData := map[string]interface{}{
		"account":    account,
		"authorized": false,
	}

	if cred, err := store.Load(); err == nil {
		statusData["authorized"] = true
		statusData["scopes"] = cred.Scopes
		statusData["hasRefreshToken"] = cred.RefreshToken != ""
		if !cred.Expiry.IsZero() {
			statusData["expiry"] = cred.Expiry.Format(time.RFC3339)
		}
		if len(cred.RequestedScopes) > 0 {
			statusData["pendingScopes"] = cred.RequestedScopes
		}
	}

	return jsonResourceContents(request.Params.URI, statusData)
}

func jsonResourceContents(uri string, data interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
