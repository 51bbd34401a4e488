package common

import (
	"context"
)

type contextKey string

// accountContextKey carries the account resolved by the transport layer,
// for example from the session manager on HTTP transport.
const accountContextKey contextKey = "sheetsmcp.account"

// WithAccount returns a context carrying the given account name.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// GetAccountFromArgs extracts the account name from request arguments and context.
//
// Priority order:
//  1. Account set on the context by the transport layer
//  2. Explicit "account" argument in request
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if account, ok := ctx.Value(accountContextKey).(string); ok && account != "" {
		return account
	}

	// Fall back to explicit account argument or "default"
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}
