package google

import (
	"fmt"
	"strings"
)

// AuthErrorKind classifies credential failures.
type AuthErrorKind string

const (
	// AuthNotFound means no stored credential exists for the account.
	AuthNotFound AuthErrorKind = "not_found"

	// AuthRefreshDenied means the refresh token was rejected by the token
	// endpoint (revoked or expired grant). The stored credential is cleared
	// so the next use forces re-consent.
	AuthRefreshDenied AuthErrorKind = "refresh_denied"

	// AuthScopeUpgradeRequired means the credential lacks scopes the
	// operation needs. Re-consent will request the union of old and new.
	AuthScopeUpgradeRequired AuthErrorKind = "scope_upgrade_required"
)

// AuthError is returned for credential lifecycle failures. These are never
// auto-retried; the message tells the operator how to recover.
type AuthError struct {
	Kind          AuthErrorKind
	Account       string
	MissingScopes []string
	Err           error
}

func (e *AuthError) Error() string {
	account := e.Account
	if account == "" {
		account = "default"
	}
	switch e.Kind {
	case AuthNotFound:
		return fmt.Sprintf("no stored credential for account %q: run 'sheetsmcp auth' to authorize", account)
	case AuthRefreshDenied:
		msg := fmt.Sprintf("refresh token for account %q was rejected: run 'sheetsmcp auth' to re-authorize", account)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	case AuthScopeUpgradeRequired:
		return fmt.Sprintf("credential for account %q is missing scopes [%s]: run 'sheetsmcp auth' to grant them",
			account, strings.Join(e.MissingScopes, ", "))
	default:
		if e.Err != nil {
			return fmt.Sprintf("auth error for account %q: %v", account, e.Err)
		}
		return fmt.Sprintf("auth error for account %q", account)
	}
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is comparisons against an AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
