package google

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOAuthConfig(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_CLIENT_ID", "test-client-id")
	t.Setenv("GOOGLE_OAUTH_CLIENT_SECRET", "test-client-secret")

	conf := OAuthConfig()
	assert.Equal(t, "test-client-id", conf.ClientID)
	assert.Equal(t, "test-client-secret", conf.ClientSecret)
	assert.Equal(t, OOB, conf.RedirectURL)
	assert.Equal(t, DefaultOAuthScopes, conf.Scopes)
}

func TestOAuthConfigWithScopes(t *testing.T) {
	conf := OAuthConfigWithScopes(ReadOnlyOAuthScopes)
	assert.Equal(t, ReadOnlyOAuthScopes, conf.Scopes)
}

func TestStorePathForAccount(t *testing.T) {
	path := StorePathForAccount("work")
	assert.True(t, strings.HasSuffix(path, "sheetsmcp/work.json"), "got %q", path)

	// Empty account falls back to default
	path = StorePathForAccount("")
	assert.True(t, strings.HasSuffix(path, "sheetsmcp/default.json"), "got %q", path)
}

func TestHasTokenForAccount_Invalid(t *testing.T) {
	if HasTokenForAccount("no-such-account-for-tests") {
		t.Error("HasTokenForAccount() should return false for an unknown account")
	}
}

func TestDefaultOAuthScopes(t *testing.T) {
	assert.Contains(t, DefaultOAuthScopes, ScopeSpreadsheets)
	assert.Contains(t, DefaultOAuthScopes, ScopeDrive)
}
