package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newTokenEndpoint returns a fake OAuth token endpoint that counts hits and
// serves the given response status and body.
func newTokenEndpoint(t *testing.T, hits *atomic.Int64, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestStore(t *testing.T, tokenURL string) *CredentialStore {
	t.Helper()
	conf := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthURL: tokenURL + "/auth"},
		RedirectURL:  OOB,
		Scopes:       DefaultOAuthScopes,
	}
	path := filepath.Join(t.TempDir(), "default.json")
	return NewCredentialStore(path, conf, nil)
}

func TestLoad_NotFound(t *testing.T) {
	store := newTestStore(t, "http://unused.invalid/token")

	_, err := store.Load()
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthNotFound, authErr.Kind)
	assert.Contains(t, err.Error(), "sheetsmcp auth")
}

func TestLoad_CorruptFile(t *testing.T) {
	store := newTestStore(t, "http://unused.invalid/token")
	require.NoError(t, os.MkdirAll(filepath.Dir(store.path), 0700))
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0600))

	_, err := store.Load()
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthNotFound, authErr.Kind)
}

func TestPersist_AtomicAndRestrictive(t *testing.T) {
	store := newTestStore(t, "http://unused.invalid/token")
	cred := &Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       DefaultOAuthScopes,
	}

	require.NoError(t, store.Persist(cred))

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(store.path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Round-trips through JSON
	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	var loaded Credential
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.Equal(t, DefaultOAuthScopes, loaded.Scopes)
}

func TestEnsureFresh_ValidTokenNotRefreshed(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusOK, `{"access_token":"new","token_type":"Bearer","expires_in":3600}`)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "still-good",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}))

	tok, err := store.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "still-good", tok.AccessToken)
	assert.Equal(t, int64(0), hits.Load(), "valid token must not hit the endpoint")
}

func TestEnsureFresh_NearExpiryRefreshes(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusOK, `{"access_token":"rotated","token_type":"Bearer","expires_in":3600}`)
	store := newTestStore(t, srv.URL)

	// 10s left is inside the safety margin
	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "nearly-expired",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(10 * time.Second),
	}))

	tok, err := store.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", tok.AccessToken)
	assert.Equal(t, int64(1), hits.Load())

	// Rotation was persisted
	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	var cred Credential
	require.NoError(t, json.Unmarshal(data, &cred))
	assert.Equal(t, "rotated", cred.AccessToken)
	assert.Equal(t, "refresh", cred.RefreshToken, "refresh token survives a response that omits it")
}

func TestEnsureFresh_SingleFlight(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusOK, `{"access_token":"rotated","token_type":"Bearer","expires_in":3600}`)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "expired",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Minute),
	}))

	const goroutines = 16
	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	tokens := make([]*oauth2.Token, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = store.EnsureFresh(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "rotated", tokens[i].AccessToken)
	}
	assert.Equal(t, int64(1), hits.Load(), "concurrent callers must share one refresh")
}

func TestEnsureFresh_RefreshDeniedClearsCredential(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Token has been revoked."}`)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "expired",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Minute),
	}))

	_, err := store.EnsureFresh(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthRefreshDenied, authErr.Kind)

	// The credential file is gone so the next use forces re-consent
	_, statErr := os.Stat(store.path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = store.Load()
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthNotFound, authErr.Kind)
}

func TestEnsureFresh_NoRefreshToken(t *testing.T) {
	store := newTestStore(t, "http://unused.invalid/token")
	require.NoError(t, store.Persist(&Credential{
		AccessToken: "expired",
		Expiry:      time.Now().Add(-time.Minute),
	}))

	_, err := store.EnsureFresh(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthRefreshDenied, authErr.Kind)
}

func TestRequireScopes_Satisfied(t *testing.T) {
	store := newTestStore(t, "http://unused.invalid/token")
	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       []string{ScopeSpreadsheets, ScopeDrive},
	}))

	assert.NoError(t, store.RequireScopes(ScopeSpreadsheets))
	assert.NoError(t, store.RequireScopes(ScopeSpreadsheets, ScopeDrive))
}

func TestRequireScopes_UpgradeRequired(t *testing.T) {
	store := newTestStore(t, "http://unused.invalid/token")
	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       []string{ScopeSpreadsheetsReadOnly},
	}))

	err := store.RequireScopes(ScopeSpreadsheets, ScopeDrive)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthScopeUpgradeRequired, authErr.Kind)
	assert.ElementsMatch(t, []string{ScopeSpreadsheets, ScopeDrive}, authErr.MissingScopes)

	// The next consent URL requests the union of old and new scopes
	url := store.AuthURL("state")
	assert.Contains(t, url, "spreadsheets.readonly")
	assert.Contains(t, url, "drive")
}

func TestRequireScopes_UpgradeDropsRefreshToken(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusOK, `{"access_token":"renewed","token_type":"Bearer","expires_in":3600}`)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Minute),
		Scopes:       []string{ScopeSpreadsheetsReadOnly},
	}))

	err := store.RequireScopes(ScopeSpreadsheets)
	require.ErrorIs(t, err, &AuthError{Kind: AuthScopeUpgradeRequired})

	// The narrow grant must not be renewable: the refresh token is gone
	// and a refresh attempt fails without reaching the token endpoint.
	cred, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, cred.RefreshToken)
	assert.ElementsMatch(t, []string{ScopeSpreadsheets}, cred.RequestedScopes)

	_, err = store.EnsureFresh(context.Background())
	require.ErrorIs(t, err, &AuthError{Kind: AuthRefreshDenied})
	assert.Equal(t, int64(0), hits.Load())
}

func TestRequireScopes_FailsBeforeAnyRemoteCall(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusOK, `{"access_token":"x","token_type":"Bearer","expires_in":3600}`)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       []string{ScopeSpreadsheetsReadOnly},
	}))

	err := store.RequireScopes(ScopeDrive)
	require.Error(t, err)
	assert.Equal(t, int64(0), hits.Load(), "scope check is local")
}

func TestExchange_PersistsCredential(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusOK, `{"access_token":"exchanged","refresh_token":"granted","token_type":"Bearer","expires_in":3600}`)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Exchange(context.Background(), "auth-code"))

	cred, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "exchanged", cred.AccessToken)
	assert.Equal(t, "granted", cred.RefreshToken)
	assert.Equal(t, DefaultOAuthScopes, cred.Scopes)
	assert.Empty(t, cred.RequestedScopes)
}

func TestTokenSource_DeliversFreshToken(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenEndpoint(t, &hits, http.StatusOK, `{"access_token":"rotated","token_type":"Bearer","expires_in":3600}`)
	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Persist(&Credential{
		AccessToken:  "expired",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Minute),
	}))

	tok, err := store.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	assert.Equal(t, "rotated", tok.AccessToken)
}

func TestAuthErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &AuthError{Kind: AuthNotFound})
	assert.True(t, errors.Is(err, &AuthError{Kind: AuthNotFound}))
	assert.False(t, errors.Is(err, &AuthError{Kind: AuthRefreshDenied}))
}
