package google

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// OOB is the out-of-band redirect target for the copy-paste consent flow.
const OOB = "urn:ietf:wg:oauth:2.0:oob"

// OAuthConfig returns the OAuth2 configuration for the Google Sheets and
// Drive APIs. Client credentials come from the environment so deployments
// can bring their own OAuth client.
func OAuthConfig() *oauth2.Config {
	return OAuthConfigWithScopes(DefaultOAuthScopes)
}

// OAuthConfigWithScopes returns an OAuth2 configuration requesting the given
// scopes.
func OAuthConfigWithScopes(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  OOB,
		Scopes:       scopes,
	}
}

// HasTokenForAccount checks if a stored credential exists for the account.
func HasTokenForAccount(account string) bool {
	_, err := os.Stat(StorePathForAccount(account))
	return err == nil
}

// GetAuthURLForAccount returns the consent URL for the account's store.
func GetAuthURLForAccount(account string) string {
	store := NewCredentialStoreForAccount(account, OAuthConfig(), nil)
	return store.AuthURL("state")
}

// SaveTokenForAccount exchanges an authorization code and persists the
// resulting credential for the account.
func SaveTokenForAccount(ctx context.Context, account string, authCode string) error {
	store := NewCredentialStoreForAccount(account, OAuthConfig(), nil)
	return store.Exchange(ctx, authCode)
}

// GetHTTPClientForAccount returns an authorized HTTP client for the account.
// Returns AuthError{AuthNotFound} when the account has never been authorized.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	store := NewCredentialStoreForAccount(account, OAuthConfig(), nil)
	if _, err := store.Load(); err != nil {
		return nil, err
	}
	return store.HTTPClient(ctx), nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
