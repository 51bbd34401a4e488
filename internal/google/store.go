package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/sheetsmcp/internal/logging"
)

// refreshMargin is the minimum remaining validity EnsureFresh guarantees.
// Tokens closer to expiry than this are refreshed before use so a request
// started now cannot fail mid-flight with an expired token.
const refreshMargin = 60 * time.Second

// CredentialStore owns the stored credential for one account: loading,
// atomic persistence, scope checks, and single-flight refresh.
//
// All mutation goes through the store's mutex, so concurrent callers of
// EnsureFresh serialize on one refresh and all observe the refreshed token.
type CredentialStore struct {
	path    string
	account string
	conf    *oauth2.Config
	logger  *slog.Logger

	mu     sync.Mutex
	cached *Credential
}

// NewCredentialStore creates a store persisting to the given file path.
// If logger is nil, slog.Default() is used.
func NewCredentialStore(path string, conf *oauth2.Config, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		path:    path,
		account: "default",
		conf:    conf,
		logger:  logger,
	}
}

// NewCredentialStoreForAccount creates a store at the default cache location
// for the named account.
func NewCredentialStoreForAccount(account string, conf *oauth2.Config, logger *slog.Logger) *CredentialStore {
	s := NewCredentialStore(StorePathForAccount(account), conf, logger)
	s.account = account
	return s
}

// StorePathForAccount returns the credential file path for an account,
// e.g. ~/.cache/sheetsmcp/default.json on Linux.
func StorePathForAccount(account string) string {
	if account == "" {
		account = "default"
	}
	return filepath.Join(userCacheDir(), "sheetsmcp", account+".json")
}

// Account returns the account name this store manages credentials for.
func (s *CredentialStore) Account() string {
	return s.account
}

// HasCredential reports whether a credential file exists for this store.
func (s *CredentialStore) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return true
	}
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns the stored credential, reading it from disk on first use.
// Returns AuthError{AuthNotFound} when no credential file exists.
func (s *CredentialStore) Load() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *CredentialStore) loadLocked() (*Credential, error) {
	if s.cached != nil {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &AuthError{Kind: AuthNotFound, Account: s.account}
		}
		return nil, fmt.Errorf("failed to read credential file %s: %w", s.path, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, &AuthError{Kind: AuthNotFound, Account: s.account, Err: fmt.Errorf("corrupt credential file %s: %w", s.path, err)}
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, &AuthError{Kind: AuthNotFound, Account: s.account}
	}

	s.cached = &cred
	return s.cached, nil
}

// Persist writes the credential to disk atomically (temp file + rename, 0600)
// and updates the in-memory copy.
func (s *CredentialStore) Persist(cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(cred)
}

func (s *CredentialStore) persistLocked(cred *Credential) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close credential file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace credential file: %w", err)
	}

	s.cached = cred
	return nil
}

// Clear removes the stored credential from disk and memory.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *CredentialStore) clearLocked() error {
	s.cached = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

var (
	refreshObserverMu sync.RWMutex
	refreshObserver   func(result string)
)

// SetRefreshObserver registers a callback invoked with "success" or "failure"
// after each token refresh attempt. Used to feed refresh outcomes into
// metrics without coupling the store to the instrumentation stack.
func SetRefreshObserver(fn func(result string)) {
	refreshObserverMu.Lock()
	defer refreshObserverMu.Unlock()
	refreshObserver = fn
}

func notifyRefresh(result string) {
	refreshObserverMu.RLock()
	fn := refreshObserver
	refreshObserverMu.RUnlock()
	if fn != nil {
		fn(result)
	}
}

// EnsureFresh returns a token valid for at least refreshMargin, refreshing
// through the OAuth token endpoint when the stored token is expired or close
// to expiry. A rejected refresh token clears the stored credential and
// returns AuthError{AuthRefreshDenied}.
func (s *CredentialStore) EnsureFresh(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	if cred.AccessToken != "" && !cred.Expiry.IsZero() && time.Until(cred.Expiry) > refreshMargin {
		return cred.Token(), nil
	}

	if cred.RefreshToken == "" {
		return nil, &AuthError{Kind: AuthRefreshDenied, Account: s.account,
			Err: errors.New("no refresh token stored")}
	}

	// Hand the token source a token that is already expired so it always
	// hits the endpoint instead of reusing the near-expiry access token.
	stale := cred.Token()
	stale.Expiry = time.Unix(1, 0)

	tok, err := s.conf.TokenSource(ctx, stale).Token()
	if err != nil {
		notifyRefresh("failure")
		if isRefreshDenied(err) {
			s.logger.Warn("refresh token rejected, clearing stored credential",
				logging.Account(s.account), logging.Err(err))
			if clearErr := s.clearLocked(); clearErr != nil {
				s.logger.Error("failed to clear credential", logging.Err(clearErr))
			}
			return nil, &AuthError{Kind: AuthRefreshDenied, Account: s.account, Err: err}
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	if err := s.persistLocked(credentialFromToken(tok, nil, cred)); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
	}

	notifyRefresh("success")
	s.logger.Debug("refreshed access token",
		logging.Account(s.account),
		slog.Time("expiry", tok.Expiry))
	return tok, nil
}

// RequireScopes verifies the stored credential covers every required scope.
// On a missing scope it records the requested scopes so the next consent URL
// asks for the union of old and new grants, drops the refresh token so the
// narrow grant cannot be silently renewed, and returns
// AuthError{AuthScopeUpgradeRequired}.
func (s *CredentialStore) RequireScopes(scopes ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.loadLocked()
	if err != nil {
		return err
	}

	missing := cred.MissingScopes(scopes)
	if len(missing) == 0 {
		return nil
	}

	updated := *cred
	updated.RequestedScopes = unionScopes(cred.RequestedScopes, missing)
	updated.RefreshToken = ""
	if err := s.persistLocked(&updated); err != nil {
		s.logger.Error("failed to record requested scopes", logging.Err(err))
	}

	s.logger.Warn("stored grant is missing scopes, re-consent required",
		logging.Account(s.account))

	return &AuthError{
		Kind:          AuthScopeUpgradeRequired,
		Account:       s.account,
		MissingScopes: missing,
	}
}

// AuthURL returns the consent URL. When a prior RequireScopes failure
// recorded extra scopes, the URL requests the union of the configured and
// requested scopes.
func (s *CredentialStore) AuthURL(state string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	scopes := s.conf.Scopes
	if cred, err := s.loadLocked(); err == nil {
		scopes = unionScopes(unionScopes(scopes, cred.Scopes), cred.RequestedScopes)
	}

	conf := *s.conf
	conf.Scopes = scopes
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens and persists them.
func (s *CredentialStore) Exchange(ctx context.Context, authCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	prev, _ := s.loadLocked()
	granted := s.conf.Scopes
	if prev != nil {
		granted = unionScopes(unionScopes(granted, prev.Scopes), prev.RequestedScopes)
	}
	cred := credentialFromToken(tok, granted, prev)
	cred.RequestedScopes = nil

	if err := s.persistLocked(cred); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	s.logger.Info("stored credential",
		logging.Account(s.account),
		slog.String("token", logging.SanitizeToken(tok.AccessToken)))
	return nil
}

// isRefreshDenied reports whether a token endpoint error indicates a revoked
// or otherwise unusable refresh token, as opposed to a transient failure.
func isRefreshDenied(err error) bool {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		if retrieve.ErrorCode == "invalid_grant" || retrieve.ErrorCode == "unauthorized_client" {
			return true
		}
		if retrieve.Response != nil && retrieve.Response.StatusCode == 400 &&
			strings.Contains(string(retrieve.Body), "invalid_grant") {
			return true
		}
	}
	return false
}
