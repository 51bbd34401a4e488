package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/teemow/sheetsmcp/internal/instrumentation"
)

// AccountHeader lets HTTP clients pick which stored Google account a session
// uses. Once seen, the binding sticks to the session until it expires.
const AccountHeader = "X-Sheets-Account"

// ErrNoAuthorizationHeader is returned when a request carries no
// Authorization header to derive a session from.
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

// sessionInfo tracks the account binding and last access for cleanup.
type sessionInfo struct {
	account    string
	lastAccess time.Time
}

// SessionIDManager maps HTTP sessions to Google accounts so several accounts
// can share one server instance. The session ID is derived from the
// Authorization header, which stays stable across requests from the same
// client.
type SessionIDManager struct {
	sessions       map[string]*sessionInfo
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
}

// NewSessionIDManager creates a session manager with a 24 hour timeout and
// the default logger.
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(24*time.Hour, slog.Default())
}

// NewSessionIDManagerWithLogger creates a session manager with the given
// idle timeout and logger.
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*sessionInfo),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
	}

	go m.cleanupExpiredSessions()

	return m
}

// SetMetrics attaches a metrics recorder tracking the active session count.
func (m *SessionIDManager) SetMetrics(metrics *instrumentation.Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// ResolveSessionID derives the session ID for an HTTP request from its
// Authorization header.
func (m *SessionIDManager) ResolveSessionID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}

	hash := sha256.Sum256([]byte(authHeader))
	return hex.EncodeToString(hash[:]), nil
}

// AccountForRequest resolves the request's session and returns the account
// bound to it. A request carrying the account header (re)binds the session
// first. Requests without an Authorization header use the default account.
func (m *SessionIDManager) AccountForRequest(r *http.Request) string {
	sessionID, err := m.ResolveSessionID(r)
	if err != nil {
		return "default"
	}

	if account := r.Header.Get(AccountHeader); account != "" {
		m.SetAccountForSession(sessionID, account)
		return account
	}

	return m.GetAccountForSession(sessionID)
}

// GetAccountForSession returns the account bound to a session, refreshing its
// last access time. Unknown sessions map to the default account.
func (m *SessionIDManager) GetAccountForSession(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.sessions[sessionID]; ok {
		info.lastAccess = time.Now()
		return info.account
	}
	return "default"
}

// SetAccountForSession binds an account to a session ID.
func (m *SessionIDManager) SetAccountForSession(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, known := m.sessions[sessionID]; !known && m.metrics != nil {
		m.metrics.IncrementActiveSessions(context.Background())
	}
	m.sessions[sessionID] = &sessionInfo{
		account:    account,
		lastAccess: time.Now(),
	}
}

// RemoveSession drops a session binding.
func (m *SessionIDManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, known := m.sessions[sessionID]; known && m.metrics != nil {
		m.metrics.DecrementActiveSessions(context.Background())
	}
	delete(m.sessions, sessionID)
}

// ActiveSessions returns the number of tracked sessions.
func (m *SessionIDManager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionIDManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expired := 0
			for sessionID, info := range m.sessions {
				if now.Sub(info.lastAccess) > m.sessionTimeout {
					delete(m.sessions, sessionID)
					expired++
				}
			}
			if expired > 0 && m.metrics != nil {
				for i := 0; i < expired; i++ {
					m.metrics.DecrementActiveSessions(context.Background())
				}
			}
			m.mu.Unlock()
			if expired > 0 {
				m.logger.Info("Cleaned up expired sessions", "count", expired)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop terminates the cleanup goroutine.
func (m *SessionIDManager) Stop() {
	m.cleanupTicker.Stop()
	close(m.cleanupDone)
}
