package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/sheetsmcp/internal/google"
	"github.com/teemow/sheetsmcp/internal/instrumentation"
	"github.com/teemow/sheetsmcp/internal/sheets"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx           context.Context
	cancel        context.CancelFunc
	sheetsClients map[string]*sheets.Client     // Maps account name to Sheets client
	dispatchers   map[string]*sheets.Dispatcher // Maps account name to dispatcher
	logger        *slog.Logger
	metrics       *instrumentation.Metrics
	auditLogger   *instrumentation.AuditLogger
	mu            sync.RWMutex
	shutdown      bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, logger *slog.Logger) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if logger == nil {
		logger = slog.Default()
	}

	// Initialize client maps
	sheetsClients := make(map[string]*sheets.Client)

	// Try to create default Sheets client, but don't fail if token is missing
	// Clients will be lazily initialized when first needed
	if google.HasTokenForAccount("default") {
		client, err := sheets.NewClient(shutdownCtx)
		if err != nil {
			// Log but don't fail - will be re-attempted on first use
			fmt.Printf("Warning: failed to create Sheets client for default account: %v\n", err)
		} else {
			sheetsClients["default"] = client
		}
	}

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		sheetsClients: sheetsClients,
		dispatchers:   make(map[string]*sheets.Dispatcher),
		logger:        logger,
		shutdown:      false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SheetsClientForAccount returns the Sheets client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) SheetsClientForAccount(account string) *sheets.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check if client already exists
	if client, ok := sc.sheetsClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !google.HasTokenForAccount(account) {
		return nil
	}

	client, err := sheets.NewClientForAccount(sc.ctx, account)
	if err != nil {
		fmt.Printf("Warning: failed to create Sheets client for account %s: %v\n", account, err)
		return nil
	}

	sc.sheetsClients[account] = client
	return client
}

// SheetsClient returns the Sheets client for the default account
func (sc *ServerContext) SheetsClient() *sheets.Client {
	return sc.SheetsClientForAccount("default")
}

// SetSheetsClientForAccount sets the Sheets client for a specific account
func (sc *ServerContext) SetSheetsClientForAccount(account string, client *sheets.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sheetsClients[account] = client
	delete(sc.dispatchers, account)
}

// SetSheetsClient sets the Sheets client for the default account
func (sc *ServerContext) SetSheetsClient(client *sheets.Client) {
	sc.SetSheetsClientForAccount("default", client)
}

// DispatcherForAccount returns the batch dispatcher for a specific account
// Creates and caches the dispatcher if it doesn't exist yet
// Returns nil if the account has no usable client
func (sc *ServerContext) DispatcherForAccount(account string) *sheets.Dispatcher {
	client := sc.SheetsClientForAccount(account)
	if client == nil {
		return nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if d, ok := sc.dispatchers[account]; ok {
		return d
	}

	d := sheets.NewDispatcher(client, sc.logger).WithMetrics(sc.metrics)
	sc.dispatchers[account] = d
	return d
}

// Dispatcher returns the batch dispatcher for the default account
func (sc *ServerContext) Dispatcher() *sheets.Dispatcher {
	return sc.DispatcherForAccount("default")
}

// ActiveAccounts returns the number of accounts with a cached Sheets client
func (sc *ServerContext) ActiveAccounts() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.sheetsClients)
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil if instrumentation is not configured
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by instrumented tool handlers
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// AuditLogger returns the audit logger, or nil if audit logging is not configured
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
