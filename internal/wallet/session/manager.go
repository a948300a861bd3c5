// Package session owns the single wallet connection lifecycle: connect,
// disconnect, first-time wallet detection and session artifact hygiene.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"airspace/internal/notify"
	"airspace/internal/storage"
	"airspace/internal/wallet"
	"airspace/internal/wallet/metrics"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
	audit "airspace/pkg/platform/audit"
	"airspace/pkg/platform/audit/publisher"
)

// State enumerates the connection lifecycle.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// KnownAddressesKey persists the set of wallet addresses this client has
// ever connected. It deliberately sits outside the session purge prefixes:
// first-time detection must survive connect/disconnect hygiene.
const KnownAddressesKey = "wallet:known-addresses"

// SessionTokenKey stores the active session token between connect and
// disconnect. It sits inside a purged prefix so no session survives.
const SessionTokenKey = "session:token"

// sessionPurgePrefixes are the artifact namespaces cleared before every
// connect attempt, on disconnect, and at construction.
var sessionPurgePrefixes = []string{"session:", "auth:", "connect:"}

const defaultErrorDedupeWindow = 2 * time.Second

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	State       State
	Address     id.WalletAddress
	Connected   bool
	IsNewWallet bool
	Err         error
}

// NewWalletFunc is invoked after the first-ever connect of an address.
type NewWalletFunc func(ctx context.Context, addr id.WalletAddress)

// AddressChangeFunc observes address transitions, including to "none".
type AddressChangeFunc func(ctx context.Context, addr id.WalletAddress, connected bool)

// Manager drives the wallet connection state machine. All state transitions
// happen under one mutex so observers never see a partial clear.
type Manager struct {
	connector wallet.Connector
	kv        storage.KV
	logger    *slog.Logger
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	auditor   publisher.Publisher
	timeout   time.Duration
	dedupe    time.Duration
	now       func() time.Time

	mu          sync.Mutex
	state       State
	address     id.WalletAddress
	isNewWallet bool
	lastErr     error
	lastErrMsg  string
	lastErrAt   time.Time

	onNewWallet     []NewWalletFunc
	onAddressChange []AddressChangeFunc
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithNotifier sets the user notification sink.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(mm *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mm }
}

// WithAuditor sets the audit event publisher.
func WithAuditor(p publisher.Publisher) Option {
	return func(m *Manager) { m.auditor = p }
}

// WithConnectTimeout overrides the 60s connect timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithErrorDedupeWindow overrides the 2s identical-error suppression window.
func WithErrorDedupeWindow(d time.Duration) Option {
	return func(m *Manager) { m.dedupe = d }
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager constructs a Manager and immediately force-disconnects and
// purges session artifacts: no connection is assumed to survive a restart.
func NewManager(ctx context.Context, connector wallet.Connector, kv storage.KV, opts ...Option) *Manager {
	m := &Manager{
		connector: connector,
		kv:        kv,
		logger:    slog.Default(),
		notifier:  notify.NewLogNotifier(nil),
		timeout:   60 * time.Second,
		dedupe:    defaultErrorDedupeWindow,
		now:       time.Now,
		state:     StateDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.connector.Disconnect(ctx); err != nil {
		m.logger.Warn("initial force-disconnect failed", "error", err)
	}
	m.purgeSessionArtifacts(ctx)
	return m
}

// OnNewWallet registers a first-time wallet callback.
func (m *Manager) OnNewWallet(fn NewWalletFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onNewWallet = append(m.onNewWallet, fn)
}

// OnAddressChange registers an address transition observer.
func (m *Manager) OnAddressChange(fn AddressChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAddressChange = append(m.onAddressChange, fn)
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:       m.state,
		Address:     m.address,
		Connected:   m.state == StateConnected,
		IsNewWallet: m.isNewWallet,
		Err:         m.lastErr,
	}
}

// Address returns the connected address, zero when disconnected.
func (m *Manager) Address() id.WalletAddress {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected {
		return ""
	}
	return m.address
}

// Connected reports whether a wallet is connected.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// Connect runs one connect attempt: purge artifacts, handshake with a hard
// timeout, classify failures, detect first-time wallets. Re-entrant after
// failure; a second call while one is in flight is refused.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateConnecting {
		m.mu.Unlock()
		return dErrors.New(dErrors.CodeInvalidInput, "connect already in progress")
	}
	m.state = StateConnecting
	m.address = ""
	m.isNewWallet = false
	m.lastErr = nil
	m.mu.Unlock()

	// Stale session state must never leak into a fresh attempt.
	if err := m.connector.Disconnect(ctx); err != nil {
		m.logger.Warn("pre-connect disconnect failed", "error", err)
	}
	m.purgeSessionArtifacts(ctx)

	start := m.now()
	connectCtx, cancel := context.WithTimeout(ctx, m.timeout)
	account, err := m.connector.Connect(connectCtx)
	cancel()
	elapsed := time.Since(start).Seconds()

	if err != nil {
		classified := m.classifyConnectError(err, connectCtx)
		m.failConnect(ctx, classified)
		m.metrics.RecordConnect(connectFailureOutcome(classified), elapsed)
		return classified
	}
	if account.Address.IsZero() {
		classified := dErrors.New(dErrors.CodeConnectionFailed, "connected but no address available")
		m.failConnect(ctx, classified)
		m.metrics.RecordConnect("failed", elapsed)
		return classified
	}

	isNew, err := m.recordKnownAddress(ctx, account.Address)
	if err != nil {
		// First-time detection is best-effort; the connection itself stands.
		m.logger.Warn("known-address bookkeeping failed", "error", err)
	}
	if account.SessionToken != "" {
		if err := m.kv.Set(ctx, SessionTokenKey, account.SessionToken); err != nil {
			m.logger.Warn("failed to persist session token", "error", err)
		}
	}

	m.mu.Lock()
	m.state = StateConnected
	m.address = account.Address
	m.isNewWallet = isNew
	newWalletFns := append([]NewWalletFunc(nil), m.onNewWallet...)
	changeFns := append([]AddressChangeFunc(nil), m.onAddressChange...)
	m.mu.Unlock()

	m.metrics.RecordConnect("connected", elapsed)
	m.logger.Info("wallet connected",
		"wallet", account.Address.Short(),
		"new_wallet", isNew,
		"session_expiry", account.SessionExpiry)
	reason := "repeat_connect"
	if isNew {
		reason = "first_connect"
	}
	m.emitAudit(ctx, audit.Event{
		Wallet: account.Address,
		Action: audit.ActionWalletConnected,
		Reason: reason,
	})

	m.notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelSuccess,
		ID:      "connect-success",
		Message: "Wallet connected successfully",
	})
	// Observers first: new-wallet hooks may act on the connected address,
	// so anything tracking it must already have seen the transition.
	for _, fn := range changeFns {
		fn(ctx, account.Address, true)
	}
	if isNew {
		m.metrics.RecordNewWallet()
		m.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelSuccess,
			ID:      "new-wallet-detected",
			Message: "New wallet detected! A humanity credential will be created for you.",
		})
		for _, fn := range newWalletFns {
			fn(ctx, account.Address)
		}
	}
	return nil
}

// Disconnect clears address, connection flag and first-time flag in one
// transition, purges session artifacts and notifies observers.
func (m *Manager) Disconnect(ctx context.Context) error {
	if err := m.connector.Disconnect(ctx); err != nil {
		m.logger.Warn("connector disconnect failed", "error", err)
	}

	m.mu.Lock()
	prev := m.address
	m.state = StateDisconnected
	m.address = ""
	m.isNewWallet = false
	m.lastErr = nil
	changeFns := append([]AddressChangeFunc(nil), m.onAddressChange...)
	m.mu.Unlock()

	m.purgeSessionArtifacts(ctx)

	if !prev.IsZero() {
		m.emitAudit(ctx, audit.Event{
			Wallet: prev,
			Action: audit.ActionWalletDisconnected,
		})
	}
	m.notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelSuccess,
		ID:      "disconnect-success",
		Message: "Disconnected successfully",
	})
	for _, fn := range changeFns {
		fn(ctx, "", false)
	}
	return nil
}

// classifyConnectError maps a handshake failure into the rejected/timeout/
// other taxonomy. Each class carries its own user-facing message.
func (m *Manager) classifyConnectError(err error, connectCtx context.Context) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded) || connectCtx.Err() == context.DeadlineExceeded || strings.Contains(msg, "timeout"):
		return dErrors.Wrap(err, dErrors.CodeConnectionTimeout,
			"Connection timed out. Please check your network and try again.")
	case strings.Contains(msg, "rejected"):
		return dErrors.Wrap(err, dErrors.CodeConnectionRejected,
			"Connection rejected. Please try again and approve the connection.")
	default:
		return dErrors.Wrap(err, dErrors.CodeConnectionFailed, "Failed to connect wallet: "+err.Error())
	}
}

func connectFailureOutcome(err error) string {
	switch {
	case dErrors.HasCode(err, dErrors.CodeConnectionTimeout):
		return "timeout"
	case dErrors.HasCode(err, dErrors.CodeConnectionRejected):
		return "rejected"
	default:
		return "failed"
	}
}

// failConnect records the error state and notifies, suppressing identical
// messages inside the dedupe window. Errors never block a retry.
func (m *Manager) failConnect(ctx context.Context, err error) {
	now := m.now()

	m.mu.Lock()
	m.state = StateError
	m.address = ""
	m.isNewWallet = false
	m.lastErr = err
	suppress := err.Error() == m.lastErrMsg && now.Sub(m.lastErrAt) <= m.dedupe
	if !suppress {
		m.lastErrMsg = err.Error()
		m.lastErrAt = now
	}
	m.mu.Unlock()

	m.logger.Error("wallet connect failed", "error", err, "suppressed_notification", suppress)
	if suppress {
		return
	}

	var notifyID string
	switch connectFailureOutcome(err) {
	case "timeout":
		notifyID = "connect-timeout"
	case "rejected":
		notifyID = "connect-rejected"
	default:
		notifyID = "connect-error"
	}
	m.notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelError,
		ID:      notifyID,
		Message: err.Error(),
	})
}

// recordKnownAddress reports whether the address was never seen before and
// adds it to the persisted set.
func (m *Manager) recordKnownAddress(ctx context.Context, addr id.WalletAddress) (bool, error) {
	known := []string{}
	raw, err := m.kv.Get(ctx, KnownAddressesKey)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(raw), &known); err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeCacheParse, "malformed known-addresses record")
		}
	case errors.Is(err, storage.ErrNotFound):
		// first wallet ever
	default:
		return false, err
	}

	for _, k := range known {
		if k == addr.String() {
			return false, nil
		}
	}

	known = append(known, addr.String())
	encoded, err := json.Marshal(known)
	if err != nil {
		return true, err
	}
	if err := m.kv.Set(ctx, KnownAddressesKey, string(encoded)); err != nil {
		return true, err
	}
	return true, nil
}

func (m *Manager) purgeSessionArtifacts(ctx context.Context) {
	for _, prefix := range sessionPurgePrefixes {
		if err := storage.DeletePrefix(ctx, m.kv, prefix); err != nil {
			m.logger.Warn("session artifact purge failed", "prefix", prefix, "error", err)
		}
	}
}

func (m *Manager) emitAudit(ctx context.Context, event audit.Event) {
	if m.auditor == nil {
		return
	}
	if err := m.auditor.Emit(ctx, event); err != nil {
		m.logger.Warn("audit emit failed", "action", string(event.Action), "error", err)
	}
}
