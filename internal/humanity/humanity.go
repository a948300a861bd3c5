// Package humanity composes the wallet session with the credential service:
// it caches whether the current wallet holds a valid humanity credential,
// re-derives that on every address change, and exposes create/verify
// operations with one local-backend retry on remote failure.
package humanity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"airspace/internal/credential"
	"airspace/internal/credential/backend"
	"airspace/internal/credential/models"
	"airspace/internal/notify"
	"airspace/internal/storage"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
	audit "airspace/pkg/platform/audit"
	"airspace/pkg/platform/audit/publisher"
)

// CredentialKeyPrefix namespaces the per-address persisted credential
// records. Outside the session purge prefixes: cached credentials survive
// reconnects and are cleared only by disconnect or replacement.
const CredentialKeyPrefix = "humanity:credential:"

// Mode records which backend produced a cached credential. Fallback-mode
// credentials always verify through the local same-owner check.
const (
	ModeLive     = "live"
	ModeFallback = "fallback"
)

const defaultVerifyDelay = time.Second

// Record is the cached credential envelope, in memory and in the KV store.
type Record struct {
	Credential models.VerifiableCredential `json:"credential"`
	Mode       string                      `json:"mode"`
	CachedAt   time.Time                   `json:"cachedAt"`
}

// Status is a point-in-time view of the humanity state.
type Status struct {
	Address       id.WalletAddress
	Connected     bool
	HasCredential bool
	Credential    *Record
	Loading       bool
}

// Service is the humanity credential composition layer. One instance per
// process; all state transitions happen under a single mutex, with a
// per-address lock serializing create/verify/check for the same wallet.
type Service struct {
	creds    *credential.Service
	fallback *credential.Service
	kv       storage.KV
	logger   *slog.Logger
	notifier notify.Notifier
	auditor  publisher.Publisher

	verifyDelay time.Duration
	now         func() time.Time

	sf singleflight.Group

	mu        sync.Mutex
	address   id.WalletAddress
	connected bool
	record    *Record
	loading   bool

	addrMu    sync.Mutex
	addrLocks map[id.WalletAddress]*sync.Mutex
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithNotifier sets the user notification sink.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithAuditor sets the audit event publisher.
func WithAuditor(p publisher.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

// WithVerifyDelay overrides the simulated local verification delay.
func WithVerifyDelay(d time.Duration) Option {
	return func(s *Service) { s.verifyDelay = d }
}

// WithFallbackService overrides the local retry service (for testing).
func WithFallbackService(f *credential.Service) Option {
	return func(s *Service) { s.fallback = f }
}

// New creates the humanity service over a credential service and KV cache.
func New(creds *credential.Service, kv storage.KV, opts ...Option) *Service {
	s := &Service{
		creds:       creds,
		kv:          kv,
		logger:      slog.Default(),
		notifier:    notify.NewLogNotifier(nil),
		verifyDelay: defaultVerifyDelay,
		now:         time.Now,
		addrLocks:   map[id.WalletAddress]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fallback == nil {
		if creds.Fallback() {
			s.fallback = creds
		} else {
			s.fallback = credential.NewService(backend.NewLocalBackend(), credential.WithLogger(s.logger))
		}
	}
	return s
}

// Status returns the current humanity state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Address:       s.address,
		Connected:     s.connected,
		HasCredential: s.record != nil,
		Loading:       s.loading,
	}
	if s.record != nil {
		rec := *s.record
		st.Credential = &rec
	}
	return st
}

// HasCredential reports whether the current wallet has a cached credential.
func (s *Service) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record != nil
}

// HandleAddressChange re-derives the humanity state for the new address.
// Disconnection clears the cached credential immediately with no remote
// call. Concurrent checks for the same address collapse into one.
func (s *Service) HandleAddressChange(ctx context.Context, addr id.WalletAddress, connected bool) error {
	if !connected || addr.IsZero() {
		s.mu.Lock()
		s.address = ""
		s.connected = false
		s.record = nil
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.address = addr
	s.connected = true
	s.mu.Unlock()

	result, err, _ := s.sf.Do(addr.String(), func() (any, error) {
		return s.checkForExistingCredential(ctx, addr)
	})
	if err != nil {
		return err
	}

	record, _ := result.(*Record)
	s.mu.Lock()
	// The wallet may have changed again while the check was in flight.
	if s.address == addr && s.connected {
		s.record = record
	}
	s.mu.Unlock()
	return nil
}

// checkForExistingCredential resolves the address's credential: remotely in
// live mode, from the per-address cache in fallback mode, and from the same
// cache as last resort on any remote error.
func (s *Service) checkForExistingCredential(ctx context.Context, addr id.WalletAddress) (*Record, error) {
	if s.creds.Fallback() {
		return s.readCached(ctx, addr)
	}

	verified, err := s.creds.VerifyHumanCredential(ctx, addr)
	if err != nil {
		s.logger.Warn("remote credential check failed, falling back to local cache",
			"wallet", addr.Short(), "error", err)
		return s.readCached(ctx, addr)
	}
	if !verified {
		return nil, nil
	}

	cred, err := s.creds.FindHumanCredential(ctx, addr)
	if err != nil || cred == nil {
		if err != nil {
			s.logger.Warn("credential listing failed after verification",
				"wallet", addr.Short(), "error", err)
		}
		return s.readCached(ctx, addr)
	}
	return &Record{Credential: *cred, Mode: ModeLive, CachedAt: s.now().UTC()}, nil
}

// readCached loads the per-address credential record. Absence is not an
// error; a malformed record is surfaced as a cache-parse failure.
func (s *Service) readCached(ctx context.Context, addr id.WalletAddress) (*Record, error) {
	raw, err := s.kv.Get(ctx, CredentialKeyPrefix+addr.String())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		parseErr := dErrors.Wrap(err, dErrors.CodeCacheParse, "cached credential record is malformed")
		s.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelError,
			ID:      "credential-cache-corrupt",
			Message: "Stored credential could not be read. Please create a new one.",
		})
		return nil, parseErr
	}
	return &record, nil
}

// CreateCredential issues a humanity credential for the connected wallet:
// one live attempt, then exactly one local-backend retry on failure.
func (s *Service) CreateCredential(ctx context.Context) (*Record, error) {
	addr, err := s.requireConnected(ctx)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(addr)
	lock.Lock()
	defer lock.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	record, err := s.createOnce(ctx, addr)
	if err != nil {
		s.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelError,
			ID:      "credential-create-failed",
			Message: "Failed to create credential: " + err.Error(),
		})
		return nil, err
	}

	s.mu.Lock()
	if s.address == addr && s.connected {
		s.record = record
	}
	s.mu.Unlock()

	s.notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelSuccess,
		ID:      "credential-created",
		Message: "Humanity credential created successfully",
	})
	s.emitAudit(ctx, audit.Event{
		Wallet:  addr,
		Subject: record.Credential.ID,
		Action:  audit.ActionCredentialIssued,
		Mode:    record.Mode,
	})
	return record, nil
}

func (s *Service) createOnce(ctx context.Context, addr id.WalletAddress) (*Record, error) {
	if s.creds.Fallback() {
		return s.createLocal(ctx, addr)
	}

	cred, err := s.creds.CreateHumanCredential(ctx, addr)
	if err == nil {
		return &Record{Credential: *cred, Mode: ModeLive, CachedAt: s.now().UTC()}, nil
	}

	// Exactly one local retry; never a loop.
	s.logger.Warn("live credential creation failed, retrying locally",
		"wallet", addr.Short(), "error", err)
	return s.createLocal(ctx, addr)
}

func (s *Service) createLocal(ctx context.Context, addr id.WalletAddress) (*Record, error) {
	cred, err := s.fallback.CreateHumanCredential(ctx, addr)
	if err != nil {
		return nil, err
	}
	record := &Record{Credential: *cred, Mode: ModeFallback, CachedAt: s.now().UTC()}

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode credential record")
	}
	if err := s.kv.Set(ctx, CredentialKeyPrefix+addr.String(), string(encoded)); err != nil {
		return nil, err
	}
	return record, nil
}

// VerifyCredential checks the cached credential: remotely for live-mode
// records, locally (same-owner check) for fallback records or when the
// remote call fails. The local path never consults the issuer.
func (s *Service) VerifyCredential(ctx context.Context) (bool, error) {
	addr, err := s.requireConnected(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	record := s.record
	s.mu.Unlock()
	if record == nil {
		err := dErrors.New(dErrors.CodeMissingPrerequisite, "no credential to verify, create one first")
		s.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelError,
			ID:      "verify-no-credential",
			Message: "No credential found. Please create one first.",
		})
		return false, err
	}

	lock := s.lockFor(addr)
	lock.Lock()
	defer lock.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	valid, mode := s.verifyRecord(ctx, addr, record)

	decision := "invalid"
	if valid {
		decision = "valid"
	}
	s.emitAudit(ctx, audit.Event{
		Wallet:   addr,
		Subject:  record.Credential.ID,
		Action:   audit.ActionCredentialVerified,
		Decision: decision,
		Mode:     mode,
	})
	if valid {
		s.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelSuccess,
			ID:      "verify-success",
			Message: "Credential verified successfully",
		})
	} else {
		s.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelError,
			ID:      "verify-failed",
			Message: "Credential verification failed",
		})
	}
	return valid, nil
}

func (s *Service) verifyRecord(ctx context.Context, addr id.WalletAddress, record *Record) (bool, string) {
	if record.Mode == ModeLive && !s.creds.Fallback() {
		resp, err := s.creds.VerifyCredential(ctx, record.Credential)
		if err == nil {
			return resp.IsValid, ModeLive
		}
		s.logger.Warn("remote verification failed, using local same-owner check",
			"wallet", addr.Short(), "error", err)
	}
	return s.sameOwner(ctx, addr, record), ModeFallback
}

// sameOwner is the local verification: the credential belongs to the
// currently connected wallet. Not cryptographic; paced to feel like a check.
func (s *Service) sameOwner(ctx context.Context, addr id.WalletAddress, record *Record) bool {
	if s.verifyDelay > 0 {
		timer := time.NewTimer(s.verifyDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}

	subject := record.Credential.CredentialSubject
	if claim := subject.StringClaim(models.ClaimWalletAddress); claim != "" {
		parsed, err := id.ParseWalletAddress(claim)
		return err == nil && parsed == addr
	}
	return subject.ID == addr.DID().String()
}

func (s *Service) requireConnected(ctx context.Context) (id.WalletAddress, error) {
	s.mu.Lock()
	addr, connected := s.address, s.connected
	s.mu.Unlock()
	if !connected || addr.IsZero() {
		err := dErrors.New(dErrors.CodeMissingPrerequisite, "wallet not connected")
		s.notifier.Notify(ctx, notify.Notification{
			Level:   notify.LevelError,
			ID:      "wallet-not-connected",
			Message: "Please connect your wallet first",
		})
		return "", err
	}
	return addr, nil
}

// IsLoading reports whether a create/verify operation is in flight.
func (s *Service) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Service) lockFor(addr id.WalletAddress) *sync.Mutex {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	lock, ok := s.addrLocks[addr]
	if !ok {
		lock = &sync.Mutex{}
		s.addrLocks[addr] = lock
	}
	return lock
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", string(event.Action), "error", err)
	}
}
