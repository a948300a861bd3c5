package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"airspace/internal/notify"
	"airspace/internal/platform/config"
	"airspace/internal/storage"
	"airspace/internal/wallet"
	"airspace/internal/wallet/session"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
)

// ManagerSuite covers the wallet connection state machine.
//
// Justification: first-time detection, failure classification and the
// atomic disconnect clear are lifecycle invariants the rest of the client
// builds on; each is pinned here against the in-memory store.
type ManagerSuite struct {
	suite.Suite
	ctx      context.Context
	kv       *storage.MemoryKV
	notifier *notify.Recorder
	cfg      config.WalletConfig
	addr     id.WalletAddress
}

func (s *ManagerSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = storage.NewMemoryKV()
	s.notifier = notify.NewRecorder()
	s.cfg = config.WalletConfig{
		SessionExpiry:     time.Hour,
		FeeLimitWei:       "100000000000000000",
		SessionSigningKey: "test-key",
	}
	addr, err := id.ParseWalletAddress("0x1111111111111111111111111111111111111111")
	s.Require().NoError(err)
	s.addr = addr
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) newManager(c wallet.Connector, opts ...session.Option) *session.Manager {
	opts = append([]session.Option{
		session.WithNotifier(s.notifier),
		session.WithConnectTimeout(time.Second),
	}, opts...)
	return session.NewManager(s.ctx, c, s.kv, opts...)
}

func (s *ManagerSuite) TestFirstConnectIsNewWalletOnceOnly() {
	m := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))

	s.Require().NoError(m.Connect(s.ctx))
	s.True(m.Snapshot().IsNewWallet, "first-ever connect of an address")

	s.Require().NoError(m.Disconnect(s.ctx))
	s.Require().NoError(m.Connect(s.ctx))
	s.False(m.Snapshot().IsNewWallet, "address is already known")
}

func (s *ManagerSuite) TestKnownAddressesSurviveRestart() {
	m := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))
	s.Require().NoError(m.Connect(s.ctx))

	// Fresh manager over the same store simulates a process restart.
	m2 := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))
	s.Require().NoError(m2.Connect(s.ctx))
	s.False(m2.Snapshot().IsNewWallet)
}

func (s *ManagerSuite) TestNewWalletCallbackFiresOnce() {
	m := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))

	var calls []id.WalletAddress
	m.OnNewWallet(func(_ context.Context, addr id.WalletAddress) {
		calls = append(calls, addr)
	})

	s.Require().NoError(m.Connect(s.ctx))
	s.Require().NoError(m.Disconnect(s.ctx))
	s.Require().NoError(m.Connect(s.ctx))

	s.Equal([]id.WalletAddress{s.addr}, calls)
	s.Len(s.notifier.ByID("new-wallet-detected"), 1)
}

// TestAddressObserversRunBeforeNewWalletHooks pins the callback ordering
// on a first-time connect.
//
// Justification: new-wallet hooks act on the connected wallet (credential
// auto-provisioning), so anything tracking the current address must have
// observed the transition before they fire. Running the hooks first would
// make provisioning fail against a context that still sees no wallet.
func (s *ManagerSuite) TestAddressObserversRunBeforeNewWalletHooks() {
	m := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))

	var order []string
	m.OnAddressChange(func(_ context.Context, _ id.WalletAddress, connected bool) {
		if connected {
			order = append(order, "address-change")
		}
	})
	m.OnNewWallet(func(_ context.Context, _ id.WalletAddress) {
		order = append(order, "new-wallet")
	})

	s.Require().NoError(m.Connect(s.ctx))
	s.Equal([]string{"address-change", "new-wallet"}, order)
}

func (s *ManagerSuite) TestConnectTimeoutClassified() {
	c := wallet.NewSimConnector(s.cfg, s.addr)
	c.Delay = time.Minute
	m := s.newManager(c, session.WithConnectTimeout(30*time.Millisecond))

	err := m.Connect(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeConnectionTimeout), "timeout class, not a hang: %v", err)
	s.Len(s.notifier.ByID("connect-timeout"), 1)
	s.Equal(session.StateError, m.Snapshot().State)
}

func (s *ManagerSuite) TestUserRejectionClassified() {
	c := wallet.NewSimConnector(s.cfg, s.addr)
	c.Err = errors.New("user rejected the request")
	m := s.newManager(c)

	err := m.Connect(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeConnectionRejected))
	s.Len(s.notifier.ByID("connect-rejected"), 1)
}

func (s *ManagerSuite) TestErrorStateDoesNotBlockRetry() {
	c := wallet.NewSimConnector(s.cfg, s.addr)
	c.Err = errors.New("boom")
	m := s.newManager(c)

	s.Error(m.Connect(s.ctx))

	c.Err = nil
	s.Require().NoError(m.Connect(s.ctx))
	s.Equal(session.StateConnected, m.Snapshot().State)
}

func (s *ManagerSuite) TestIdenticalErrorsDedupedWithinWindow() {
	c := wallet.NewSimConnector(s.cfg, s.addr)
	c.Err = errors.New("boom")
	m := s.newManager(c, session.WithErrorDedupeWindow(time.Minute))

	s.Error(m.Connect(s.ctx))
	s.Error(m.Connect(s.ctx))

	s.Len(s.notifier.ByID("connect-error"), 1, "identical message suppressed inside the window")
}

func (s *ManagerSuite) TestDisconnectClearsAtomically() {
	m := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))
	s.Require().NoError(m.Connect(s.ctx))

	_, err := s.kv.Get(s.ctx, session.SessionTokenKey)
	s.Require().NoError(err, "session token persisted while connected")

	s.Require().NoError(m.Disconnect(s.ctx))

	snap := m.Snapshot()
	s.Equal(session.StateDisconnected, snap.State)
	s.True(snap.Address.IsZero())
	s.False(snap.IsNewWallet)

	_, err = s.kv.Get(s.ctx, session.SessionTokenKey)
	s.ErrorIs(err, storage.ErrNotFound, "session artifacts purged")

	_, err = s.kv.Get(s.ctx, session.KnownAddressesKey)
	s.NoError(err, "known-addresses set survives disconnect")
}

func (s *ManagerSuite) TestConnectPurgesStaleArtifacts() {
	s.Require().NoError(s.kv.Set(s.ctx, "session:stale", "x"))
	s.Require().NoError(s.kv.Set(s.ctx, "auth:stale", "x"))
	s.Require().NoError(s.kv.Set(s.ctx, "humanity:credential:0xabc", "{}"))

	m := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))
	s.Require().NoError(m.Connect(s.ctx))

	_, err := s.kv.Get(s.ctx, "session:stale")
	s.ErrorIs(err, storage.ErrNotFound)
	_, err = s.kv.Get(s.ctx, "auth:stale")
	s.ErrorIs(err, storage.ErrNotFound)
	_, err = s.kv.Get(s.ctx, "humanity:credential:0xabc")
	s.NoError(err, "credential cache is not a session artifact")
}

func (s *ManagerSuite) TestAddressChangeObserverSeesBothTransitions() {
	m := s.newManager(wallet.NewSimConnector(s.cfg, s.addr))

	type change struct {
		addr      id.WalletAddress
		connected bool
	}
	var changes []change
	m.OnAddressChange(func(_ context.Context, addr id.WalletAddress, connected bool) {
		changes = append(changes, change{addr, connected})
	})

	s.Require().NoError(m.Connect(s.ctx))
	s.Require().NoError(m.Disconnect(s.ctx))

	s.Require().Len(changes, 2)
	s.Equal(change{s.addr, true}, changes[0])
	s.Equal(change{"", false}, changes[1])
}
