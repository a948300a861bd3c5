package publisher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "airspace/pkg/domain"
	audit "airspace/pkg/platform/audit"
	"airspace/pkg/platform/audit/publisher"
)

// MemoryPublisherSuite verifies the in-memory sink used by Kafka-less runs.
//
// Justification: domain services treat the publisher as fire-and-forget, so
// the memory sink must stamp timestamps and preserve order for assertions.
type MemoryPublisherSuite struct {
	suite.Suite
	pub *publisher.MemoryPublisher
	ctx context.Context
}

func (s *MemoryPublisherSuite) SetupTest() {
	s.pub = publisher.NewMemoryPublisher()
	s.ctx = context.Background()
}

func TestMemoryPublisherSuite(t *testing.T) {
	suite.Run(t, new(MemoryPublisherSuite))
}

func (s *MemoryPublisherSuite) TestStampsTimestamp() {
	addr, err := id.ParseWalletAddress("0x1234567890abcdef1234567890abcdef12345678")
	s.Require().NoError(err)

	s.Require().NoError(s.pub.Emit(s.ctx, audit.Event{
		Wallet: addr,
		Action: audit.ActionWalletConnected,
	}))

	events := s.pub.Events()
	s.Require().Len(events, 1)
	s.False(events[0].Timestamp.IsZero())
	s.Equal(audit.ActionWalletConnected, events[0].Action)
}

func (s *MemoryPublisherSuite) TestByActionFilters() {
	addr, err := id.ParseWalletAddress("0x1234567890abcdef1234567890abcdef12345678")
	s.Require().NoError(err)

	for _, a := range []audit.Action{
		audit.ActionPurchaseStarted,
		audit.ActionCredentialIssued,
		audit.ActionPurchaseStarted,
	} {
		s.Require().NoError(s.pub.Emit(s.ctx, audit.Event{Wallet: addr, Action: a}))
	}

	s.Len(s.pub.ByAction(audit.ActionPurchaseStarted), 2)
	s.Len(s.pub.ByAction(audit.ActionCredentialIssued), 1)
	s.Empty(s.pub.ByAction(audit.ActionPurchaseFailed))
}
