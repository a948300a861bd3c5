package domain

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// AddressSuite tests wallet address parsing and DID derivation.
//
// Justification: the address -> DID mapping is the join key between wallet
// identity and credential subject. It must be deterministic and
// case-normalizing or credential lookups silently miss.
type AddressSuite struct {
	suite.Suite
}

func TestAddressSuite(t *testing.T) {
	suite.Run(t, new(AddressSuite))
}

func (s *AddressSuite) TestParseNormalizesCase() {
	upper, err := ParseWalletAddress("0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B")
	s.Require().NoError(err)
	lower, err := ParseWalletAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	s.Require().NoError(err)

	s.Equal(lower, upper)
	s.Equal(lower.DID(), upper.DID())
	s.Equal(DID("did:ethr:0xab5801a7d398351b8be11c439e05c5b3259aec9b"), lower.DID())
}

func (s *AddressSuite) TestParseAddsMissingPrefix() {
	addr, err := ParseWalletAddress("ab5801a7d398351b8be11c439e05c5b3259aec9b")
	s.Require().NoError(err)
	s.Equal("0xab5801a7d398351b8be11c439e05c5b3259aec9b", addr.String())
}

func (s *AddressSuite) TestParseRejectsBadInput() {
	cases := []string{"", "0x1234", "0xzz5801a7d398351b8be11c439e05c5b3259aec9b"}
	for _, c := range cases {
		_, err := ParseWalletAddress(c)
		s.Error(err, "input %q must be rejected", c)
	}
}

func (s *AddressSuite) TestChecksumIsEIP55() {
	// Known EIP-55 test vector.
	addr, err := ParseWalletAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	s.Require().NoError(err)
	s.Equal("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", addr.Checksum())
}

func (s *AddressSuite) TestShort() {
	addr, err := ParseWalletAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	s.Require().NoError(err)
	s.Equal("0xab58...ec9b", addr.Short())
}

func (s *AddressSuite) TestAssetAddress() {
	addr, err := ParseAssetAddress("0x4F2F8523482A3E79")
	s.Require().NoError(err)
	s.Equal("0x4f2f8523482a3e79", addr.String())

	_, err = ParseAssetAddress("0x4f2f85")
	s.Error(err)
}

func (s *AddressSuite) TestParseDID() {
	_, err := ParseDID("did:ethr:0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	s.NoError(err)

	for _, bad := range []string{"", "did:", "did:ethr:", "ethr:0xabc"} {
		_, err := ParseDID(bad)
		s.Error(err, "input %q must be rejected", bad)
	}
}
