package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"airspace/internal/purchase"
)

type SimSuite struct {
	suite.Suite
}

func TestSimSuite(t *testing.T) {
	suite.Run(t, new(SimSuite))
}

func (s *SimSuite) TestPaymentTransferConfirms() {
	client := &SimPaymentClient{}
	hash, err := client.TransferFunds(context.Background(), "0xabc", "0.0001")
	s.Require().NoError(err)
	s.NotEmpty(hash)

	confirmed, err := client.CheckTransactionStatus(context.Background(), hash)
	s.Require().NoError(err)
	s.True(confirmed)
}

func (s *SimSuite) TestAssetTransferSealsByDefault() {
	client := &SimAssetClient{}
	result, err := client.TransferAsset(context.Background(), "0x4f2f8523482a3e79", "0x1a2b3c4d5e6f7a8b", "nft-1")
	s.Require().NoError(err)
	s.Equal(purchase.StatusSealed, result.Status)
	s.True(result.Verified)
	s.NotEmpty(result.TransactionID)
}

// TestConfiguredStatusPropagates lets tests force a stuck transfer.
func (s *SimSuite) TestConfiguredStatusPropagates() {
	client := &SimAssetClient{Status: "PENDING"}
	result, err := client.TransferAsset(context.Background(), "0x4f2f8523482a3e79", "0x1a2b3c4d5e6f7a8b", "nft-1")
	s.Require().NoError(err)
	s.Equal("PENDING", result.Status)
	s.False(result.Verified)
}

func (s *SimSuite) TestAssetTransferRejectsMissingRecipient() {
	client := &SimAssetClient{}
	_, err := client.TransferAsset(context.Background(), "0x4f2f8523482a3e79", "", "nft-1")
	s.Error(err)
}
