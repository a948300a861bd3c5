// Package chain provides simulated payment-chain and asset-chain clients
// for local development. They mint plausible transaction hashes and always
// confirm, the same contract the real providers expose.
package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"airspace/internal/purchase"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
)

// SimPaymentClient simulates the payment chain. The zero value is usable.
type SimPaymentClient struct {
	// Delay is applied to each call to mimic network latency.
	Delay time.Duration
	// TransferErr, when set, fails TransferFunds with this error.
	TransferErr error
	// Unconfirmed, when set, reports transfers as not confirmed.
	Unconfirmed bool
}

// TransferFunds simulates a payment transfer and returns a fresh hash.
func (c *SimPaymentClient) TransferFunds(ctx context.Context, _ id.WalletAddress, _ string) (id.TxHash, error) {
	if err := wait(ctx, c.Delay); err != nil {
		return "", err
	}
	if c.TransferErr != nil {
		return "", c.TransferErr
	}
	return newTxHash(32), nil
}

// CheckTransactionStatus reports the configured confirmation outcome.
func (c *SimPaymentClient) CheckTransactionStatus(ctx context.Context, hash id.TxHash) (bool, error) {
	if err := wait(ctx, c.Delay); err != nil {
		return false, err
	}
	if hash == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "transaction hash is required")
	}
	return !c.Unconfirmed, nil
}

// SimAssetClient simulates the asset chain. The zero value is usable.
type SimAssetClient struct {
	Delay time.Duration
	// TransferErr, when set, fails TransferAsset with this error.
	TransferErr error
	// Status overrides the terminal transfer status. Empty means SEALED.
	Status string
}

// TransferAsset simulates an NFT transfer ending in the configured status.
func (c *SimAssetClient) TransferAsset(ctx context.Context, _, to id.AssetAddress, asset id.AssetID) (purchase.AssetTransferResult, error) {
	if err := wait(ctx, c.Delay); err != nil {
		return purchase.AssetTransferResult{}, err
	}
	if c.TransferErr != nil {
		return purchase.AssetTransferResult{}, c.TransferErr
	}
	if to.IsZero() {
		return purchase.AssetTransferResult{}, dErrors.New(dErrors.CodeInvalidInput, "recipient asset address is required")
	}
	if asset == "" {
		return purchase.AssetTransferResult{}, dErrors.New(dErrors.CodeInvalidInput, "asset ID is required")
	}

	status := c.Status
	if status == "" {
		status = purchase.StatusSealed
	}
	return purchase.AssetTransferResult{
		TransactionID: newTxHash(16),
		Status:        status,
		Verified:      status == purchase.StatusSealed,
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newTxHash(bytes int) id.TxHash {
	buf := make([]byte, bytes)
	_, _ = rand.Read(buf)
	return id.TxHash("0x" + hex.EncodeToString(buf))
}
