// Package purchase runs the fixed seven-step purchase pipeline: agreement
// verification, a payment transfer on the payment chain, and an NFT
// transfer on the asset chain, with per-step progress for the UI.
package purchase

import (
	"context"

	id "airspace/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// PaymentClient is the payment-chain collaborator.
type PaymentClient interface {
	// TransferFunds sends the fixed payment amount to the recipient and
	// returns the transaction hash.
	TransferFunds(ctx context.Context, recipient id.WalletAddress, amountEth string) (id.TxHash, error)

	// CheckTransactionStatus reports whether the transaction confirmed.
	CheckTransactionStatus(ctx context.Context, hash id.TxHash) (bool, error)
}

// StatusSealed is the asset chain's terminal confirmation status. Any other
// terminal status fails the transfer step.
const StatusSealed = "SEALED"

// AssetTransferResult is the asset-chain transfer outcome.
type AssetTransferResult struct {
	TransactionID id.TxHash
	Status        string
	Verified      bool
}

// AssetClient is the asset-chain (NFT) collaborator.
type AssetClient interface {
	TransferAsset(ctx context.Context, from, to id.AssetAddress, asset id.AssetID) (AssetTransferResult, error)
}

// Gatekeeper is the humanity-verification precondition consulted before a
// run starts. Satisfied by the humanity service.
type Gatekeeper interface {
	VerifyCredential(ctx context.Context) (bool, error)
}
