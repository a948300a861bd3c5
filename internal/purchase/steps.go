package purchase

import (
	"fmt"

	id "airspace/pkg/domain"
)

// StepStatus is the per-step lifecycle. Strictly forward-progressing: a
// step goes waiting → loading → completed|failed and never back.
type StepStatus string

const (
	StatusWaiting   StepStatus = "waiting"
	StatusLoading   StepStatus = "loading"
	StatusCompleted StepStatus = "completed"
	StatusFailed    StepStatus = "failed"
)

// Outcome is the whole-flow verdict.
type Outcome string

const (
	OutcomeWaiting Outcome = "waiting"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Step indices into the fixed pipeline, zero-based.
const (
	StepVerifyAgreement = iota
	StepConnectPaymentWallet
	StepTransferPayment
	StepVerifyPayment
	StepConnectAssetWallet
	StepTransferAsset
	StepVerifyAssetTransfer

	stepCount
)

// stepNames label steps in logs, traces and metrics.
var stepNames = [stepCount]string{
	"verify-agreement",
	"connect-payment-wallet",
	"transfer-payment",
	"verify-payment",
	"connect-asset-wallet",
	"transfer-asset",
	"verify-asset-transfer",
}

// Step is one pipeline entry with its display state.
type Step struct {
	Title       string
	Description string
	Status      StepStatus
	Detail      string
	TxHash      id.TxHash
}

// Flow is one purchase run. Constructed fresh per run, never persisted.
type Flow struct {
	ID               id.FlowID
	Steps            []Step
	CurrentStepIndex int
	Outcome          Outcome

	PaymentTxHash id.TxHash
	AssetTxHash   id.TxHash
	AssetVerified bool
}

// newFlow builds the fixed step table with display labels.
func newFlow(amountEth string, recipient id.WalletAddress, source id.AssetAddress) *Flow {
	return &Flow{
		ID:      id.NewFlowID(),
		Outcome: OutcomeWaiting,
		Steps: []Step{
			{
				Title:       "Verify Agreement",
				Description: "Verifying the legal agreement",
				Status:      StatusWaiting,
			},
			{
				Title:       "Connect Payment Wallet",
				Description: "Preparing for the payment transfer",
				Status:      StatusWaiting,
			},
			{
				Title:       "Transfer Payment",
				Description: fmt.Sprintf("Transferring %s ETH to %s", amountEth, recipient.Short()),
				Status:      StatusWaiting,
			},
			{
				Title:       "Verify Payment",
				Description: "Confirming the payment transfer",
				Status:      StatusWaiting,
			},
			{
				Title:       "Connect Asset Wallet",
				Description: "Preparing for the NFT transfer",
				Status:      StatusWaiting,
			},
			{
				Title:       "Transfer NFT",
				Description: fmt.Sprintf("Transferring NFT from %s", source.String()),
				Status:      StatusWaiting,
			},
			{
				Title:       "Verify NFT Transfer",
				Description: "Confirming NFT ownership on the asset chain",
				Status:      StatusWaiting,
			},
		},
	}
}

// snapshot deep-copies the flow for listeners; callers never see the
// orchestrator's working copy.
func (f *Flow) snapshot() Flow {
	out := *f
	out.Steps = make([]Step, len(f.Steps))
	copy(out.Steps, f.Steps)
	return out
}
