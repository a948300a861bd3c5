package purchase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"airspace/internal/listing"
	"airspace/internal/platform/config"
	"airspace/internal/purchase"
	"airspace/internal/purchase/mocks"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
)

const (
	testRecipient   = "0x7f68c1d6b1c4a9e7fdbd73ccf154f0c94b7e2f38"
	testSourceAsset = "0x4f2f8523482a3e79"
	testDestination = "0x1a2b3c4d5e6f7a8b"
)

type OrchestratorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	payment *mocks.MockPaymentClient
	asset   *mocks.MockAssetClient
	gate    *mocks.MockGatekeeper
	orch    *purchase.Orchestrator

	buyer   id.WalletAddress
	dest    id.AssetAddress
	listing listing.Listing
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.payment = mocks.NewMockPaymentClient(s.ctrl)
	s.asset = mocks.NewMockAssetClient(s.ctrl)
	s.gate = mocks.NewMockGatekeeper(s.ctrl)

	cfg := config.PurchaseConfig{
		PaymentAmountEth:  "0.0001",
		PaymentRecipient:  testRecipient,
		SourceAssetWallet: testSourceAsset,
		StepDelay:         0,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.orch = purchase.NewOrchestrator(s.payment, s.asset, s.gate, cfg, purchase.WithLogger(logger))

	s.buyer = id.WalletAddress("0x1111111111111111111111111111111111111111")
	s.dest = id.AssetAddress(testDestination)
	s.listing = listing.Listing{
		ID:              "nft-12",
		TokenID:         12,
		Title:           "Midtown Air Rights",
		PropertyAddress: "432 Park Avenue",
		CurrentHeight:   120,
		MaximumHeight:   280,
		AvailableFloors: 40,
		Price:           250000,
	}
}

func (s *OrchestratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) request() purchase.Request {
	return purchase.Request{
		Buyer:       s.buyer,
		Destination: s.dest,
		Listing:     s.listing,
	}
}

func (s *OrchestratorSuite) expectGateVerified() {
	s.gate.EXPECT().VerifyCredential(gomock.Any()).Return(true, nil)
}

// TestSuccessfulRunCompletesAllSteps drives a clean run end to end.
//
// Justification: the success path is the product. Every step must complete
// in order, both transaction hashes must be recorded, and the flow must
// report success.
func (s *OrchestratorSuite) TestSuccessfulRunCompletesAllSteps() {
	s.expectGateVerified()
	recipient, _ := id.ParseWalletAddress(testRecipient)
	source, _ := id.ParseAssetAddress(testSourceAsset)
	s.payment.EXPECT().TransferFunds(gomock.Any(), recipient, "0.0001").
		Return(id.TxHash("0xpay"), nil)
	s.payment.EXPECT().CheckTransactionStatus(gomock.Any(), id.TxHash("0xpay")).
		Return(true, nil)
	s.asset.EXPECT().TransferAsset(gomock.Any(), source, s.dest, s.listing.ID).
		Return(purchase.AssetTransferResult{
			TransactionID: id.TxHash("0xnft"),
			Status:        purchase.StatusSealed,
			Verified:      true,
		}, nil)

	flow, err := s.orch.Run(context.Background(), s.request())
	s.Require().NoError(err)

	s.Equal(purchase.OutcomeSuccess, flow.Outcome)
	s.Len(flow.Steps, 7)
	for i, step := range flow.Steps {
		s.Equal(purchase.StatusCompleted, step.Status, "step %d should be completed", i)
	}
	s.Equal(id.TxHash("0xpay"), flow.PaymentTxHash)
	s.Equal(id.TxHash("0xnft"), flow.AssetTxHash)
	s.True(flow.AssetVerified)
}

// TestListenerSeesLoadingBeforeCompleted asserts the progressive-disclosure
// contract with the UI.
//
// Justification: each step must be announced as loading before it resolves,
// and announcements must follow pipeline order. A listener that saw a
// completed step it never saw load would render a broken progress dialog.
func (s *OrchestratorSuite) TestListenerSeesLoadingBeforeCompleted() {
	s.expectGateVerified()
	s.payment.EXPECT().TransferFunds(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.TxHash("0xpay"), nil)
	s.payment.EXPECT().CheckTransactionStatus(gomock.Any(), gomock.Any()).
		Return(true, nil)
	s.asset.EXPECT().TransferAsset(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(purchase.AssetTransferResult{TransactionID: "0xnft", Status: purchase.StatusSealed}, nil)

	var seen []purchase.Flow
	req := s.request()
	req.Listener = func(flow purchase.Flow) { seen = append(seen, flow) }

	_, err := s.orch.Run(context.Background(), req)
	s.Require().NoError(err)

	// Two snapshots per step: loading, then completed.
	s.Require().Len(seen, 14)
	for i := 0; i < 7; i++ {
		s.Equal(purchase.StatusLoading, seen[2*i].Steps[i].Status, "step %d loading snapshot", i)
		s.Equal(purchase.StatusCompleted, seen[2*i+1].Steps[i].Status, "step %d completed snapshot", i)
	}
}

// TestPaymentFailureHaltsPipeline fails the payment transfer and checks
// nothing past it runs.
//
// Justification: halt-on-failure is the pipeline's core safety property.
// After a failed payment the asset chain must never be touched, later steps
// must stay waiting, and the failed step must carry the error detail.
func (s *OrchestratorSuite) TestPaymentFailureHaltsPipeline() {
	s.expectGateVerified()
	s.payment.EXPECT().TransferFunds(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.TxHash(""), errors.New("insufficient funds"))

	flow, err := s.orch.Run(context.Background(), s.request())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))

	s.Equal(purchase.OutcomeFailed, flow.Outcome)
	s.Equal(purchase.StepTransferPayment, flow.CurrentStepIndex)
	s.Equal(purchase.StatusFailed, flow.Steps[purchase.StepTransferPayment].Status)
	s.Contains(flow.Steps[purchase.StepTransferPayment].Detail, "insufficient funds")
	for i := purchase.StepVerifyPayment; i < len(flow.Steps); i++ {
		s.Equal(purchase.StatusWaiting, flow.Steps[i].Status, "step %d should stay waiting", i)
	}
}

// TestUnconfirmedPaymentFailsVerifyStep treats a non-confirmed transaction
// as a verification failure even without a transport error.
func (s *OrchestratorSuite) TestUnconfirmedPaymentFailsVerifyStep() {
	s.expectGateVerified()
	s.payment.EXPECT().TransferFunds(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.TxHash("0xpay"), nil)
	s.payment.EXPECT().CheckTransactionStatus(gomock.Any(), id.TxHash("0xpay")).
		Return(false, nil)

	flow, err := s.orch.Run(context.Background(), s.request())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransferVerificationFailed))
	s.Equal(purchase.StepVerifyPayment, flow.CurrentStepIndex)
	s.Equal(purchase.OutcomeFailed, flow.Outcome)
}

// TestMissingDestinationFailsAssetStep runs without a destination address.
//
// Justification: the destination is only needed at the NFT step, so the
// payment legs complete first and the failure lands on the transfer-asset
// step rather than rejecting the whole request upfront.
func (s *OrchestratorSuite) TestMissingDestinationFailsAssetStep() {
	s.expectGateVerified()
	s.payment.EXPECT().TransferFunds(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.TxHash("0xpay"), nil)
	s.payment.EXPECT().CheckTransactionStatus(gomock.Any(), gomock.Any()).
		Return(true, nil)

	req := s.request()
	req.Destination = ""

	flow, err := s.orch.Run(context.Background(), req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.Equal(purchase.StepTransferAsset, flow.CurrentStepIndex)
	s.Equal(purchase.StatusFailed, flow.Steps[purchase.StepTransferAsset].Status)
	for i := 0; i < purchase.StepTransferAsset; i++ {
		s.Equal(purchase.StatusCompleted, flow.Steps[i].Status)
	}
}

// TestNonSealedStatusFailsTransfer treats any terminal status other than
// SEALED as a failed NFT transfer, while still recording the hash.
func (s *OrchestratorSuite) TestNonSealedStatusFailsTransfer() {
	s.expectGateVerified()
	s.payment.EXPECT().TransferFunds(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.TxHash("0xpay"), nil)
	s.payment.EXPECT().CheckTransactionStatus(gomock.Any(), gomock.Any()).
		Return(true, nil)
	s.asset.EXPECT().TransferAsset(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(purchase.AssetTransferResult{TransactionID: "0xnft", Status: "PENDING"}, nil)

	flow, err := s.orch.Run(context.Background(), s.request())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))
	s.Equal(purchase.StepTransferAsset, flow.CurrentStepIndex)
	s.Equal(id.TxHash("0xnft"), flow.AssetTxHash)
	s.False(flow.AssetVerified)
}

// TestUnverifiedBuyerOpensNoFlow checks the humanity gate is consulted
// before any step exists.
//
// Justification: an unverified buyer must be rejected without creating a
// flow or touching either chain. The mocks carry no expectations, so any
// collaborator call fails the test.
func (s *OrchestratorSuite) TestUnverifiedBuyerOpensNoFlow() {
	s.gate.EXPECT().VerifyCredential(gomock.Any()).Return(false, nil)

	flow, err := s.orch.Run(context.Background(), s.request())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingPrerequisite))
	s.Empty(flow.Steps)
}

// TestGateErrorMapsToMissingPrerequisite wraps gate transport errors into
// the same prerequisite code the caller already handles.
func (s *OrchestratorSuite) TestGateErrorMapsToMissingPrerequisite() {
	s.gate.EXPECT().VerifyCredential(gomock.Any()).Return(false, errors.New("backend down"))

	_, err := s.orch.Run(context.Background(), s.request())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingPrerequisite))
}

// TestPanicInStepIsAbsorbed panics inside the payment step and expects the
// run to end as an ordinary step failure.
//
// Justification: a panicking collaborator must not unwind past the driver.
// The current step fails, later steps stay waiting, and the caller gets an
// internal error instead of a crash.
func (s *OrchestratorSuite) TestPanicInStepIsAbsorbed() {
	s.expectGateVerified()
	s.payment.EXPECT().TransferFunds(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, id.WalletAddress, string) (id.TxHash, error) {
			panic("wallet provider exploded")
		})

	flow, err := s.orch.Run(context.Background(), s.request())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(purchase.OutcomeFailed, flow.Outcome)
	s.Equal(purchase.StepTransferPayment, flow.CurrentStepIndex)
	s.Contains(flow.Steps[purchase.StepTransferPayment].Detail, "step panicked")
}

// TestStepDelayHonorsContext cancels mid-pace and expects a prompt failure
// on the paced step rather than a full delay.
func (s *OrchestratorSuite) TestStepDelayHonorsContext() {
	cfg := config.PurchaseConfig{
		PaymentAmountEth:  "0.0001",
		PaymentRecipient:  testRecipient,
		SourceAssetWallet: testSourceAsset,
		StepDelay:         time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := purchase.NewOrchestrator(s.payment, s.asset, s.gate, cfg, purchase.WithLogger(logger))
	s.expectGateVerified()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	flow, err := orch.Run(ctx, s.request())
	s.Require().Error(err)
	s.Less(time.Since(start), 5*time.Second)
	s.Equal(purchase.OutcomeFailed, flow.Outcome)
	s.Equal(purchase.StepVerifyAgreement, flow.CurrentStepIndex)
}
