package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"airspace/internal/listing"
	"airspace/internal/platform/config"
	"airspace/internal/purchase/metrics"
	"airspace/internal/purchase/tracer"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
	audit "airspace/pkg/platform/audit"
	"airspace/pkg/platform/audit/publisher"
)

// Listener observes flow progress; it receives a snapshot after every
// status change. The UI uses this for progressive disclosure.
type Listener func(flow Flow)

// Request describes one purchase run.
type Request struct {
	// Buyer is the connected payment-chain wallet, used for audit trail.
	Buyer id.WalletAddress
	// Destination receives the NFT on the asset chain.
	Destination id.AssetAddress
	// Listing is the parcel being bought.
	Listing listing.Listing
	// Listener is optional.
	Listener Listener
}

// Orchestrator drives the seven-step pipeline: strict sequence, no
// automatic retries, halt on first failure. Errors and panics inside a
// step are absorbed into that step's failed state.
type Orchestrator struct {
	payment PaymentClient
	asset   AssetClient
	gate    Gatekeeper
	cfg     config.PurchaseConfig

	logger  *slog.Logger
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	auditor publisher.Publisher
	now     func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithTracer sets the tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithAuditor sets the audit event publisher.
func WithAuditor(p publisher.Publisher) Option {
	return func(o *Orchestrator) { o.auditor = p }
}

// NewOrchestrator creates a purchase orchestrator.
func NewOrchestrator(payment PaymentClient, asset AssetClient, gate Gatekeeper, cfg config.PurchaseConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		payment: payment,
		asset:   asset,
		gate:    gate,
		cfg:     cfg,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// stepFunc executes one step against the flow.
type stepFunc func(ctx context.Context, req *Request, flow *Flow) error

// stepTable binds each step index to its action. The driver loop below is
// the only place step ordering and halt-on-failure live.
func (o *Orchestrator) stepTable() [stepCount]stepFunc {
	return [stepCount]stepFunc{
		StepVerifyAgreement:      o.pace,
		StepConnectPaymentWallet: o.pace,
		StepTransferPayment:      o.transferPayment,
		StepVerifyPayment:        o.verifyPayment,
		StepConnectAssetWallet:   o.pace,
		StepTransferAsset:        o.transferAsset,
		StepVerifyAssetTransfer:  o.verifyAssetTransfer,
	}
}

// Run executes the pipeline once. The humanity gate is consulted before
// any step starts; an unverified buyer never opens a flow.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Flow, error) {
	verified, err := o.gate.VerifyCredential(ctx)
	if err != nil {
		return Flow{}, dErrors.Wrap(err, dErrors.CodeMissingPrerequisite, "humanity verification failed: "+err.Error())
	}
	if !verified {
		return Flow{}, dErrors.New(dErrors.CodeMissingPrerequisite, "humanity credential is not verified")
	}

	recipient, err := id.ParseWalletAddress(o.cfg.PaymentRecipient)
	if err != nil {
		return Flow{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "payment recipient is misconfigured")
	}
	source, err := id.ParseAssetAddress(o.cfg.SourceAssetWallet)
	if err != nil {
		return Flow{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "source asset wallet is misconfigured")
	}

	flow := newFlow(o.cfg.PaymentAmountEth, recipient, source)
	start := o.now()

	ctx, span := o.tracer.Start(ctx, tracer.SpanPurchaseRun,
		tracer.String(tracer.AttrFlowID, flow.ID.String()),
		tracer.String(tracer.AttrListingID, req.Listing.ID.String()))

	o.logger.Info("purchase flow started",
		"flow_id", flow.ID.String(),
		"listing_id", req.Listing.ID.String(),
		"buyer", req.Buyer.Short())
	o.emitAudit(ctx, audit.Event{
		Wallet:  req.Buyer,
		Subject: flow.ID.String(),
		Action:  audit.ActionPurchaseStarted,
		Reason:  req.Listing.ID.String(),
	})

	table := o.stepTable()
	var runErr error
	for i := range table {
		flow.CurrentStepIndex = i
		o.setStatus(flow, &req, i, StatusLoading, "")

		stepErr := o.runStep(ctx, table[i], &req, flow, i)
		if stepErr != nil {
			o.setStatus(flow, &req, i, StatusFailed, stepErr.Error())
			flow.Outcome = OutcomeFailed
			o.metrics.RecordStepFailure(stepNames[i])
			o.logger.Error("purchase step failed",
				"flow_id", flow.ID.String(),
				"step", stepNames[i],
				"error", stepErr)
			runErr = stepErr
			break
		}
		o.setStatus(flow, &req, i, StatusCompleted, "")
	}
	if runErr == nil {
		flow.Outcome = OutcomeSuccess
	}

	elapsed := time.Since(start).Seconds()
	o.metrics.RecordRun(string(flow.Outcome), elapsed)
	span.SetAttributes(
		tracer.String(tracer.AttrOutcome, string(flow.Outcome)),
		tracer.Duration("duration", time.Since(start)),
	)
	if flow.PaymentTxHash != "" {
		span.SetAttributes(tracer.String(tracer.AttrTxHash, flow.PaymentTxHash.String()))
	}
	span.End(runErr)

	if flow.Outcome == OutcomeSuccess {
		o.logger.Info("purchase flow completed", "flow_id", flow.ID.String(), "duration_s", elapsed)
		o.emitAudit(ctx, audit.Event{
			Wallet:   req.Buyer,
			Subject:  flow.ID.String(),
			Action:   audit.ActionPurchaseCompleted,
			Decision: string(OutcomeSuccess),
		})
	} else {
		o.emitAudit(ctx, audit.Event{
			Wallet:   req.Buyer,
			Subject:  flow.ID.String(),
			Action:   audit.ActionPurchaseFailed,
			Decision: string(OutcomeFailed),
			Reason:   stepNames[flow.CurrentStepIndex],
		})
	}
	return flow.snapshot(), runErr
}

// runStep executes one step inside a span, absorbing panics into errors so
// the driver can mark the current step failed instead of unwinding.
func (o *Orchestrator) runStep(ctx context.Context, fn stepFunc, req *Request, flow *Flow, index int) (err error) {
	ctx, span := o.tracer.Start(ctx, tracer.SpanPurchaseStep,
		tracer.Int64(tracer.AttrStepIndex, int64(index)),
		tracer.String(tracer.AttrStepName, stepNames[index]))
	defer func() {
		if r := recover(); r != nil {
			err = dErrors.New(dErrors.CodeInternal, fmt.Sprintf("step panicked: %v", r))
		}
		if err != nil {
			span.AddEvent(tracer.EventStepFailed, tracer.String(tracer.AttrStepName, stepNames[index]))
		} else {
			span.AddEvent(tracer.EventStepCompleted, tracer.String(tracer.AttrStepName, stepNames[index]))
		}
		span.End(err)
	}()
	return fn(ctx, req, flow)
}

// setStatus mutates one step and publishes a snapshot to the listener.
func (o *Orchestrator) setStatus(flow *Flow, req *Request, index int, status StepStatus, detail string) {
	flow.Steps[index].Status = status
	if detail != "" {
		flow.Steps[index].Detail = detail
	}
	if req.Listener != nil {
		req.Listener(flow.snapshot())
	}
}

// pace is the synthetic delay behind the always-succeeding steps.
func (o *Orchestrator) pace(ctx context.Context, _ *Request, _ *Flow) error {
	if o.cfg.StepDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(o.cfg.StepDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator) transferPayment(ctx context.Context, req *Request, flow *Flow) error {
	recipient, err := id.ParseWalletAddress(o.cfg.PaymentRecipient)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "payment recipient is misconfigured")
	}

	hash, err := o.payment.TransferFunds(ctx, recipient, o.cfg.PaymentAmountEth)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransferFailed, "failed to transfer payment: "+err.Error())
	}

	flow.PaymentTxHash = hash
	flow.Steps[StepTransferPayment].TxHash = hash
	return nil
}

func (o *Orchestrator) verifyPayment(ctx context.Context, _ *Request, flow *Flow) error {
	confirmed, err := o.payment.CheckTransactionStatus(ctx, flow.PaymentTxHash)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransferVerificationFailed, "failed to verify payment transfer: "+err.Error())
	}
	if !confirmed {
		return dErrors.New(dErrors.CodeTransferVerificationFailed, "payment transfer did not confirm")
	}
	return nil
}

func (o *Orchestrator) transferAsset(ctx context.Context, req *Request, flow *Flow) error {
	if req.Destination.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "destination asset address is required")
	}
	if req.Listing.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "listing has no asset id")
	}
	source, err := id.ParseAssetAddress(o.cfg.SourceAssetWallet)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "source asset wallet is misconfigured")
	}

	result, err := o.asset.TransferAsset(ctx, source, req.Destination, req.Listing.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransferFailed, "failed to transfer NFT: "+err.Error())
	}

	flow.AssetTxHash = result.TransactionID
	flow.Steps[StepTransferAsset].TxHash = result.TransactionID
	if result.Status != StatusSealed {
		return dErrors.New(dErrors.CodeTransferFailed,
			fmt.Sprintf("NFT transfer ended in status %q, expected %q", result.Status, StatusSealed))
	}
	flow.AssetVerified = result.Verified
	return nil
}

func (o *Orchestrator) verifyAssetTransfer(ctx context.Context, req *Request, flow *Flow) error {
	return o.pace(ctx, req, flow)
}

func (o *Orchestrator) emitAudit(ctx context.Context, event audit.Event) {
	if o.auditor == nil {
		return
	}
	if err := o.auditor.Emit(ctx, event); err != nil {
		o.logger.Warn("audit emit failed", "action", string(event.Action), "error", err)
	}
}
