// Package credential exposes the credential service: issuance and
// verification of humanity, property-ownership and air-rights credentials
// through a backend selected once at startup.
package credential

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"airspace/internal/credential/backend"
	"airspace/internal/credential/metrics"
	"airspace/internal/credential/models"
	"airspace/internal/platform/config"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
)

// Service wraps a credential backend with typed convenience operations.
// The backend is fixed at construction; callers that want remote-then-local
// fallback compose two services.
type Service struct {
	backend backend.CredentialBackend
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a credential service on an explicit backend.
func NewService(b backend.CredentialBackend, opts ...Option) *Service {
	s := &Service{
		backend: b,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select builds a service on the backend the configuration calls for:
// remote when an API key is present, the local simulated backend otherwise.
func Select(cfg config.IssuerConfig, opts ...Option) *Service {
	var b backend.CredentialBackend
	if cfg.APIKey != "" {
		b = backend.NewRemoteBackend(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	} else {
		b = backend.NewLocalBackend()
	}
	s := NewService(b, opts...)
	if s.Fallback() {
		s.logger.Warn("credential service running in fallback mode, no issuer API key configured")
	} else {
		s.logger.Info("credential service using remote issuer", "base_url", cfg.BaseURL)
	}
	return s
}

// Backend returns the underlying backend.
func (s *Service) Backend() backend.CredentialBackend { return s.backend }

// Fallback reports whether the service runs on the local simulated backend.
func (s *Service) Fallback() bool { return s.backend.Name() == "local" }

// Coordinates locates a property for credential claims.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PropertyDetails are the claims backing a property-ownership credential.
type PropertyDetails struct {
	PropertyAddress string
	CurrentHeight   float64
	MaximumHeight   float64
	AvailableFloors int
	Coordinates     *Coordinates
}

// AirRightsDetails are the claims backing an air-rights credential.
type AirRightsDetails struct {
	PropertyDetails
	Price float64
}

func (d PropertyDetails) claims() map[string]any {
	claims := map[string]any{
		"propertyAddress": d.PropertyAddress,
		"currentHeight":   d.CurrentHeight,
		"maximumHeight":   d.MaximumHeight,
		"availableFloors": d.AvailableFloors,
	}
	if d.Coordinates != nil {
		claims["coordinates"] = map[string]any{
			"latitude":  d.Coordinates.Latitude,
			"longitude": d.Coordinates.Longitude,
		}
	}
	return claims
}

// CreateHumanCredential issues a humanity credential for the wallet address.
func (s *Service) CreateHumanCredential(ctx context.Context, addr id.WalletAddress) (*models.VerifiableCredential, error) {
	return s.issue(ctx, addr, models.TypeHumanityCredential, map[string]any{
		models.ClaimWalletAddress:    addr.String(),
		models.ClaimIsHuman:          true,
		models.ClaimHumanityVerified: true,
		models.ClaimVerifiedAt:       s.now().UTC().Format(time.RFC3339),
	})
}

// CreatePropertyOwnership issues a property-ownership credential.
func (s *Service) CreatePropertyOwnership(ctx context.Context, addr id.WalletAddress, details PropertyDetails) (*models.VerifiableCredential, error) {
	claims := details.claims()
	claims[models.ClaimVerifiedAt] = s.now().UTC().Format(time.RFC3339)
	claims[models.ClaimOwnershipVerified] = true
	return s.issue(ctx, addr, models.TypePropertyOwnership, claims)
}

// CreateAirRights issues an air-rights credential.
func (s *Service) CreateAirRights(ctx context.Context, addr id.WalletAddress, details AirRightsDetails) (*models.VerifiableCredential, error) {
	claims := details.claims()
	claims["price"] = details.Price
	claims[models.ClaimVerifiedAt] = s.now().UTC().Format(time.RFC3339)
	claims[models.ClaimAirRightsVerified] = true
	return s.issue(ctx, addr, models.TypeAirRights, claims)
}

func (s *Service) issue(ctx context.Context, addr id.WalletAddress, credType string, claims map[string]any) (*models.VerifiableCredential, error) {
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "wallet address is required")
	}

	// Issuance defaults are applied client-side, for the local backend and
	// the remote API alike.
	revocable := true
	start := s.now()
	resp, err := s.backend.IssueCredential(ctx, models.IssueCredentialRequest{
		SubjectDID:   addr.DID(),
		Type:         credType,
		Claims:       claims,
		ValidityDays: backend.DefaultValidityDays,
		Revocable:    &revocable,
		ProofType:    backend.DefaultProofType,
	})
	s.metrics.ObserveBackendDuration("issue", time.Since(start).Seconds())
	s.metrics.RecordOperation(s.backend.Name(), "issue", err)
	if err != nil {
		s.logger.Error("credential issuance failed",
			"backend", s.backend.Name(),
			"type", credType,
			"wallet", addr.Short(),
			"error", err)
		return nil, mapBackendError(err, "credential issuance failed")
	}

	s.logger.Info("credential issued",
		"backend", s.backend.Name(),
		"type", credType,
		"credential_id", resp.Credential.ID,
		"wallet", addr.Short())
	return &resp.Credential, nil
}

// VerifyCredential checks one credential with the backend.
func (s *Service) VerifyCredential(ctx context.Context, cred models.VerifiableCredential) (*models.VerifyCredentialResponse, error) {
	start := s.now()
	resp, err := s.backend.VerifyCredential(ctx, cred)
	s.metrics.ObserveBackendDuration("verify", time.Since(start).Seconds())
	s.metrics.RecordOperation(s.backend.Name(), "verify", err)
	if err != nil {
		return nil, mapBackendError(err, "credential verification failed")
	}
	return resp, nil
}

// VerifyHumanCredential reports whether the address holds a valid humanity
// credential: list the holder's credentials, pick the first one carrying a
// humanity claim, then verify it with the backend.
func (s *Service) VerifyHumanCredential(ctx context.Context, addr id.WalletAddress) (bool, error) {
	cred, err := s.findByClaim(ctx, addr, models.TypeHumanityCredential, models.ClaimIsHuman, models.ClaimHumanityVerified)
	if err != nil {
		return false, err
	}
	if cred == nil {
		return false, nil
	}
	resp, err := s.VerifyCredential(ctx, *cred)
	if err != nil {
		return false, err
	}
	return resp.IsValid, nil
}

// VerifyPropertyOwnership reports whether the address holds a valid
// property-ownership credential.
func (s *Service) VerifyPropertyOwnership(ctx context.Context, addr id.WalletAddress) (bool, error) {
	cred, err := s.findByClaim(ctx, addr, models.TypePropertyOwnership, models.ClaimOwnershipVerified)
	if err != nil {
		return false, err
	}
	if cred == nil {
		return false, nil
	}
	resp, err := s.VerifyCredential(ctx, *cred)
	if err != nil {
		return false, err
	}
	return resp.IsValid, nil
}

// FindHumanCredential returns the holder's first humanity credential, nil
// when none exists.
func (s *Service) FindHumanCredential(ctx context.Context, addr id.WalletAddress) (*models.VerifiableCredential, error) {
	return s.findByClaim(ctx, addr, models.TypeHumanityCredential, models.ClaimIsHuman, models.ClaimHumanityVerified)
}

// findByClaim returns the holder's first credential of the given type with
// any of the given boolean claims set, nil when none match.
func (s *Service) findByClaim(ctx context.Context, addr id.WalletAddress, credType string, claimKeys ...string) (*models.VerifiableCredential, error) {
	page, err := s.ListCredentials(ctx, addr, 1, 10)
	if err != nil {
		return nil, err
	}
	for i := range page.Credentials {
		cred := &page.Credentials[i]
		if !cred.HasType(credType) {
			continue
		}
		for _, key := range claimKeys {
			if cred.CredentialSubject.BoolClaim(key) {
				return cred, nil
			}
		}
	}
	return nil, nil
}

// ListCredentials returns one page of the holder's credentials.
func (s *Service) ListCredentials(ctx context.Context, addr id.WalletAddress, page, pageSize int) (*models.ListCredentialsResponse, error) {
	start := s.now()
	resp, err := s.backend.ListCredentials(ctx, addr.DID(), page, pageSize)
	s.metrics.ObserveBackendDuration("list", time.Since(start).Seconds())
	s.metrics.RecordOperation(s.backend.Name(), "list", err)
	if err != nil {
		return nil, mapBackendError(err, "credential listing failed")
	}
	return resp, nil
}

// RevokeCredential revokes a credential by ID.
func (s *Service) RevokeCredential(ctx context.Context, credentialID id.CredentialID) (*models.RevokeCredentialResponse, error) {
	resp, err := s.backend.RevokeCredential(ctx, credentialID)
	s.metrics.RecordOperation(s.backend.Name(), "revoke", err)
	if err != nil {
		return nil, mapBackendError(err, "credential revocation failed")
	}
	s.logger.Info("credential revoked", "credential_id", credentialID.String(), "backend", s.backend.Name())
	return resp, nil
}

// CredentialStatus reports lifecycle status for one credential.
func (s *Service) CredentialStatus(ctx context.Context, credentialID id.CredentialID) (*models.CredentialStatusResponse, error) {
	resp, err := s.backend.CredentialStatus(ctx, credentialID)
	s.metrics.RecordOperation(s.backend.Name(), "status", err)
	if err != nil {
		return nil, mapBackendError(err, "credential status lookup failed")
	}
	return resp, nil
}

// IssuerInfo describes the issuing authority.
func (s *Service) IssuerInfo(ctx context.Context) (*models.IssuerInfoResponse, error) {
	resp, err := s.backend.IssuerInfo(ctx)
	if err != nil {
		return nil, mapBackendError(err, "issuer info lookup failed")
	}
	return resp, nil
}

// Schemas lists available credential schemas.
func (s *Service) Schemas(ctx context.Context) (*models.SchemaResponse, error) {
	resp, err := s.backend.Schemas(ctx)
	if err != nil {
		return nil, mapBackendError(err, "schema listing failed")
	}
	return resp, nil
}

// mapBackendError translates categorized backend errors into domain codes.
// The server-provided message is preserved so the user sees the issuer's
// explanation, not a generic one.
func mapBackendError(err error, fallbackMsg string) error {
	msg := fallbackMsg
	var be *backend.BackendError
	if errors.As(err, &be) && be.Message != "" {
		msg = be.Message
	}
	switch backend.GetCategory(err) {
	case backend.ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	case backend.ErrorNotFound:
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case backend.ErrorBadData:
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeRemoteAPI, msg)
	}
}
