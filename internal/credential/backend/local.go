package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"airspace/internal/credential/models"
	id "airspace/pkg/domain"
)

const localBackendName = "local"

// Issuance defaults shared by both backends' request shaping.
const (
	DefaultValidityDays = 365
	DefaultProofType    = "DataIntegrityProof"
)

// Static identity of the simulated issuer.
const (
	localIssuerDID  = "did:ethr:0xmockissuer"
	localIssuerName = "AirSpace Mock Issuer"
)

// LocalBackend fabricates locally-plausible credentials when no issuer API
// key is configured. Credentials it issues are structurally complete but
// carry a placeholder proof; verification always reports valid because the
// local backend has no authority to reject. Callers must not treat its
// verdicts as authoritative.
type LocalBackend struct {
	logger *slog.Logger
	now    func() time.Time
}

// Ensure LocalBackend implements CredentialBackend
var _ CredentialBackend = (*LocalBackend)(nil)

// LocalOption configures the LocalBackend.
type LocalOption func(*LocalBackend)

// WithLocalLogger sets the logger.
func WithLocalLogger(logger *slog.Logger) LocalOption {
	return func(b *LocalBackend) {
		b.logger = logger
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) LocalOption {
	return func(b *LocalBackend) {
		b.now = now
	}
}

// NewLocalBackend creates a simulated credential backend.
func NewLocalBackend(opts ...LocalOption) *LocalBackend {
	b := &LocalBackend{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name identifies the backend for logs and metrics.
func (b *LocalBackend) Name() string { return localBackendName }

// IssueCredential fabricates a credential: fresh urn:uuid id, placeholder
// issuer and proof, claims embedded verbatim.
func (b *LocalBackend) IssueCredential(_ context.Context, req models.IssueCredentialRequest) (*models.IssueCredentialResponse, error) {
	now := b.now().UTC()
	validityDays := req.ValidityDays
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}
	proofType := req.ProofType
	if proofType == "" {
		proofType = DefaultProofType
	}

	claims := make(map[string]any, len(req.Claims))
	for k, v := range req.Claims {
		claims[k] = v
	}

	cred := models.VerifiableCredential{
		Context: []string{
			"https://www.w3.org/2018/credentials/v1",
			"https://www.w3.org/2018/credentials/examples/v1",
		},
		ID:         id.NewCredentialID().String(),
		Type:       []string{models.TypeVerifiableCredential, req.Type},
		Issuer:     localIssuerDID,
		ValidFrom:  now,
		ValidUntil: now.AddDate(0, 0, validityDays),
		CredentialSubject: models.CredentialSubject{
			ID:     req.SubjectDID.String(),
			Claims: claims,
		},
		CredentialStatus: models.CredentialStatus{
			Type:                "RevocationList2020Status",
			ChainID:             "11155111", // Sepolia testnet
			RevocationRegistry:  "0xmockrevocationregistry",
			DIDRegistryContract: "0xmockdidregistry",
		},
		Proof: models.Proof{
			Type:               proofType,
			Cryptosuite:        "eddsa-2022",
			Created:            now.Format(time.RFC3339),
			VerificationMethod: localIssuerDID + "#key-1",
			ProofPurpose:       "assertionMethod",
			ProofValue:         "mock-" + uuid.NewString(),
		},
	}

	b.logger.Info("issued simulated credential",
		"credential_id", cred.ID,
		"type", req.Type,
		"subject", req.SubjectDID.String())

	return &models.IssueCredentialResponse{
		Message:    "Credential issued successfully (simulated)",
		Credential: cred,
	}, nil
}

// VerifyCredential always reports valid. The local backend has no signing
// authority; the same-owner check belongs to the composition layer.
func (b *LocalBackend) VerifyCredential(_ context.Context, cred models.VerifiableCredential) (*models.VerifyCredentialResponse, error) {
	b.logger.Debug("simulated verification", "credential_id", cred.ID)
	return &models.VerifyCredentialResponse{
		IsValid: true,
		Message: "Credential is valid (simulated)",
		Details: &models.VerifyDetails{
			Expired:        false,
			Revoked:        false,
			SignatureValid: true,
		},
	}, nil
}

// ListCredentials returns an empty page; locally issued credentials are
// persisted by the caller, not by the backend.
func (b *LocalBackend) ListCredentials(_ context.Context, _ id.DID, page, pageSize int) (*models.ListCredentialsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return &models.ListCredentialsResponse{
		Credentials: []models.VerifiableCredential{},
		Total:       0,
		Page:        page,
		PageSize:    pageSize,
	}, nil
}

// RevokeCredential reports a simulated successful revocation.
func (b *LocalBackend) RevokeCredential(_ context.Context, credentialID id.CredentialID) (*models.RevokeCredentialResponse, error) {
	b.logger.Info("simulated revocation", "credential_id", credentialID.String())
	return &models.RevokeCredentialResponse{
		Status:          "success",
		Message:         "Credential revoked successfully (simulated)",
		TransactionHash: "0xmocktransactionhash",
	}, nil
}

// CredentialStatus reports every credential as active.
func (b *LocalBackend) CredentialStatus(_ context.Context, credentialID id.CredentialID) (*models.CredentialStatusResponse, error) {
	return &models.CredentialStatusResponse{
		ID:      credentialID.String(),
		Status:  "active",
		Revoked: false,
		Expired: false,
	}, nil
}

// IssuerInfo describes the simulated issuer.
func (b *LocalBackend) IssuerInfo(_ context.Context) (*models.IssuerInfoResponse, error) {
	return &models.IssuerInfoResponse{
		DID:               localIssuerDID,
		Name:              localIssuerName,
		Description:       "Simulated issuer for AirSpace development and testing",
		URL:               "https://airspace.example",
		CredentialsIssued: 0,
	}, nil
}

// Schemas serves the static schema catalog for the credential types this
// client issues.
func (b *LocalBackend) Schemas(_ context.Context) (*models.SchemaResponse, error) {
	return &models.SchemaResponse{
		Schemas: []models.Schema{
			{
				ID:          models.TypePropertyOwnership,
				Name:        "Property Ownership Credential",
				Description: "Verifies ownership of a property",
				Properties: map[string]any{
					"propertyAddress": map[string]any{"type": "string"},
					"currentHeight":   map[string]any{"type": "number"},
					"maximumHeight":   map[string]any{"type": "number"},
					"availableFloors": map[string]any{"type": "number"},
					"ownershipVerified": map[string]any{
						"type": "boolean",
					},
				},
				Required: []string{"propertyAddress", "ownershipVerified"},
			},
			{
				ID:          models.TypeAirRights,
				Name:        "Air Rights Credential",
				Description: "Verifies ownership of air rights for a property",
				Properties: map[string]any{
					"propertyAddress": map[string]any{"type": "string"},
					"currentHeight":   map[string]any{"type": "number"},
					"maximumHeight":   map[string]any{"type": "number"},
					"availableFloors": map[string]any{"type": "number"},
					"price":           map[string]any{"type": "number"},
					"airRightsVerified": map[string]any{
						"type": "boolean",
					},
				},
				Required: []string{"propertyAddress", "currentHeight", "maximumHeight", "airRightsVerified"},
			},
		},
	}, nil
}
