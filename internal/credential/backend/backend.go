// Package backend defines the credential backend strategy and its two
// implementations: a remote HTTP client for the issuer API and a local
// simulated backend used when no API key is configured.
package backend

import (
	"context"

	"airspace/internal/credential/models"
	id "airspace/pkg/domain"
)

// CredentialBackend is the strategy interface for credential operations.
// A backend is selected once at construction and never switched per call;
// fallback between backends is a composition-layer decision.
type CredentialBackend interface {
	// Name identifies the backend ("remote" or "local") for logs and metrics.
	Name() string

	// IssueCredential issues a credential for the given subject.
	IssueCredential(ctx context.Context, req models.IssueCredentialRequest) (*models.IssueCredentialResponse, error)

	// VerifyCredential checks validity of a previously issued credential.
	VerifyCredential(ctx context.Context, cred models.VerifiableCredential) (*models.VerifyCredentialResponse, error)

	// ListCredentials returns one page of the holder's credentials.
	ListCredentials(ctx context.Context, holder id.DID, page, pageSize int) (*models.ListCredentialsResponse, error)

	// RevokeCredential revokes a credential by its ID.
	RevokeCredential(ctx context.Context, credentialID id.CredentialID) (*models.RevokeCredentialResponse, error)

	// CredentialStatus reports the lifecycle status of a credential.
	CredentialStatus(ctx context.Context, credentialID id.CredentialID) (*models.CredentialStatusResponse, error)

	// IssuerInfo describes the issuing authority.
	IssuerInfo(ctx context.Context) (*models.IssuerInfoResponse, error)

	// Schemas lists the credential schemas the issuer can attest.
	Schemas(ctx context.Context) (*models.SchemaResponse, error)
}
