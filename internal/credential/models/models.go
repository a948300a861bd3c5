// Package models defines the verifiable credential data model and the
// issuer API request/response shapes shared by all credential backends.
package models

import (
	"encoding/json"
	"time"

	id "airspace/pkg/domain"
)

// Credential type tags. Every issued credential carries the base
// "VerifiableCredential" tag plus one of these.
const (
	TypeVerifiableCredential = "VerifiableCredential"
	TypeHumanityCredential   = "HumanityCredential"
	TypePropertyOwnership    = "PropertyOwnership"
	TypeAirRights            = "AirRights"
)

// Well-known claim keys inside CredentialSubject.
const (
	ClaimWalletAddress     = "walletAddress"
	ClaimIsHuman           = "isHuman"
	ClaimHumanityVerified  = "humanityVerified"
	ClaimOwnershipVerified = "ownershipVerified"
	ClaimAirRightsVerified = "airRightsVerified"
	ClaimVerifiedAt        = "verifiedAt"
)

// VerifiableCredential mirrors the issuer API wire shape. Proof and status
// blocks are carried opaquely; this client records them but never evaluates
// cryptographic material itself.
type VerifiableCredential struct {
	Context           []string          `json:"@context"`
	ID                string            `json:"id"`
	Type              []string          `json:"type"`
	Issuer            string            `json:"issuer"`
	ValidFrom         time.Time         `json:"validFrom"`
	ValidUntil        time.Time         `json:"validUntil"`
	CredentialSubject CredentialSubject `json:"credentialSubject"`
	CredentialStatus  CredentialStatus  `json:"credentialStatus"`
	Proof             Proof             `json:"proof"`
}

// CredentialSubject carries the subject DID plus arbitrary claims. On the
// wire the claims sit flat beside "id", so marshaling is custom.
type CredentialSubject struct {
	ID     string
	Claims map[string]any
}

// MarshalJSON flattens claims into the same object as the subject id.
func (s CredentialSubject) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Claims)+1)
	for k, v := range s.Claims {
		out[k] = v
	}
	out["id"] = s.ID
	return json.Marshal(out)
}

// UnmarshalJSON splits the subject id from the surrounding claims.
func (s *CredentialSubject) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["id"].(string); ok {
		s.ID = v
	}
	delete(raw, "id")
	s.Claims = raw
	return nil
}

// CredentialStatus points at the revocation machinery on chain.
type CredentialStatus struct {
	Type                string `json:"type"`
	ChainID             string `json:"chain_id"`
	RevocationRegistry  string `json:"revocation_registry_contract_address"`
	DIDRegistryContract string `json:"did_registry_contract_address"`
}

// Proof is the issuer's signature block, treated as opaque.
type Proof struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

// HasType reports whether the credential carries the given type tag.
func (c *VerifiableCredential) HasType(t string) bool {
	for _, ct := range c.Type {
		if ct == t {
			return true
		}
	}
	return false
}

// BoolClaim reads a boolean claim, false when absent or not a bool.
func (s CredentialSubject) BoolClaim(key string) bool {
	v, ok := s.Claims[key].(bool)
	return ok && v
}

// StringClaim reads a string claim, empty when absent or not a string.
func (s CredentialSubject) StringClaim(key string) string {
	v, _ := s.Claims[key].(string)
	return v
}

// IssueCredentialRequest is the issuance request body.
type IssueCredentialRequest struct {
	SubjectDID   id.DID         `json:"subjectDid"`
	Type         string         `json:"type"`
	Claims       map[string]any `json:"claims"`
	ValidityDays int            `json:"validityDays,omitempty"`
	Revocable    *bool          `json:"revocable,omitempty"`
	ProofType    string         `json:"proofType,omitempty"`
}

// IssueCredentialResponse wraps an issued credential with the server message.
type IssueCredentialResponse struct {
	Message    string               `json:"message"`
	Credential VerifiableCredential `json:"credential"`
}

// VerifyCredentialResponse reports a verification verdict.
type VerifyCredentialResponse struct {
	IsValid bool           `json:"isValid"`
	Message string         `json:"message"`
	Details *VerifyDetails `json:"details,omitempty"`
}

// VerifyDetails itemizes the checks behind a verdict.
type VerifyDetails struct {
	Expired        bool `json:"expired"`
	Revoked        bool `json:"revoked"`
	SignatureValid bool `json:"signatureValid"`
}

// ListCredentialsResponse is one page of a holder's credentials.
type ListCredentialsResponse struct {
	Credentials []VerifiableCredential `json:"credentials"`
	Total       int                    `json:"total"`
	Page        int                    `json:"page"`
	PageSize    int                    `json:"pageSize"`
}

// CredentialStatusResponse reports lifecycle status for one credential.
type CredentialStatusResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Revoked bool   `json:"revoked"`
	Expired bool   `json:"expired"`
}

// RevokeCredentialResponse reports the result of a revocation request.
type RevokeCredentialResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// IssuerInfoResponse describes the issuing authority.
type IssuerInfoResponse struct {
	DID               string `json:"did"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	URL               string `json:"url"`
	CredentialsIssued int    `json:"credentialsIssued"`
}

// Schema describes one credential type the issuer can attest.
type Schema struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Properties  map[string]any `json:"properties"`
	Required    []string       `json:"required"`
}

// SchemaResponse lists available credential schemas.
type SchemaResponse struct {
	Schemas []Schema `json:"schemas"`
}
