// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "airspace/pkg/domain-errors"
)

// CredentialID is the URN identifier for issued credentials (e.g., "urn:uuid:xxxx").
type CredentialID string

const credentialIDPrefix = "urn:uuid:"

// NewCredentialID generates a new credential ID in URN form.
func NewCredentialID() CredentialID {
	return CredentialID(credentialIDPrefix + uuid.NewString())
}

// ParseCredentialID validates and parses a credential ID string.
// Remote issuers control their own ID shapes, so only the prefix is enforced.
func ParseCredentialID(value string) (CredentialID, error) {
	if strings.TrimSpace(value) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential ID is required")
	}
	if !strings.HasPrefix(value, credentialIDPrefix) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential ID must start with urn:uuid:")
	}
	return CredentialID(value), nil
}

// String returns the credential ID as a string.
func (id CredentialID) String() string { return string(id) }

// FlowID identifies a single purchase pipeline run. Never persisted.
type FlowID uuid.UUID

// NewFlowID generates a new purchase flow ID.
func NewFlowID() FlowID { return FlowID(uuid.New()) }

// String returns the flow ID as a string.
func (id FlowID) String() string { return uuid.UUID(id).String() }

// TxHash is an opaque chain transaction identifier. It is recorded and
// displayed, never interpreted.
type TxHash string

// String returns the transaction hash as a string.
func (h TxHash) String() string { return string(h) }

// AssetID identifies an NFT on the asset chain.
type AssetID string

// ParseAssetID validates an asset identifier.
func ParseAssetID(value string) (AssetID, error) {
	if strings.TrimSpace(value) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "asset ID is required")
	}
	return AssetID(value), nil
}

// String returns the asset ID as a string.
func (id AssetID) String() string { return string(id) }
