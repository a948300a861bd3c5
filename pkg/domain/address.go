package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "airspace/pkg/domain-errors"
)

// WalletAddress is a payment-chain account address, stored lowercase.
// Lowercasing at parse time makes the address usable as a stable join key
// between wallet identity and credential subject.
type WalletAddress string

// ParseWalletAddress validates a 20-byte hex account address and normalizes
// it to lowercase.
func ParseWalletAddress(value string) (WalletAddress, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address is required")
	}
	if !strings.HasPrefix(v, "0x") {
		v = "0x" + v
	}
	if len(v) != 42 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address must be 20 bytes of hex")
	}
	if _, err := hex.DecodeString(v[2:]); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address must be hex encoded")
	}
	return WalletAddress(strings.ToLower(v)), nil
}

// String returns the lowercase address.
func (a WalletAddress) String() string { return string(a) }

// IsZero reports whether the address is unset.
func (a WalletAddress) IsZero() bool { return a == "" }

// DID returns the decentralized identifier form of the address.
// Deterministic and case-normalizing: equal addresses in any casing map to
// the same DID.
func (a WalletAddress) DID() DID {
	return DID("did:ethr:" + string(a))
}

// Checksum renders the address with its EIP-55 mixed-case checksum for
// display. The lowercase form remains the canonical storage/comparison form.
func (a WalletAddress) Checksum() string {
	if a.IsZero() {
		return ""
	}
	body := strings.TrimPrefix(string(a), "0x")
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(body))
	sum := hash.Sum(nil)

	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 'a' && c <= 'f' {
			// Nibble i of the hash decides the case of hex letter i.
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// Short returns the abbreviated 0xabcd...ef12 display form.
func (a WalletAddress) Short() string {
	s := string(a)
	if len(s) < 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

// AssetAddress is an asset-chain (NFT side) account address. The asset chain
// uses 8-byte addresses; only shape is validated, ownership is not.
type AssetAddress string

// ParseAssetAddress validates an 8-byte hex asset-chain address.
func ParseAssetAddress(value string) (AssetAddress, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "asset-chain address is required")
	}
	if !strings.HasPrefix(v, "0x") {
		v = "0x" + v
	}
	if len(v) != 18 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "asset-chain address must be 8 bytes of hex")
	}
	if _, err := hex.DecodeString(v[2:]); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "asset-chain address must be hex encoded")
	}
	return AssetAddress(strings.ToLower(v)), nil
}

// String returns the lowercase address.
func (a AssetAddress) String() string { return string(a) }

// IsZero reports whether the address is unset.
func (a AssetAddress) IsZero() bool { return a == "" }

// DID is a decentralized identifier addressing a credential subject or
// issuer independent of a specific chain account format.
type DID string

// ParseDID validates the did:<method>:<id> shape.
func ParseDID(value string) (DID, error) {
	v := strings.TrimSpace(value)
	parts := strings.SplitN(v, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "DID must have did:<method>:<id> form")
	}
	return DID(v), nil
}

// String returns the DID as a string.
func (d DID) String() string { return string(d) }
