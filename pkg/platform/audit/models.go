// Package audit captures the client-side audit trail for identity and
// purchase lifecycle actions. Events are transport-agnostic so sinks
// (Kafka, memory) can fan out without touching domain code.
package audit

import (
	"time"

	id "airspace/pkg/domain"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp time.Time
	Wallet    id.WalletAddress
	Subject   string // credential ID, tx hash, or flow ID the action concerns
	Action    Action
	Decision  string
	Reason    string
	Mode      string // "live" or "fallback" for credential actions
}

// Action enumerates the audited lifecycle actions.
type Action string

const (
	ActionWalletConnected    Action = "wallet_connected"
	ActionWalletDisconnected Action = "wallet_disconnected"
	ActionCredentialIssued   Action = "credential_issued"
	ActionCredentialVerified Action = "credential_verified"
	ActionCredentialRevoked  Action = "credential_revoked"
	ActionPurchaseStarted    Action = "purchase_started"
	ActionPurchaseCompleted  Action = "purchase_completed"
	ActionPurchaseFailed     Action = "purchase_failed"
)
