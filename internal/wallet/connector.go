// Package wallet defines the external wallet connector port and a simulated
// connector for development and tests. Session lifecycle on top of a
// connector lives in the session subpackage.
package wallet

import (
	"context"
	"time"

	id "airspace/pkg/domain"
)

// Account is the result of a successful wallet handshake. The session token
// carries the connector's expiry and fee ceiling; this client stores it as a
// session artifact and never interprets it beyond expiry display.
type Account struct {
	Address       id.WalletAddress
	SessionToken  string
	SessionExpiry time.Time
}

// Connector is the external wallet/session collaborator. Implementations
// wrap an SSO or smart-account SDK; Connect blocks until the user approves,
// rejects, or ctx is done.
type Connector interface {
	Connect(ctx context.Context) (Account, error)
	Disconnect(ctx context.Context) error
}
