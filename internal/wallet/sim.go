package wallet

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"airspace/internal/platform/config"
	id "airspace/pkg/domain"
	dErrors "airspace/pkg/domain-errors"
)

// SimConnector simulates the wallet SSO handshake for demo runs and tests.
// It mints a signed session token carrying the expiry and fee ceiling the
// real connector would negotiate. Delay and Err script the handshake.
type SimConnector struct {
	Address id.WalletAddress
	// Delay paces the handshake; ctx cancellation wins over the delay.
	Delay time.Duration
	// Err, when set, fails every Connect with this error.
	Err error

	signingKey  []byte
	expiry      time.Duration
	feeLimitWei string
	now         func() time.Time
}

var _ Connector = (*SimConnector)(nil)

// sessionClaims is the session token payload.
type sessionClaims struct {
	jwt.RegisteredClaims
	FeeLimitWei string `json:"feeLimitWei"`
}

// NewSimConnector creates a simulated connector for the given address.
func NewSimConnector(cfg config.WalletConfig, address id.WalletAddress) *SimConnector {
	return &SimConnector{
		Address:     address,
		signingKey:  []byte(cfg.SessionSigningKey),
		expiry:      cfg.SessionExpiry,
		feeLimitWei: cfg.FeeLimitWei,
		now:         time.Now,
	}
}

// Connect performs the simulated handshake and mints a session token.
func (c *SimConnector) Connect(ctx context.Context) (Account, error) {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Account{}, ctx.Err()
		case <-timer.C:
		}
	}
	if c.Err != nil {
		return Account{}, c.Err
	}
	if c.Address.IsZero() {
		return Account{}, dErrors.New(dErrors.CodeConnectionFailed, "connector has no account configured")
	}

	now := c.now().UTC()
	expiresAt := now.Add(c.expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Address.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		FeeLimitWei: c.feeLimitWei,
	})
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return Account{}, dErrors.Wrap(err, dErrors.CodeConnectionFailed, "failed to mint session token")
	}

	return Account{
		Address:       c.Address,
		SessionToken:  signed,
		SessionExpiry: expiresAt,
	}, nil
}

// Disconnect is a no-op; the simulated session has no remote side.
func (c *SimConnector) Disconnect(context.Context) error { return nil }

// ParseSessionToken validates a session token and returns its subject
// address and expiry. Used by tests and the demo CLI to inspect sessions.
func ParseSessionToken(tokenString string, signingKey []byte) (id.WalletAddress, time.Time, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unexpected session token signing method")
		}
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid session token")
	}
	addr, err := id.ParseWalletAddress(claims.Subject)
	if err != nil {
		return "", time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return "", time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "session token has no expiry")
	}
	return addr, claims.ExpiresAt.Time, nil
}
