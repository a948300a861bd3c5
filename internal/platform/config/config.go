package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration for the AirSpace client.
type Config struct {
	// OpsAddr is the listen address for the operational endpoint
	// (health + metrics). Empty disables it.
	OpsAddr string

	Issuer   IssuerConfig
	Wallet   WalletConfig
	Purchase PurchaseConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// IssuerConfig configures the remote credential issuer API client.
// An empty APIKey selects the local simulated backend.
type IssuerConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// WalletConfig configures the wallet session manager.
type WalletConfig struct {
	ConnectTimeout time.Duration
	SessionExpiry  time.Duration
	// FeeLimitWei is the session fee ceiling, kept as a decimal string the
	// way the connector expects it.
	FeeLimitWei string
	// SessionSigningKey signs simulated session tokens in local development.
	SessionSigningKey string
}

// PurchaseConfig configures the fixed purchase pipeline parameters.
type PurchaseConfig struct {
	// PaymentAmountEth is the fixed payment transferred in step 3.
	PaymentAmountEth string
	// PaymentRecipient is the fixed payment destination address.
	PaymentRecipient string
	// SourceAssetWallet is the asset-chain wallet NFTs are transferred from.
	SourceAssetWallet string
	// StepDelay paces the synthetic steps for progressive disclosure.
	StepDelay time.Duration
}

// RedisConfig configures the optional Redis key-value cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional Postgres key-value cache.
type PostgresConfig struct {
	URL string
}

// KafkaConfig configures the optional audit event publisher.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		OpsAddr: getEnv("AIRSPACE_OPS_ADDR", ""),
		Issuer: IssuerConfig{
			BaseURL: getEnv("AIRSPACE_ISSUER_URL", "https://issuer.humanity.example/api/v1"),
			APIKey:  os.Getenv("AIRSPACE_ISSUER_API_KEY"),
			Timeout: getDuration("AIRSPACE_ISSUER_TIMEOUT", 10*time.Second),
		},
		Wallet: WalletConfig{
			ConnectTimeout:    getDuration("AIRSPACE_CONNECT_TIMEOUT", 60*time.Second),
			SessionExpiry:     getDuration("AIRSPACE_SESSION_EXPIRY", 24*time.Hour),
			FeeLimitWei:       getEnv("AIRSPACE_SESSION_FEE_LIMIT_WEI", "100000000000000000"), // 0.1 ETH
			SessionSigningKey: getEnv("AIRSPACE_SESSION_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Purchase: PurchaseConfig{
			PaymentAmountEth:  getEnv("AIRSPACE_PAYMENT_AMOUNT_ETH", "0.0001"),
			PaymentRecipient:  getEnv("AIRSPACE_PAYMENT_RECIPIENT", "0x7f68c1d6b1c4a9e7fdbd73ccf154f0c94b7e2f38"),
			SourceAssetWallet: getEnv("AIRSPACE_SOURCE_ASSET_WALLET", "0x4f2f8523482a3e79"),
			StepDelay:         getDuration("AIRSPACE_STEP_DELAY", time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("AIRSPACE_REDIS_URL"),
			PoolSize:     getInt("AIRSPACE_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("AIRSPACE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("AIRSPACE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("AIRSPACE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("AIRSPACE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("AIRSPACE_POSTGRES_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("AIRSPACE_KAFKA_BROKERS"),
			AuditTopic: getEnv("AIRSPACE_KAFKA_AUDIT_TOPIC", "airspace.audit"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
