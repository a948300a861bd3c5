// Command airspace is a demo driver for the marketplace client core. It
// connects a simulated wallet, provisions a humanity credential for new
// wallets, and runs the seven-step purchase pipeline against simulated
// chain collaborators. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"airspace/internal/chain"
	"airspace/internal/credential"
	credmetrics "airspace/internal/credential/metrics"
	"airspace/internal/humanity"
	"airspace/internal/listing"
	"airspace/internal/notify"
	"airspace/internal/platform/config"
	"airspace/internal/platform/database"
	"airspace/internal/platform/kafka/producer"
	"airspace/internal/platform/logger"
	platformredis "airspace/internal/platform/redis"
	"airspace/internal/purchase"
	purchasemetrics "airspace/internal/purchase/metrics"
	"airspace/internal/storage"
	"airspace/internal/transport/ops"
	"airspace/internal/wallet"
	walletmetrics "airspace/internal/wallet/metrics"
	"airspace/internal/wallet/session"
	id "airspace/pkg/domain"
	"airspace/pkg/platform/audit/publisher"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("airspace demo failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opsHandler := ops.New()

	// Key-value cache: Postgres wins over Redis, memory is the fallback.
	kv, cleanup, err := selectKV(ctx, cfg, log, opsHandler)
	if err != nil {
		return err
	}
	defer cleanup()

	auditor, auditCleanup := selectAuditor(cfg, log, opsHandler)
	defer auditCleanup()

	notifier := notify.NewLogNotifier(log)

	creds := credential.Select(cfg.Issuer,
		credential.WithLogger(log),
		credential.WithMetrics(credmetrics.New()),
	)
	log.Info("credential backend selected", "backend", creds.Backend().Name())

	humanitySvc := humanity.New(creds, kv,
		humanity.WithLogger(log),
		humanity.WithNotifier(notifier),
		humanity.WithAuditor(auditor),
	)

	address, err := id.ParseWalletAddress(walletAddressFromEnv())
	if err != nil {
		return err
	}
	connector := wallet.NewSimConnector(cfg.Wallet, address)

	manager := session.NewManager(ctx, connector, kv,
		session.WithLogger(log),
		session.WithNotifier(notifier),
		session.WithMetrics(walletmetrics.New()),
		session.WithAuditor(auditor),
		session.WithConnectTimeout(cfg.Wallet.ConnectTimeout),
	)
	manager.OnNewWallet(func(ctx context.Context, addr id.WalletAddress) {
		if _, err := humanitySvc.CreateCredential(ctx); err != nil {
			log.Error("auto-provisioning credential failed", "address", addr.Short(), "error", err)
		}
	})
	manager.OnAddressChange(func(ctx context.Context, addr id.WalletAddress, connected bool) {
		if err := humanitySvc.HandleAddressChange(ctx, addr, connected); err != nil {
			log.Error("credential rehydration failed", "address", addr.Short(), "error", err)
		}
	})

	orchestrator := purchase.NewOrchestrator(
		&chain.SimPaymentClient{Delay: 200 * time.Millisecond},
		&chain.SimAssetClient{Delay: 200 * time.Millisecond},
		humanitySvc,
		cfg.Purchase,
		purchase.WithLogger(log),
		purchase.WithMetrics(purchasemetrics.New()),
		purchase.WithAuditor(auditor),
	)

	if cfg.OpsAddr != "" {
		srv := opsHandler.NewServer(cfg.OpsAddr)
		go func() {
			log.Info("ops endpoint listening", "addr", cfg.OpsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("ops server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return runDemo(ctx, log, manager, humanitySvc, orchestrator, address)
}

// runDemo drives one end-to-end pass: connect, verify humanity, buy.
func runDemo(ctx context.Context, log *slog.Logger, manager *session.Manager, humanitySvc *humanity.Service, orchestrator *purchase.Orchestrator, address id.WalletAddress) error {
	if err := manager.Connect(ctx); err != nil {
		return err
	}
	snap := manager.Snapshot()
	log.Info("wallet connected",
		"address", snap.Address.Short(),
		"new_wallet", snap.IsNewWallet,
	)

	verified, err := humanitySvc.VerifyCredential(ctx)
	if err != nil {
		return err
	}
	log.Info("humanity credential checked", "verified", verified)

	parcel := listing.Listing{
		ID:              "nft-airspace-demo-1",
		TokenID:         1,
		Title:           "Demo Air Rights Parcel",
		PropertyAddress: "100 Demo Plaza",
		CurrentHeight:   85,
		MaximumHeight:   240,
		AvailableFloors: 38,
		Price:           175000,
		Latitude:        40.7484,
		Longitude:       -73.9857,
	}
	if err := parcel.Validate(); err != nil {
		return err
	}

	flow, err := orchestrator.Run(ctx, purchase.Request{
		Buyer:       address,
		Destination: id.AssetAddress("0x1a2b3c4d5e6f7a8b"),
		Listing:     parcel,
		Listener: func(f purchase.Flow) {
			step := f.Steps[f.CurrentStepIndex]
			log.Info("purchase step",
				"index", f.CurrentStepIndex,
				"title", step.Title,
				"status", string(step.Status),
			)
		},
	})
	if err != nil {
		return err
	}
	log.Info("purchase finished",
		"outcome", string(flow.Outcome),
		"payment_tx", flow.PaymentTxHash.String(),
		"asset_tx", flow.AssetTxHash.String(),
	)

	return manager.Disconnect(ctx)
}

// selectKV picks the persistence backend and registers its readiness check.
func selectKV(ctx context.Context, cfg config.Config, log *slog.Logger, opsHandler *ops.Handler) (storage.KV, func(), error) {
	if cfg.Postgres.URL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Postgres.URL
		pool, err := database.New(dbCfg)
		if err != nil {
			return nil, nil, err
		}
		kv := storage.NewPostgresKV(pool.DB())
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		opsHandler.RegisterCheck("postgres", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
		log.Info("using postgres key-value cache")
		return kv, func() { pool.Close() }, nil
	}

	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		opsHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Health(checkCtx)
		})
		log.Info("using redis key-value cache")
		return storage.NewRedisKV(client.Client, ""), func() { _ = client.Close() }, nil
	}

	log.Info("using in-memory key-value cache")
	return storage.NewMemoryKV(), func() {}, nil
}

// selectAuditor returns the Kafka publisher when brokers are configured,
// nil otherwise. Audit is best-effort in every caller.
func selectAuditor(cfg config.Config, log *slog.Logger, opsHandler *ops.Handler) (publisher.Publisher, func()) {
	if cfg.Kafka.Brokers == "" {
		return nil, func() {}
	}
	prod, err := producer.New(producer.Config{Brokers: cfg.Kafka.Brokers}, log)
	if err != nil {
		log.Warn("kafka producer unavailable, audit disabled", "error", err)
		return nil, func() {}
	}
	opsHandler.RegisterCheck("kafka", func() error {
		checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if !prod.Healthy(checkCtx) {
			return errors.New("kafka producer unhealthy")
		}
		return nil
	})
	return publisher.NewKafkaPublisher(prod, cfg.Kafka.AuditTopic, log), func() { _ = prod.Close() }
}

func walletAddressFromEnv() string {
	if v := os.Getenv("AIRSPACE_WALLET_ADDRESS"); v != "" {
		return v
	}
	return "0x1234567890abcdef1234567890abcdef12345678"
}
