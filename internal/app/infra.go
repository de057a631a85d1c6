package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/medvault/medvault_backend/config"
	"github.com/medvault/medvault_backend/internal/events"
	"github.com/medvault/medvault_backend/internal/storage/migrations"
	"github.com/medvault/medvault_backend/pkg/database"
	"github.com/medvault/medvault_backend/pkg/email"
	"github.com/medvault/medvault_backend/pkg/observability"
	"github.com/medvault/medvault_backend/pkg/paygate"
	redispkg "github.com/medvault/medvault_backend/pkg/redis"
	s3pkg "github.com/medvault/medvault_backend/pkg/s3"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvidePayGateClient),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventHub),
)

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config) (*database.DB, error) {
	db, err := database.NewFromCentral(cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(context.Background(), migrations.FS); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return db.Close()
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	return s3pkg.New(cfg.S3)
}

func ProvidePayGateClient(cfg *config.Config) *paygate.Client {
	return paygate.New(cfg.PayGate)
}

func ProvideNatsClient(cfg *config.Config) (*nats.Conn, error) {
	// Drain happens through the event hub, which owns every subscription.
	return nats.Connect(cfg.Nats.URL)
}

func ProvideEventHub(lc fx.Lifecycle, nc *nats.Conn) *events.Hub {
	hub := events.NewHub(nc)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing event hub")
			hub.Close()
			return nil
		},
	})
	return hub
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
