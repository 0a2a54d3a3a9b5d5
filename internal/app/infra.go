package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/sarahsindone/sbrp-application/config"
	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/repo/memstore"
	"github.com/sarahsindone/sbrp-application/internal/repo/mongostore"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	"github.com/sarahsindone/sbrp-application/pkg/database"
	"github.com/sarahsindone/sbrp-application/pkg/email"
	"github.com/sarahsindone/sbrp-application/pkg/observability"
	redispkg "github.com/sarahsindone/sbrp-application/pkg/redis"
	s3pkg "github.com/sarahsindone/sbrp-application/pkg/s3"
	"github.com/sarahsindone/sbrp-application/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvidePasswordHasher),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvideNatsClient),
)

// ProvideStore opens the document store selected by database.driver.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config) (*repo.Store, error) {
	if strings.EqualFold(cfg.Database.Driver, "memory") {
		slog.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), nil
	}

	mcfg := database.MongoFromCentralConfig(cfg.Database.Mongo)
	client, err := database.NewMongoClient(context.Background(), mcfg)
	if err != nil {
		return nil, err
	}
	store := mongostore.New(client, client.Database(mcfg.Name))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return store.Close(ctx)
		},
	})
	return store, nil
}

// ProvideRedis connects when redis.addr is set. A nil client makes sessions
// and rate limits process-local.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("redis disabled; sessions are kept in memory")
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
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

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	acfg := authorize.FromCentralConfig(cfg.Authorization)
	dsn := database.NewDSN(cfg.CasbinDatabase)

	enforcer, cleanup, err := authorize.NewEnforcer(acfg, dsn)
	if err != nil {
		return nil, err
	}
	var auth authorize.IAuthorization
	auth, err = authorize.NewAuthorization(enforcer, acfg.AdminBypass)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if acfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

func ProvidePasswordHasher(cfg *config.Config) (*password.Hasher, error) {
	return password.New(password.FromCentralConfig(cfg.Password))
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

// ProvideS3Client returns nil when s3 is disabled.
func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}
	return s3pkg.New(context.Background(), cfg.S3)
}

// ProvideNatsClient returns nil when nats is disabled.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name(cfg.Observability.ServiceName),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
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
