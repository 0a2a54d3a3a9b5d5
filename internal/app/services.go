package app

import (
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/sarahsindone/sbrp-application/config"
	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/service/artifact"
	"github.com/sarahsindone/sbrp-application/internal/service/auth"
	"github.com/sarahsindone/sbrp-application/internal/service/casefile"
	"github.com/sarahsindone/sbrp-application/internal/service/report"
	"github.com/sarahsindone/sbrp-application/internal/service/template"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	pasetotoken "github.com/sarahsindone/sbrp-application/pkg/paseto"
	s3pkg "github.com/sarahsindone/sbrp-application/pkg/s3"
	"github.com/sarahsindone/sbrp-application/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvideSessionStore,
		ProvideAuthService,
		ProvideTemplateService,
		ProvideCaseFileService,
		ProvideReportService,
		ProvideArtifactService,
	),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideSessionStore(rdb *redis.Client) auth.SessionStore {
	if rdb == nil {
		return auth.NewMemorySessions()
	}
	return auth.NewRedisSessions(rdb)
}

func ProvideAuthService(
	store *repo.Store,
	sessions auth.SessionStore,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	authz authorize.IAuthorization,
	cfg *config.Config,
) auth.Service {
	return auth.New(store, sessions, paseto, hasher,
		auth.WithAuthorizer(authz),
		auth.WithMinPasswordLength(cfg.Authentication.MinPasswordLength),
	)
}

func ProvideTemplateService(store *repo.Store) template.Service {
	return template.New(store)
}

func ProvideCaseFileService(store *repo.Store) casefile.Service {
	return casefile.New(store)
}

func ProvideReportService(store *repo.Store, nc *nats.Conn, cfg *config.Config) report.Service {
	opts := []report.Option{
		report.WithNumberPrefix(cfg.Reports.NumberPrefix),
		report.WithTitleFormat(cfg.Reports.DefaultTitleFormat),
	}
	// a typed nil *nats.Conn must not become a non-nil Publisher
	if nc != nil {
		opts = append(opts, report.WithPublisher(nc))
	}
	return report.New(store, opts...)
}

func ProvideArtifactService(store *repo.Store, s3 *s3pkg.Client, cfg *config.Config) artifact.Service {
	var objects artifact.ObjectStore
	if s3 != nil {
		objects = s3
	}
	return artifact.New(store, objects, cfg.Reports.MaxArtifactSizeMB)
}
