package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"go.uber.org/fx"

	"github.com/sarahsindone/sbrp-application/config"
	"github.com/sarahsindone/sbrp-application/internal/api/http/handler"
	"github.com/sarahsindone/sbrp-application/internal/api/http/middleware"
	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/service/artifact"
	"github.com/sarahsindone/sbrp-application/internal/service/auth"
	"github.com/sarahsindone/sbrp-application/internal/service/casefile"
	"github.com/sarahsindone/sbrp-application/internal/service/report"
	"github.com/sarahsindone/sbrp-application/internal/service/template"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	"github.com/sarahsindone/sbrp-application/pkg/observability"
	pasetotoken "github.com/sarahsindone/sbrp-application/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg         *config.Config
	Store       *repo.Store
	Auth        authorize.IAuthorization
	PasetoMgr   *pasetotoken.Manager
	AuthSvc     auth.Service
	ReportSvc   report.Service
	TemplateSvc template.Service
	CaseFileSvc casefile.Service
	ArtifactSvc artifact.Service
	OTel        *observability.Provider `optional:"true"`
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Middlewares
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.AuthSvc)
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	templateH := handler.NewTemplateHandler(r.p.TemplateSvc)
	reportH := handler.NewReportHandler(r.p.ReportSvc, r.p.Auth)
	artifactH := handler.NewArtifactHandler(r.p.ArtifactSvc)
	caseFileH := handler.NewCaseFileHandler(r.p.CaseFileSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerTemplateRoutes(api, templateH, authRequired, requirePerm)
	r.registerReportRoutes(api, reportH, artifactH, authRequired, requirePerm)
	r.registerCaseFileRoutes(api, caseFileH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if r.p.Cfg.Authorization.HealthCheckEnabled && !authorize.IsPolicyHealthy() {
				return false
			}
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			return r.p.Store.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(r.p.OTel.MetricsHandler()))
	}
}
