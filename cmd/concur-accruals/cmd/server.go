package cmd

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/concur-accruals/api/openapi"
	"github.com/donaldgifford/concur-accruals/internal/api/handlers"
	"github.com/donaldgifford/concur-accruals/internal/api/middleware"
	"github.com/donaldgifford/concur-accruals/internal/engine"
)

const apiTitle = "Concur Accruals API"

// newServer builds the Echo instance with every route registered.
func newServer(a *app) (*echo.Echo, huma.API) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = a.cfg.Server.ReadTimeout
	e.Server.WriteTimeout = a.cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(a.log))
	e.Use(middleware.Tracing())
	e.Use(middleware.RequestLog(a.log))
	e.Use(middleware.Metrics())
	if len(a.cfg.CORS.AllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: a.cfg.CORS.AllowOrigins,
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, handlers.PrincipalHeader},
		}))
	}

	deps := map[string]handlers.Pinger{}
	if a.store != nil {
		deps["database"] = a.store
	}
	health := handlers.NewHealthHandler(deps)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaCfg := huma.DefaultConfig(apiTitle, Version)
	humaCfg.DocsPath = ""
	api := humaecho.New(e, humaCfg)

	handlers.RegisterUserRoutes(api, handlers.NewUsersHandler(a.service))
	handlers.RegisterCardRoutes(api, handlers.NewCardsHandler(a.service))
	handlers.RegisterOrgRoutes(api, handlers.NewOrgHandler(a.service))
	handlers.RegisterAuthTestRoutes(api, handlers.NewAuthTestHandler(a.service))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(a.limiter))

	var (
		rotations handlers.RotationLister
		jobs      handlers.JobsProvider
	)
	if a.store != nil {
		rotations, jobs = a.store, a.store
	}
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(jobs, engine.JobTokenRefresh))
	handlers.RegisterSecretsRoutes(api, handlers.NewSecretsHandler(a.sources, rotations))

	openapi.RegisterRoutes(e, api, apiTitle)

	return e, api
}
