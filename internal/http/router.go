package http

import (
	"log/slog"
	"time"

	"github.com/fullpotential/dashboard/internal/config"
	"github.com/fullpotential/dashboard/internal/http/handlers"
	"github.com/fullpotential/dashboard/internal/http/middlewares"
	"github.com/fullpotential/dashboard/internal/observability"
	"github.com/fullpotential/dashboard/internal/orchestrator"
	"github.com/fullpotential/dashboard/internal/redisclient"
	"github.com/fullpotential/dashboard/internal/registry"
	"github.com/fullpotential/dashboard/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries the collaborators the router wires into handlers. They are
// constructed once in main and passed down; no package-level state.
type Deps struct {
	Config       config.Config
	Pool         *pgxpool.Pool
	Registry     *registry.Client
	Orchestrator *orchestrator.Client
	Redis        *redisclient.Client
	Prom         *observability.Prom
	PromRegistry *prometheus.Registry
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Config.AllowedOrigins))
	r.Use(otelgin.Middleware(deps.Config.DropletID))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(deps.Pool)
	sessionsRepo := postgres.NewSessionsRepo(deps.Pool)

	// wire up handlers
	udcHandler := handlers.NewUDCHandler(deps.Config, deps.Registry, deps.Orchestrator)
	statusHandler := handlers.NewStatusHandler(deps.Registry, deps.Orchestrator, deps.Registry, deps.Orchestrator)
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, sessionsRepo, deps.Config)
	sessionAuth := middlewares.NewSessionAuth(sessionsRepo)

	// inter-droplet contract
	r.GET("/health", udcHandler.Health)
	r.GET("/capabilities", udcHandler.Capabilities)
	r.GET("/state", udcHandler.State)
	r.GET("/dependencies", udcHandler.Dependencies)
	r.POST("/message", middlewares.RequireJSON(), udcHandler.Message)

	// system visualization
	api := r.Group("/api")
	api.GET("/system/status", statusHandler.SystemStatus)
	api.GET("/droplets", statusHandler.Droplets)
	api.GET("/orchestrator/metrics", statusHandler.OrchestratorMetrics)

	// membership auth, served at the root like the rest of the site
	var rdb *redis.Client
	if deps.Redis != nil {
		rdb = deps.Redis.Raw()
	}
	limiter := middlewares.NewRateLimiter(rdb, deps.Config.RateLimitPerMinute, time.Minute)

	auth := r.Group("")
	auth.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	auth.Use(middlewares.MaxBodyBytes(1 << 20))
	auth.POST("/signup", middlewares.RequireJSON(), authHandler.SignUp)
	auth.POST("/login", middlewares.RequireJSON(), authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", sessionAuth.RequireAuth(), authHandler.Me)

	if deps.PromRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{})))
	}

	return r
}
