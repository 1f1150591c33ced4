package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/devis-eau-api/internal/config"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/handler"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/middleware"
	"github.com/sangkips/devis-eau-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Client *handler.ClientHandler
	Tariff *handler.TariffHandler
	Quote  *handler.QuoteHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager  *utils.JWTManager
	Cfg         *config.Config
	Logger      *zap.Logger
	RateLimiter *middleware.UserRateLimiter
}

// NewRateLimiter builds the per-user limiter from RATE_LIMIT_REQUESTS per
// RATE_LIMIT_DURATION seconds.
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.UserRateLimiter {
	rlc := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlc.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlc.BurstSize = cfg.Requests
	}
	rlc.CleanupInterval = 5 * time.Minute
	rlc.EntryTTL = 10 * time.Minute
	return middleware.NewUserRateLimiter(rlc)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = NewRateLimiter(deps.Cfg.RateLimit)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log.Named("http")))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", deps.RateLimiter.Middleware(), h.Auth.Login)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(deps.RateLimiter.Middleware())

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/profile", h.Auth.GetProfile)

	registerClientRoutes(protected, h)
	registerTariffRoutes(protected, h)
	registerQuoteRoutes(protected, h)
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
	}
}

func registerTariffRoutes(protected *gin.RouterGroup, h *Handlers) {
	tariffs := protected.Group("/tariffs")
	{
		tariffs.GET("", h.Tariff.List)
		tariffs.GET("/resolve", h.Tariff.Resolve)
		tariffs.GET("/transport", h.Tariff.Transport)
		tariffs.GET("/:id", h.Tariff.Get)

		admin := tariffs.Group("")
		admin.Use(middleware.RequireRole(entity.RoleAdmin))
		admin.POST("", h.Tariff.Create)
		admin.PUT("/:id", h.Tariff.Update)
		admin.POST("/:id/close", h.Tariff.Close)
		admin.DELETE("/:id", h.Tariff.Delete)
	}
}

func registerQuoteRoutes(protected *gin.RouterGroup, h *Handlers) {
	quotes := protected.Group("/quotes")
	{
		quotes.POST("/preview", h.Quote.Preview)
		quotes.GET("", h.Quote.List)
		quotes.POST("", h.Quote.Create)
		quotes.GET("/:id", h.Quote.Get)
		quotes.PUT("/:id", h.Quote.Update)
		quotes.PUT("/:id/status", h.Quote.UpdateStatus)
		quotes.DELETE("/:id", h.Quote.Delete)
	}
}
