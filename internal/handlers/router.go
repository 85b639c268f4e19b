package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fintrack/internal/metrics"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// Services bundles what the router serves.
type Services struct {
	Auth         services.AuthServicer
	Transactions services.TransactionServicer
	Categories   services.CategoryServicer
	Profiles     services.ProfileServicer
	Storage      services.StorageServicer
	Audit        services.AuditServicer
}

// RouterConfig holds the router's security settings.
type RouterConfig struct {
	AnonKey     string
	Tokens      *middleware.TokenManager
	RateLimiter *middleware.RateLimiter
	// Registry receives the HTTP collectors and is served on /metrics.
	// Nil disables both.
	Registry *prometheus.Registry
}

// NewRouter builds the backend's gin engine.
func NewRouter(svc Services, cfg RouterConfig) *gin.Engine {
	var httpMetrics *metrics.HTTP
	if cfg.Registry != nil {
		httpMetrics = metrics.NewHTTP(cfg.Registry)
	}

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(httpMetrics))
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, apikey, Prefer, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Range, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Middleware())
	}

	router.NoRoute(middleware.NoRoute())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	authHandler := NewAuthHandler(svc.Auth, svc.Audit, cfg.Tokens)
	transactionHandler := NewTransactionHandler(svc.Transactions, svc.Audit)
	categoryHandler := NewCategoryHandler(svc.Categories, svc.Audit)
	profileHandler := NewProfileHandler(svc.Profiles)
	storageHandler := NewStorageHandler(svc.Storage)

	// Public objects are fetched by plain URL, without any key
	router.GET("/storage/v1/object/public/:bucket/*path", storageHandler.Public)

	keyed := router.Group("/")
	keyed.Use(middleware.APIKeyMiddleware(cfg.AnonKey))

	auth := keyed.Group("/auth/v1")
	auth.GET("/health", authHandler.Health)
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/verify", authHandler.Verify)
	auth.POST("/token", authHandler.Token)

	protected := keyed.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.Tokens))

	protected.POST("/auth/v1/logout", authHandler.Logout)
	protected.GET("/auth/v1/user", authHandler.User)

	rest := protected.Group("/rest/v1")
	rest.GET("/transactions", transactionHandler.ListTransactions)
	rest.POST("/transactions", transactionHandler.InsertTransaction)
	rest.PATCH("/transactions", transactionHandler.UpdateTransaction)
	rest.DELETE("/transactions", transactionHandler.DeleteTransaction)

	rest.GET("/categories", categoryHandler.ListCategories)
	rest.POST("/categories", categoryHandler.InsertCategory)
	rest.DELETE("/categories", categoryHandler.DeleteCategory)

	rest.GET("/profiles", profileHandler.ListProfiles)
	rest.POST("/profiles", profileHandler.UpsertProfile)
	rest.PATCH("/profiles", profileHandler.UpdateProfile)

	protected.POST("/storage/v1/object/:bucket/*path", storageHandler.Upload)

	return router
}
