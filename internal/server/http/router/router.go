package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/petshop/internal/server/http/handlers"
	"github.com/polkiloo/petshop/internal/server/http/middleware"
)

const defaultMaxBodyBytes = 1 << 20

type options struct {
	metrics      http.Handler
	sessionTTL   time.Duration
	maxBodyBytes int64
}

// Option customizes the router.
type Option func(*options)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// WithSessionTTL sets the lifetime of the session cookie.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *options) { o.sessionTTL = ttl }
}

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger, opts ...Option) *gin.Engine {
	o := options{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(o.maxBodyBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	if o.metrics != nil {
		engine.GET("/metrics", gin.WrapH(o.metrics))
	}

	healthHandler := handlers.NewHealthHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	authHandler := handlers.NewAuthHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	checkoutHandler := handlers.NewCheckoutHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	accountHandler := handlers.NewAccountHandler(facade)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)
	api.GET("/seed", catalogHandler.Seed)
	api.GET("/products", catalogHandler.List)
	api.GET("/products/:id", catalogHandler.Get)

	visitor := api.Group("")
	visitor.Use(middleware.Toasts())
	visitor.Use(middleware.Identify(facade, logger, o.sessionTTL))

	user := visitor.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.POST("/logout", authHandler.Logout)

	cart := visitor.Group("/cart")
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.Add)
	cart.PATCH("/items/:productID", cartHandler.Update)
	cart.DELETE("/items/:productID", cartHandler.Remove)

	visitor.GET("/checkout/quote", checkoutHandler.Quote)

	authed := visitor.Group("")
	authed.Use(middleware.AuthRequired())
	authed.POST("/checkout", checkoutHandler.Place)

	userAuth := authed.Group("/user")
	userAuth.GET("/orders", orderHandler.List)
	userAuth.GET("/orders/:id", orderHandler.Get)
	userAuth.GET("/notifications", accountHandler.Notifications)
	userAuth.GET("/notifications/unread", accountHandler.Unread)
	userAuth.POST("/notifications/read-all", accountHandler.MarkAllRead)
	userAuth.POST("/notifications/:id/read", accountHandler.MarkRead)
	userAuth.DELETE("/notifications", accountHandler.ClearNotifications)
	userAuth.GET("/profile", accountHandler.Profile)
	userAuth.PUT("/profile", accountHandler.SaveProfile)
	userAuth.GET("/addresses", accountHandler.Addresses)
	userAuth.POST("/addresses", accountHandler.CreateAddress)
	userAuth.PUT("/addresses/:id", accountHandler.UpdateAddress)

	return engine
}
