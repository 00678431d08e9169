package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/dbpool"
	"github.com/metalbroker/metalbroker/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log          *logrus.Logger
	Pool         *dbpool.Pool
	Offers       OfferRepository
	Leases       LeaseRepository
	OwnerChanges OwnerChangeRepository
	JWTSecret    string
	AuthEnabled  bool
	CORSOrigins  []string
	Version      string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB; broker payloads are small JSON documents
	rateLimit   = 100     // requests per second per IP
	rateBurst   = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version)
	offers := NewOfferHandler(deps.Offers, log)
	leases := NewLeaseHandler(deps.Leases, log)
	changes := NewOwnerChangeHandler(deps.OwnerChanges, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes resolve an identity first.
	api.Use(middleware.Identity(deps.JWTSecret, deps.AuthEnabled, log))

	// Offers.
	api.GET("/offers", offers.List)
	api.POST("/offers", offers.Create)
	api.GET("/offers/:id", offers.Get)
	api.DELETE("/offers/:id", offers.Delete)
	api.POST("/offers/:id/claim", offers.Claim)

	// Leases.
	api.GET("/leases", leases.List)
	api.POST("/leases", leases.Create)
	api.GET("/leases/:id", leases.Get)
	api.DELETE("/leases/:id", leases.Delete)

	// Owner changes.
	api.GET("/owner-changes", changes.List)
	api.POST("/owner-changes", changes.Create)
	api.GET("/owner-changes/:id", changes.Get)
	api.DELETE("/owner-changes/:id", changes.Delete)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(r.Group("/api/v1"), deps)

	return r
}
