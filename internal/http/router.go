// Package httpapi wires the HTTP transport (Gin) to the policy, auth and demo
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, CORS, security headers, compression, authentication,
// idempotency, and rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/policy-tracker-backend/docs"
	"github.com/tbourn/policy-tracker-backend/internal/catalog"
	"github.com/tbourn/policy-tracker-backend/internal/config"
	"github.com/tbourn/policy-tracker-backend/internal/domain"
	"github.com/tbourn/policy-tracker-backend/internal/expiry"
	"github.com/tbourn/policy-tracker-backend/internal/http/handlers"
	"github.com/tbourn/policy-tracker-backend/internal/http/middleware"
	"github.com/tbourn/policy-tracker-backend/internal/repo"
	"github.com/tbourn/policy-tracker-backend/internal/services"
	"github.com/tbourn/policy-tracker-backend/internal/views"
)

// policyRepoShim adapts the repository free functions to services.PolicyRepo.
type policyRepoShim struct{}

func (policyRepoShim) CreatePolicy(ctx context.Context, db *gorm.DB, p *domain.Policy) error {
	return repo.CreatePolicy(ctx, db, p)
}

func (policyRepoShim) ListPolicies(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Policy, error) {
	return repo.ListPolicies(ctx, db, ownerID)
}

func (policyRepoShim) ListPoliciesEndingBetween(ctx context.Context, db *gorm.DB, ownerID string, from, to time.Time) ([]domain.Policy, error) {
	return repo.ListPoliciesEndingBetween(ctx, db, ownerID, from, to)
}

func (policyRepoShim) CountPolicies(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	return repo.CountPolicies(ctx, db, ownerID)
}

func (policyRepoShim) ListPoliciesPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Policy, error) {
	return repo.ListPoliciesPage(ctx, db, ownerID, offset, limit)
}

func (policyRepoShim) GetPolicy(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.Policy, error) {
	return repo.GetPolicy(ctx, db, id, ownerID)
}

func (policyRepoShim) PoliciesStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error) {
	return repo.PoliciesStats(ctx, db, ownerID)
}

func (policyRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, userID, scope, key, now)
}

func (policyRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, userID, scope, key, resourceID, status, ttl)
}

// userRepoShim adapts the repository free functions to services.UserRepo.
type userRepoShim struct{}

func (userRepoShim) CreateUser(ctx context.Context, db *gorm.DB, email, agencyName, passwordHash string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, email, agencyName, passwordHash)
}

func (userRepoShim) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}

func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

// demoRepoShim adapts repo.CreateDemoRequest to services.DemoRepo.
type demoRepoShim struct{}

func (demoRepoShim) CreateDemoRequest(ctx context.Context, db *gorm.DB, r *domain.DemoRequest) error {
	return repo.CreateDemoRequest(ctx, db, r)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath. A nil cat means the
// default policy type catalog.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS, security headers and gzip
//
// Per group: RequireAuth, then the idempotency validator (so a replay can
// bypass the limiter), then the rate limiter.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, cat *catalog.Catalog) {
	r.HandleMethodNotAllowed = true
	if cat == nil {
		cat = catalog.Default()
	}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction; search terms are customer names
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskQuery: []string{"q"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS, security headers, compression
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	calc := expiry.Calculator{WindowDays: cfg.Expiry.WindowDays, Location: cfg.Expiry.Location}

	policySvc := services.NewPolicyService(db, policyRepoShim{}, calc)
	policySvc.Catalog = cat
	policySvc.StoreTimeout = cfg.Store.Timeout
	if cfg.IdempotencyTTL > 0 {
		policySvc.IdempotencyTTL = cfg.IdempotencyTTL
	}
	authSvc := services.NewAuthService(db, userRepoShim{}, []byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	demoSvc := services.NewDemoService(db, demoRepoShim{})

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	viewBuilder := &views.Builder{
		Policies:   policySvc,
		WindowDays: calc.Window(),
		Calc:       calc,
		CreatePath: joinPath(apiBase, "/policies"),
	}

	h := handlers.New(handlers.Deps{
		Policies: policySvc,
		Views:    viewBuilder,
		Auth:     authSvc,
		Demo:     demoSvc,
		Catalog:  cat,
		Calc:     calc,
	})

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	// Public API
	public := groupWithPrefix(r, apiBase)
	public.Use(rl.Handler())
	{
		public.POST("/auth/signup", h.SignUp)
		public.POST("/auth/login", h.Login)
		public.POST("/demo-requests", h.CreateDemoRequest)
		public.GET("/policy-types", h.PolicyTypes)
	}

	// Authenticated API
	authed := groupWithPrefix(r, apiBase)
	authed.Use(
		middleware.RequireAuth(authSvc),
		middleware.IdempotencyValidator(
			services.ScopePolicies,
			middleware.IdempotencyOptions{MaxLen: 200},
			func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
				rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
				if err != nil || rec == nil {
					return false, nil
				}
				return true, nil
			},
		),
		rl.Handler(),
	)
	{
		authed.GET("/auth/me", h.Me)

		// Views
		authed.GET("/dashboard", h.Dashboard)
		authed.GET("/calendar", h.Calendar)
		authed.GET("/reminders", h.Reminders)

		// Policies
		authed.GET("/policies", h.ListPolicies)
		authed.GET("/policies/search", h.SearchPolicies)
		authed.GET("/policies/:id", h.GetPolicy)
		authed.POST("/policies", h.CreatePolicy)
	}
}

// corsMiddleware allows every origin when none are configured, otherwise only
// the allowlist, echoing the matching Origin.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{
			"X-Request-ID", "Content-Length", "ETag", "Location", middleware.HeaderIdempotencyReplayed,
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinPath appends p to base, treating "/" (or empty) base as root.
func joinPath(base, p string) string {
	if base == "" || base == "/" {
		return p
	}
	return base + p
}
