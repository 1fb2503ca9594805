// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, redacted logging, panic recovery, metrics,
// CORS, security headers, compression, visit recording and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Operational endpoints (/health, /metrics, /swagger) stay out of the
//     visit log
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

	"github.com/vamgard/vamgard-backend/internal/analytics"
	"github.com/vamgard/vamgard-backend/internal/auth"
	"github.com/vamgard/vamgard-backend/internal/cache"
	"github.com/vamgard/vamgard-backend/internal/config"
	"github.com/vamgard/vamgard-backend/internal/domain"
	"github.com/vamgard/vamgard-backend/internal/http/handlers"
	"github.com/vamgard/vamgard-backend/internal/http/middleware"
	"github.com/vamgard/vamgard-backend/internal/mail"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/services"
)

// LoginPath is where unauthenticated admin page requests are sent.
const LoginPath = "/Admin/Auth/Login"

// visitStoreShim adapts the repository free functions to analytics.Store,
// the sink shared by the visit recorder and the view deduplicator.
type visitStoreShim struct{ db *gorm.DB }

// InsertVisit proxies repo.CreateVisit.
func (s visitStoreShim) InsertVisit(ctx context.Context, v *domain.PageVisit) error {
	return repo.CreateVisit(ctx, s.db, v)
}

// VisitExistsSince proxies repo.VisitExistsSince.
func (s visitStoreShim) VisitExistsSince(ctx context.Context, path, ip string, since time.Time) (bool, error) {
	return repo.VisitExistsSince(ctx, s.db, path, ip, since)
}

// Deps are the infrastructure pieces the routes are built from. Cache and
// Mailer may be nil.
type Deps struct {
	DB       *gorm.DB
	Cache    cache.Cache
	Mailer   mail.Mailer
	Sessions *auth.Sessions
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and returns the handler set it mounted.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Visit recorder: sees every completed response
//  8. CORS, security headers and gzip
//
// The admin group adds the session check and no-store caching; subscribe,
// login and the branch lookup share a per-IP token bucket.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) *handlers.Handlers {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.Logger(middleware.LoggerOptions{
		MaskHeaders: []string{"X-Forwarded-For", "X-Real-IP"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics
	r.Use(middleware.Metrics())

	// 7) Page-visit log; the filter drops admin, api and operational paths
	store := visitStoreShim{db: deps.DB}
	var rec *analytics.Recorder
	if cfg.Analytics.Enabled {
		rec = analytics.NewRecorder(store, analytics.NewFilter(cfg.Analytics.IgnoredExtensions))
	}
	r.Use(middleware.VisitRecorder(rec))

	// 8) CORS posture, security headers, compression
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "صفحه مورد نظر یافت نشد")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Operational endpoints
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	cookieName := cfg.Session.CookieName
	if cookieName == "" {
		cookieName = handlers.DefaultCookieName
	}

	// Dependency injection: services ← repo/db/cache/mail
	dedup := analytics.NewDeduplicator(store, cfg.Analytics.DedupWindow)

	h := handlers.New(handlers.Services{
		Loans:      services.NewLoanService(deps.DB, dedup),
		Banks:      &services.BankService{DB: deps.DB},
		Branches:   services.NewBranchService(deps.DB, cfg.Overpass.URL, cfg.Overpass.Timeout, cfg.Overpass.RadiusM, deps.Cache, cfg.Redis.TTL),
		Blog:       services.NewBlogService(deps.DB, dedup),
		Newsletter: services.NewNewsletterService(deps.DB, deps.Mailer),
		Sitemap: &services.SitemapService{
			DB: deps.DB, SiteURL: cfg.SiteURL, Cache: deps.Cache, CacheTTL: cfg.Redis.TTL,
		},
		Admin:   services.NewAdminService(deps.DB),
		Content: services.NewContentService(deps.DB),
	}, handlers.SessionCookie{
		Sessions: deps.Sessions,
		Name:     cookieName,
		Secure:   cfg.Session.Secure,
	})

	limited := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, nil).Handler()

	// Site pages
	site := r.Group("")
	{
		site.GET("/", h.Home)
		site.GET("/Loans", h.ListLoans)
		site.GET("/vam/:slug", h.LoanDetail)
		site.GET("/type/:slug", h.LoansByType)
		site.GET("/Banks", h.ListBanks)
		site.GET("/bank/:slug", h.BankDetail)
		site.GET("/Blog", h.ListPosts)
		site.GET("/blog/:slug", h.PostDetail)
		site.GET("/sitemap.xml", h.Sitemap)
		site.POST("/Home/Subscribe", limited, h.Subscribe)
		site.GET("/api/banks/:slug/nearby", limited, h.NearbyBranches)
	}

	// Admin area
	admin := site.Group("/Admin", middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    true,
	}))
	{
		admin.GET("/Auth/Login", h.LoginStatus)
		admin.POST("/Auth/Login", limited, h.Login)
		admin.POST("/Auth/Logout", h.Logout)

		secured := admin.Group("", middleware.AdminSession(middleware.SessionOptions{
			Sessions:   deps.Sessions,
			CookieName: cookieName,
			LoginPath:  LoginPath,
		}))
		secured.GET("/Dashboard", h.Dashboard)
		secured.POST("/Dashboard/ChangePassword", h.ChangePassword)
		secured.GET("/Subscribers", h.ListSubscribers)
		secured.GET("/Subscribers/export.csv", h.ExportSubscribers)
		secured.DELETE("/Subscribers/:id", h.DeleteSubscriber)

		secured.GET("/Banks", h.AdminListBanks)
		secured.GET("/Banks/:id", h.AdminGetBank)
		secured.POST("/Banks", h.AdminCreateBank)
		secured.PUT("/Banks/:id", h.AdminUpdateBank)
		secured.DELETE("/Banks/:id", h.AdminDeleteBank)

		secured.GET("/LoanTypes", h.AdminListLoanTypes)
		secured.GET("/LoanTypes/:id", h.AdminGetLoanType)
		secured.POST("/LoanTypes", h.AdminCreateLoanType)
		secured.PUT("/LoanTypes/:id", h.AdminUpdateLoanType)
		secured.DELETE("/LoanTypes/:id", h.AdminDeleteLoanType)

		secured.GET("/Loans", h.AdminListLoans)
		secured.GET("/Loans/:id", h.AdminGetLoan)
		secured.POST("/Loans", h.AdminCreateLoan)
		secured.PUT("/Loans/:id", h.AdminUpdateLoan)
		secured.DELETE("/Loans/:id", h.AdminDeleteLoan)

		secured.GET("/Blog", h.AdminListPosts)
		secured.GET("/Blog/:id", h.AdminGetPost)
		secured.POST("/Blog", h.AdminCreatePost)
		secured.PUT("/Blog/:id", h.AdminUpdatePost)
		secured.DELETE("/Blog/:id", h.AdminDeletePost)
	}
	return h
}

// corsMiddleware allows every origin when none is configured, otherwise
// echoes allowlisted origins. Admin cookies are same-site, so credentials
// are never allowed cross-origin.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "ETag", "Content-Length"},
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
