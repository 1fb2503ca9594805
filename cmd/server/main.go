// Command server runs the VamGard loan comparison site.
//
// @title                    VamGard API
// @version                  1.0
// @description              Iranian bank loan comparison site: loan, bank and blog pages, newsletter, nearby branches, and the admin area.
// @BasePath                 /
// @securityDefinitions.apikey AdminSession
// @in                       cookie
// @name                     vamgard_admin
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/vamgard/vamgard-backend/docs"
	"github.com/vamgard/vamgard-backend/internal/auth"
	"github.com/vamgard/vamgard-backend/internal/cache"
	"github.com/vamgard/vamgard-backend/internal/config"
	httpapi "github.com/vamgard/vamgard-backend/internal/http"
	"github.com/vamgard/vamgard-backend/internal/logging"
	"github.com/vamgard/vamgard-backend/internal/mail"
	"github.com/vamgard/vamgard-backend/internal/observability"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logCloser := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		Pretty:     cfg.LogPretty,
		File:       cfg.LogFile.Path,
		MaxSizeMB:  cfg.LogFile.MaxSizeMB,
		MaxBackups: cfg.LogFile.MaxBackups,
		MaxAgeDays: cfg.LogFile.MaxAgeDays,
	})
	defer logCloser.Close()
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, observability.Build{Version: version, Environment: cfg.GinMode})
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	db, err := repo.Open(repo.Options{
		Driver:   cfg.DB.Driver,
		Path:     cfg.DB.Path,
		DSN:      cfg.DB.DSN,
		LogLevel: cfg.LogLevel,
		Tracing:  cfg.OTEL.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	created, err := services.NewAdminService(db).EnsureBootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.DisplayName)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin failed")
	}
	if created {
		log.Warn().Str("username", cfg.Admin.Username).Msg("bootstrap admin created; change its password")
	}

	var c cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		c = rc
	}

	mailer := mail.NewSMTP(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		FromName: cfg.SMTP.FromName,
		SiteURL:  cfg.SiteURL,
	})
	if cfg.SMTP.Password == "" {
		log.Warn().Msg("SMTP_PASSWORD not set; welcome emails are disabled")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Cache:    c,
		Mailer:   mailer,
		Sessions: auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.RememberTTL),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Str("db", cfg.DB.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
