package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"

	"github.com/iliyamo/club-events/internal/config"
	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/handler"
	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/queue"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/router"
	"github.com/iliyamo/club-events/internal/service"
)

func main() {
	envFile := pflag.String("env-file", ".env", "optional dotenv file loaded before reading the environment")
	migrate := pflag.Bool("migrate", true, "create missing tables on startup")
	seed := pflag.Bool("seed", false, "create the demo owner/admin/user accounts when the users table is empty")
	seedPassword := pflag.String("seed-password", "password123", "password for the demo accounts")
	pflag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		boot := config.NewLogger(os.Getenv("APP_ENV"))
		boot.Fatal().Err(err).Str("file", *envFile).Msg("load env file")
	}
	cfg := config.Load()
	log := config.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, dialect, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database")
	}
	defer db.Close()
	log.Info().Str("driver", string(dialect)).Msg("database connected")

	if *migrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}
	if err := database.SeedSettings(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed settings")
	}
	if *seed {
		n, err := database.SeedUsers(ctx, db, *seedPassword, cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("seed users")
		}
		log.Info().Int("users", n).Msg("demo accounts seeded")
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; rate limiting and caching disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories and services
	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	notifications := repository.NewNotificationRepo(db)
	settings := repository.NewSettingsRepo(db, dialect)

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	verifier := service.NewCredentialVerifier(users, cfg.JWTSecret, cfg.SessionTTL, cfg.BcryptCost)

	var publisher service.Publisher
	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		pub := queue.NewPublisher(qcfg, log)
		defer pub.Close()
		publisher = pub
		go func() {
			if err := queue.NewAuditConsumer(qcfg, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("booking consumer stopped")
			}
		}()
		log.Info().Str("queue", qcfg.Queue).Msg("booking feed enabled")
	}
	engine := service.NewBookingEngine(events, bookings, notifications, publisher, cache, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string { return uuid.NewString() }}))
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e, router.Handlers{
		Auth:          handler.NewAuthHandler(verifier, users, log),
		Events:        handler.NewEventHandler(events, cache, log),
		Bookings:      handler.NewBookingHandler(engine, bookings, log),
		Notifications: handler.NewNotificationHandler(notifications, log),
		Owner:         handler.NewOwnerHandler(settings, users, verifier, log),
		Health:        handler.Health(db),
		Gate:          middleware.NewGate(verifier, settings, log),
		Cache:         cache.Middleware(),
		RateLimit:     middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func openDB(cfg config.Config) (*sql.DB, database.Dialect, error) {
	switch database.Dialect(cfg.DBDriver) {
	case database.MySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return db, database.MySQL, err
	default:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		return db, database.SQLite, err
	}
}
