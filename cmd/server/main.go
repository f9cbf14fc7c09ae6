package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/crm-service/internal/config"
	"github.com/iliyamo/crm-service/internal/database"
	"github.com/iliyamo/crm-service/internal/handler"
	"github.com/iliyamo/crm-service/internal/logger"
	"github.com/iliyamo/crm-service/internal/metrics"
	"github.com/iliyamo/crm-service/internal/middleware"
	"github.com/iliyamo/crm-service/internal/queue"
	"github.com/iliyamo/crm-service/internal/repository"
	"github.com/iliyamo/crm-service/internal/router"
	"github.com/iliyamo/crm-service/internal/service"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine

	cfg := config.Load()
	log := logger.Set(logger.New(cfg.LogLevel))
	log.Info("configuration loaded", "env", cfg.Env)

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn("sentry init failed", "err", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	client, db, err := database.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	ictx, cancel := context.WithTimeout(context.Background(), database.MongoTimeout)
	if err := database.EnsureIndexes(ictx, db); err != nil {
		log.Warn("ensure indexes failed", "err", err)
	}
	cancel()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	// Events are optional; the audit consumer runs in-process when enabled.
	evCfg := config.LoadEventsConfig()
	var pub service.EventPublisher = queue.NopPublisher{}
	bg, stopBG := context.WithCancel(context.Background())
	defer stopBG()
	if evCfg.Enabled {
		pub = queue.NewAMQPPublisher(evCfg.AMQPURL)
		go queue.StartAuditConsumer(bg, evCfg.AMQPURL, evCfg.AuditLogPath)
	}

	users := repository.NewUserRepo(db)
	customers := repository.NewCustomerRepo(db)
	interactions := repository.NewInteractionRepo(db)
	leads := repository.NewLeadRepo(db)
	opportunities := repository.NewOpportunityRepo(db)

	userSvc := service.NewUserService(users, service.UserConfig{
		JWTSecret:    cfg.JWTSecret,
		AccessTTLMin: cfg.AccessTTLMin,
		BcryptCost:   cfg.BcryptCost,
	}, pub)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.NewErrorHandler(cfg.IsProduction())
	e.IPExtractor = middleware.IPExtractor(cfg.TrustProxy)

	e.Use(echomw.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	if !cfg.IsProduction() {
		e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogError:   true,
			LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
				slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
				return nil
			},
		}))
	}
	e.Use(echomw.CORS())
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(metrics.Middleware())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	deps := router.Deps{
		Auth:  userSvc,
		Cache: middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}
	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewUserHandler(userSvc), deps)
	router.RegisterCustomers(e, handler.NewCustomerHandler(service.NewCustomerService(customers, interactions, pub)), deps)
	router.RegisterInteractions(e, handler.NewInteractionHandler(service.NewInteractionService(interactions, customers, pub)), deps)
	router.RegisterLeads(e, handler.NewLeadHandler(service.NewLeadService(leads, opportunities, users, pub)), deps)
	router.RegisterOpportunities(e, handler.NewOpportunityHandler(service.NewOpportunityService(opportunities, leads, pub)), deps)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	stopBG()
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "err", err)
	}
}
