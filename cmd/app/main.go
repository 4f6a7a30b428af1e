package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academy-payments/internal/config"
	"academy-payments/internal/domain/ports/adapter"
	"academy-payments/internal/infra/adapters/notify"
	payAdapters "academy-payments/internal/infra/adapters/payment"
	"academy-payments/internal/infra/api"
	pg "academy-payments/internal/infra/db/postgres"
	"academy-payments/internal/infra/logging"
	"academy-payments/internal/infra/metrics"
	red "academy-payments/internal/infra/redis"
	"academy-payments/internal/infra/sched"
	"academy-payments/internal/infra/worker"
	"academy-payments/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, relaxed config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	pg.StartPoolStatsCollector(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	payRepo := pg.NewPaymentRepo(pool)
	courseRepo := pg.NewCourseRepoCacheDecorator(pg.NewCourseRepo(pool), redisClient, cfg.Redis.TTL)
	userRepo := pg.NewUserRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Payment.Waafi.MerchantUID == "" {
		gateway = payAdapters.NewNoopPaymentGateway()
		logger.Warn().Msg("payment gateway: noop (dev mode, no merchant configured)")
	} else {
		gateway, err = payAdapters.NewWaafiGateway(cfg.Payment.Waafi.MerchantUID, cfg.Payment.Waafi.APIKey, cfg.Payment.Waafi.CallbackURL, cfg.Payment.Waafi.Sandbox)
		if err != nil {
			logger.Fatal().Err(err).Msg("waafi gateway")
		}
		logger.Info().Bool("sandbox", cfg.Payment.Waafi.Sandbox).Msg("payment gateway: waafi")
	}

	// ---- Ops notifier ----
	var notifier adapter.OpsNotifier = notify.NoopNotifier{}
	if cfg.Notify.TelegramToken != "" {
		notifier, err = notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.ChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
	}

	// ---- Use cases ----
	paymentUC := usecase.NewPaymentUseCase(payRepo, courseRepo, gateway, txm, logger)
	courseUC := usecase.NewCourseUseCase(courseRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, logger)

	// ---- HTTP API ----
	auth := api.NewAuthManager(cfg.Session.Secret, cfg.Session.Secure, cfg.Session.CookieDomain, cfg.Session.TTL)
	srv := api.NewServer(paymentUC, courseUC, userUC, auth, rateLimiter, cfg.RateLimit, logger)
	server := &http.Server{
		Addr:    api.ListenAddr(cfg.Server.Port),
		Handler: srv.Router(cfg.Server.RequestTimeout),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Reconciler ----
	wpool := worker.NewPool(cfg.Reconcile.Workers, logger)
	wpool.Start(ctx)
	reconciler := sched.NewReconciler(paymentUC, payRepo, wpool, locker, notifier,
		cfg.Reconcile.Interval, cfg.Reconcile.StaleAfter, cfg.Reconcile.BatchSize, logger)
	go reconciler.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	wpool.Stop()
}
