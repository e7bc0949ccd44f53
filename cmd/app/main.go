package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"elearning-platform/internal/config"
	"elearning-platform/internal/domain/ports/adapter"
	payAdapters "elearning-platform/internal/infra/adapters/payment"
	pg "elearning-platform/internal/infra/db/postgres"
	"elearning-platform/internal/infra/logging"
	"elearning-platform/internal/infra/metrics"
	red "elearning-platform/internal/infra/redis"
	"elearning-platform/internal/infra/sched"
	"elearning-platform/internal/infra/web"
	"elearning-platform/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	courseRepo := pg.NewCourseRepoCacheDecorator(pg.NewCourseRepo(pool), redisClient, cfg.Redis.TTL)
	packageRepo := pg.NewPackageRepo(pool)
	promoRepo := pg.NewPromotionRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	accessRepo := pg.NewAccessRepo(pool)
	auditRepo := pg.NewAuditRepo(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, logger)
	catalogUC := usecase.NewCatalogUseCase(courseRepo, packageRepo, auditRepo, logger)
	promoUC := usecase.NewPromotionUseCase(promoRepo, auditRepo)
	accessUC := usecase.NewAccessUseCase(accessRepo, packageRepo, courseRepo, auditRepo, tm, logger)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, courseRepo, packageRepo, userRepo, promoUC, accessUC, auditRepo, tm, logger)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Payment.Stripe.SecretKey != "" {
		gateway, err = payAdapters.NewStripeGateway(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.SuccessURL, cfg.Payment.Stripe.CancelURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("stripe gateway init failed")
		}
	} else {
		if !cfg.Runtime.Dev {
			logger.Fatal().Msg("payment.stripe.secret_key is required outside dev mode")
		}
		logger.Warn().Msg("no stripe key configured; using noop payment gateway")
		gateway = payAdapters.NewNoopPaymentGateway()
	}
	logger.Info().Str("gateway", gateway.Name()).Msg("payment gateway ready")

	// ---- Background jobs ----
	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryCheckCron, accessUC, locker, logger)
	if err := expiryWorker.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("expiry worker start failed")
	}
	defer expiryWorker.Stop()

	reconciler := sched.NewPaymentReconciler(paymentUC, paymentRepo, cfg.Scheduler.ReconcileInterval, cfg.Payment.PendingTTL, logger)
	go reconciler.Start(ctx)

	go poolStatsLoop(ctx, pool)

	// ---- HTTP server ----
	server := web.NewServer(cfg.HTTP, cfg.Security, web.Deps{
		Users:     userUC,
		Catalog:   catalogUC,
		Promos:    promoUC,
		Payments:  paymentUC,
		Access:    accessUC,
		UserRepo:  userRepo,
		AuditRepo: auditRepo,
		Gateway:   gateway,
		Limiter:   rateLimiter,
	}, logger)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		logger.Info().Msg("shutdown requested")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("shutdown complete")
}

func poolStatsLoop(ctx context.Context, pool *pgxpool.Pool) {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st := pool.Stat()
			metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		}
	}
}
