package sched

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"elearning-platform/internal/infra/metrics"
	red "elearning-platform/internal/infra/redis"
	"elearning-platform/internal/usecase"
)

const expiryLockKey = "lock:expiry_sweep"

// ExpiryWorker runs the entitlement sweeper on a cron schedule. A Redis
// lock keeps concurrent instances from sweeping at the same time; the
// sweep itself is idempotent so a lost lock is harmless.
type ExpiryWorker struct {
	spec     string
	accessUC usecase.AccessUseCase
	locker   red.Locker
	cron     *cron.Cron
	log      *zerolog.Logger
}

func NewExpiryWorker(spec string, accessUC usecase.AccessUseCase, locker red.Locker, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		spec:     spec,
		accessUC: accessUC,
		locker:   locker,
		log:      &exprLog,
	}
}

// Start registers the cron entry and begins scheduling. Stop with Stop.
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.spec, func() { w.sweep(ctx) }); err != nil {
		return err
	}
	w.log.Info().Str("schedule", w.spec).Msg("starting expiry worker")
	w.cron.Start()
	return nil
}

func (w *ExpiryWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	w.log.Info().Msg("expiry worker stopped")
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	token, err := w.locker.TryLock(ctx, expiryLockKey, time.Minute)
	if err != nil {
		w.log.Debug().Msg("expiry sweep skipped, another instance holds the lock")
		return
	}
	defer func() { _ = w.locker.Unlock(ctx, expiryLockKey, token) }()

	n, err := w.accessUC.ProcessExpiredAccesses(ctx)
	if err != nil {
		metrics.IncJobRun("expiry_sweep", "error")
		w.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	metrics.IncJobRun("expiry_sweep", "ok")
	if n > 0 {
		metrics.AddAccessExpired(n)
		w.log.Info().Int("count", n).Msg("entitlements lapsed")
	}
}
