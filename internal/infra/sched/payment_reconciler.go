package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"elearning-platform/internal/domain/ports/repository"
	"elearning-platform/internal/infra/metrics"
	"elearning-platform/internal/usecase"
)

// PaymentReconciler periodically scans for stale pending payments and
// cancels them. This covers checkouts the user abandoned and callbacks
// that never arrived; a completed-but-unrecorded payment would surface
// through the gateway webhook retry, never through this path.
type PaymentReconciler struct {
	uc         usecase.PaymentUseCase
	payments   repository.PaymentRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to cancel
	log        *zerolog.Logger
}

func NewPaymentReconciler(uc usecase.PaymentUseCase, payments repository.PaymentRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	recLog := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{uc: uc, payments: payments, interval: interval, staleAfter: staleAfter, log: &recLog}
}

func (w *PaymentReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		metrics.IncJobRun("payment_reconcile", "error")
		w.log.Error().Err(err).Msg("list pending failed")
		return
	}
	for _, p := range pending {
		if _, err := w.uc.Cancel(ctx, p.ID); err != nil {
			// Racing a live completion is fine; the guard rejects us.
			w.log.Warn().Err(err).Str("payment_id", p.ID).Msg("cancel stale payment failed")
			continue
		}
		w.log.Info().Str("payment_id", p.ID).Msg("stale pending payment cancelled")
	}
	metrics.IncJobRun("payment_reconcile", "ok")
}
