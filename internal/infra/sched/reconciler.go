package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"academy-payments/internal/domain/model"
	"academy-payments/internal/domain/ports/adapter"
	"academy-payments/internal/domain/ports/repository"
	red "academy-payments/internal/infra/redis"
	"academy-payments/internal/infra/worker"
	"academy-payments/internal/usecase"
)

// Reconciler periodically scans for stale pending intents and tries to
// finalize them through PaymentUseCase.ConfirmAuto. This covers clients
// that stopped polling (closed tab, crashed app) and missed gateway
// callbacks.
type Reconciler struct {
	uc         usecase.PaymentUseCase
	payments   repository.PaymentRepository
	pool       *worker.Pool
	locker     red.Locker
	notifier   adapter.OpsNotifier
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending intent must be to retry
	batchSize  int
	log        *zerolog.Logger
}

func NewReconciler(uc usecase.PaymentUseCase, payments repository.PaymentRepository, pool *worker.Pool, locker red.Locker, notifier adapter.OpsNotifier, interval, staleAfter time.Duration, batchSize int, logger *zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Reconciler{
		uc:         uc,
		payments:   payments,
		pool:       pool,
		locker:     locker,
		notifier:   notifier,
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		log:        logger,
	}
}

func (w *Reconciler) Start(ctx context.Context) {
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

func (w *Reconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, nil, cutoff, w.batchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("reconciler: list pending failed")
		return
	}
	for _, p := range pending {
		if p.ReferenceID == "" {
			continue
		}
		refID := p.ReferenceID
		if err := w.pool.Submit(func(ctx context.Context) error {
			return w.confirm(ctx, refID)
		}); err != nil {
			w.log.Warn().Err(err).Str("ref_id", refID).Msg("reconciler: submit skipped")
		}
	}
}

// confirm finalizes one intent under a short redis lock so the API verify
// path and other reconciler workers never confirm the same reference
// concurrently.
func (w *Reconciler) confirm(ctx context.Context, refID string) error {
	key := "reconcile:" + refID
	token, err := w.locker.TryLock(ctx, key, 30*time.Second)
	if err != nil {
		return nil // someone else holds it; not an error
	}
	defer func() { _ = w.locker.Unlock(ctx, key, token) }()

	p, err := w.uc.ConfirmAuto(ctx, refID)
	if err != nil {
		w.log.Warn().Err(err).Str("ref_id", refID).Msg("reconciler: confirm failed")
		return err
	}
	if p.Status.Terminal() {
		w.log.Info().Str("ref_id", refID).Str("status", string(p.Status)).Msg("reconciler: intent finalized")
		kind := "reconciled"
		if p.Status == model.PaymentStatusFailed {
			kind = "failed"
		}
		_ = w.notifier.NotifyPayment(ctx, kind, fmt.Sprintf("intent %s finalized as %s after reconcile", refID, p.Status))
	}
	return nil
}
