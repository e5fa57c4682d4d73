package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xavierca1/consult-intake/internal/entity"
	"go.uber.org/zap"
)

const (
	DefaultSweepSchedule = "@every 15m"
	DefaultStaleAfter    = 30 * time.Minute

	sweepLimit   = 200
	sweepTimeout = 2 * time.Minute
)

type PendingLister interface {
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]*entity.ConsultationSubmission, error)
}

type Gauge interface {
	Set(float64)
}

// PendingDeliveryWorker reports submissions whose webhook never went out. It only
// reads; reconciliation stays with redelivery or a human.
type PendingDeliveryWorker struct {
	repo       PendingLister
	gauge      Gauge
	log        *zap.Logger
	staleAfter time.Duration
	schedule   string
	cron       *cron.Cron
	now        func() time.Time
}

func NewPendingDeliveryWorker(repo PendingLister, gauge Gauge, log *zap.Logger, schedule string, staleAfter time.Duration) *PendingDeliveryWorker {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PendingDeliveryWorker{
		repo:       repo,
		gauge:      gauge,
		log:        log.Named("pending_delivery_worker"),
		staleAfter: staleAfter,
		schedule:   schedule,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start schedules the sweep, runs it once immediately and blocks until ctx is done.
func (w *PendingDeliveryWorker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
		defer cancel()
		w.Sweep(runCtx)
	})
	if err != nil {
		return fmt.Errorf("schedule pending sweep %q: %w", w.schedule, err)
	}

	w.log.Info("pending delivery sweep scheduled",
		zap.String("schedule", w.schedule), zap.Duration("stale_after", w.staleAfter))

	w.Sweep(ctx)
	w.cron.Start()

	<-ctx.Done()
	<-w.cron.Stop().Done()
	w.log.Info("pending delivery sweep stopped")
	return nil
}

// Sweep returns the number of stale submissions found, or -1 when the query failed.
func (w *PendingDeliveryWorker) Sweep(ctx context.Context) int {
	cutoff := w.now().Add(-w.staleAfter)

	pending, err := w.repo.ListStalePending(ctx, cutoff, sweepLimit)
	if err != nil {
		w.log.Error("failed to list pending deliveries", zap.Error(err))
		return -1
	}

	if w.gauge != nil {
		w.gauge.Set(float64(len(pending)))
	}

	if len(pending) == 0 {
		w.log.Debug("no stale pending deliveries")
		return 0
	}

	for _, s := range pending {
		w.log.Warn("submission still awaiting webhook delivery",
			zap.String("submission_id", s.SubmissionID),
			zap.String("email", s.Email),
			zap.String("primary_service", s.PrimaryService),
			zap.Duration("age", w.now().Sub(s.CreatedAt).Round(time.Minute)))
	}
	w.log.Warn("stale pending deliveries found", zap.Int("count", len(pending)))

	return len(pending)
}
