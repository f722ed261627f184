package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
)

// BatchProcessor processes a page of pending sale items.
type BatchProcessor interface {
	ProcessPage(ctx context.Context, after domain.SaleItemCursor, limit int) (*usecase.BatchSummary, error)
}

// Observer is notified after every run.
type Observer interface {
	RecordBatch(processed, skipped, failed int, err error)
}

type nopObserver struct{}

func (nopObserver) RecordBatch(int, int, int, error) {}

// Config for CommissionWorker.
type Config struct {
	Processor BatchProcessor
	Observer  Observer // optional
	Logger    zerolog.Logger
	BatchSize int
	Interval  time.Duration
}

// CommissionWorker periodically processes sale items that have not been
// commissioned yet, for example after a crash between sale and commission.
// Each run continues after the last item of the previous one and wraps to
// the head once a short page shows the queue was drained, so items that keep
// failing cannot hold back newer ones.
type CommissionWorker struct {
	processor BatchProcessor
	observer  Observer
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	cursor    domain.SaleItemCursor
}

// NewCommissionWorker creates a new CommissionWorker.
func NewCommissionWorker(cfg Config) *CommissionWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	return &CommissionWorker{
		processor: cfg.Processor,
		observer:  cfg.Observer,
		logger:    cfg.Logger.With().Str("component", "commission_worker").Logger(),
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Start runs until the context is cancelled.
func (w *CommissionWorker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("batch_size", w.batchSize).
		Dur("interval", w.interval).
		Msg("commission worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("commission worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processes one batch and reports it. It is not safe for concurrent use.
func (w *CommissionWorker) RunOnce(ctx context.Context) {
	summary, err := w.processor.ProcessPage(ctx, w.cursor, w.batchSize)
	if err != nil {
		w.observer.RecordBatch(0, 0, 0, err)
		if ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("commission batch failed")
		}
		return
	}

	w.observer.RecordBatch(summary.Processed, summary.Skipped, summary.Failed, nil)

	if summary.More {
		w.cursor = summary.Next
	} else {
		w.cursor = domain.SaleItemCursor{}
	}

	if summary.Attempted == 0 {
		return
	}

	event := w.logger.Info()
	if summary.Failed > 0 {
		event = w.logger.Warn().Interface("failures", summary.Failures)
	}

	event.
		Int("attempted", summary.Attempted).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Str("total_commission", summary.TotalCommission.StringFixed(2)).
		Msg("commission batch finished")
}
