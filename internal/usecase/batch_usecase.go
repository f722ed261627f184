package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/gocommission/internal/domain"
)

// CommissionProcessor processes a single sale item.
type CommissionProcessor interface {
	ProcessCommission(ctx context.Context, saleItemID string) mo.Result[*domain.Receipt]
}

// BatchUseCase processes pending sale items with bounded concurrency.
type BatchUseCase struct {
	saleItems   SaleItemRepository
	processor   CommissionProcessor
	concurrency int
	logger      zerolog.Logger
}

// NewBatchUseCase creates a new BatchUseCase.
func NewBatchUseCase(saleItems SaleItemRepository, processor CommissionProcessor, concurrency int, logger zerolog.Logger) *BatchUseCase {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchUseCase{
		saleItems:   saleItems,
		processor:   processor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// BatchSummary reports the outcome of a batch run.
type BatchSummary struct {
	Attempted       int
	Processed       int
	Skipped         int
	Failed          int
	TotalCommission decimal.Decimal
	// Failures maps sale item id to the fatal error message.
	Failures map[string]string
	// Next is the position of the last listed item. More is set when the
	// page was full and items may remain after Next.
	Next domain.SaleItemCursor
	More bool
}

// ProcessPending processes up to limit of the oldest sale items awaiting
// commission.
func (uc *BatchUseCase) ProcessPending(ctx context.Context, limit int) (*BatchSummary, error) {
	return uc.ProcessPage(ctx, domain.SaleItemCursor{}, limit)
}

// ProcessPage processes up to limit sale items awaiting commission that sort
// after the cursor. Individual item failures are counted in the summary; only
// listing errors and cancellation are returned.
func (uc *BatchUseCase) ProcessPage(ctx context.Context, after domain.SaleItemCursor, limit int) (*BatchSummary, error) {
	limit, _ = domain.ValidatePagination(limit, 0)

	items, err := uc.saleItems.ListUnprocessed(ctx, after, limit)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		TotalCommission: decimal.Zero,
		Failures:        make(map[string]string),
		Next:            after,
		More:            len(items) == limit,
	}

	if len(items) > 0 {
		summary.Next = items[len(items)-1].Cursor()
	}

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}

		id := item.ID

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := uc.processor.ProcessCommission(gctx, id)

			mu.Lock()
			defer mu.Unlock()

			summary.Attempted++

			if receipt, err := res.Get(); err == nil {
				summary.Processed++
				summary.TotalCommission = summary.TotalCommission.Add(receipt.TotalCommission)

				return nil
			}

			if cerr, ok := domain.AsCommissionError(res.Error()); ok && cerr.Soft() {
				summary.Skipped++
				return nil
			}

			summary.Failed++
			summary.Failures[id] = res.Error().Error()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	uc.logger.Info().
		Int("attempted", summary.Attempted).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Str("total_commission", summary.TotalCommission.StringFixed(2)).
		Msg("commission batch finished")

	return summary, nil
}
