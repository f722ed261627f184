package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
	"github.com/iho/gocommission/internal/usecase/mocks"
)

type stubProcessor struct {
	results map[string]mo.Result[*domain.Receipt]
	calls   atomic.Int32
}

func (s *stubProcessor) ProcessCommission(_ context.Context, id string) mo.Result[*domain.Receipt] {
	s.calls.Add(1)
	return s.results[id]
}

func pendingItem(id string) *domain.SaleLineItem {
	return &domain.SaleLineItem{ID: id, Subtotal: decimal.NewFromInt(100), SellerID: "sponsor", DirectSale: true}
}

func TestBatchUseCase_ProcessPending(t *testing.T) {
	saleItems := mocks.NewMockSaleItemRepository()
	for _, id := range []string{"a", "b", "c", "d"} {
		saleItems.Add(pendingItem(id))
	}
	done := pendingItem("done")
	done.CommissionIsProcessed = true
	saleItems.Add(done)

	processor := &stubProcessor{results: map[string]mo.Result[*domain.Receipt]{
		"a": mo.Ok(&domain.Receipt{SaleItemID: "a", TotalCommission: decimal.RequireFromString("10.50")}),
		"b": mo.Ok(&domain.Receipt{SaleItemID: "b", TotalCommission: decimal.RequireFromString("4.50")}),
		"c": mo.Err[*domain.Receipt](domain.NewCommissionError(domain.KindNoEligibleSeller, "c", nil)),
		"d": mo.Err[*domain.Receipt](domain.NewCommissionError(domain.KindSellerInactive, "d", nil)),
	}}

	uc := usecase.NewBatchUseCase(saleItems, processor, 2, zerolog.Nop())

	summary, err := uc.ProcessPending(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Attempted)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "15.00", summary.TotalCommission.StringFixed(2))
	assert.Contains(t, summary.Failures, "d")
	assert.EqualValues(t, 4, processor.calls.Load())
}

func TestBatchUseCase_ProcessPending_RespectsLimit(t *testing.T) {
	saleItems := mocks.NewMockSaleItemRepository()
	for _, id := range []string{"a", "b", "c"} {
		saleItems.Add(pendingItem(id))
	}

	processor := &stubProcessor{results: map[string]mo.Result[*domain.Receipt]{
		"a": mo.Ok(&domain.Receipt{TotalCommission: decimal.NewFromInt(1)}),
		"b": mo.Ok(&domain.Receipt{TotalCommission: decimal.NewFromInt(1)}),
	}}

	summary, err := usecase.NewBatchUseCase(saleItems, processor, 0, zerolog.Nop()).
		ProcessPending(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.True(t, summary.More)
	assert.Equal(t, "b", summary.Next.ID)
}

func TestBatchUseCase_ProcessPending_ListError(t *testing.T) {
	saleItems := mocks.NewMockSaleItemRepository()
	saleItems.ListUnprocessedFunc = func(context.Context, domain.SaleItemCursor, int) ([]*domain.SaleLineItem, error) {
		return nil, errors.New("db down")
	}

	_, err := usecase.NewBatchUseCase(saleItems, &stubProcessor{}, 1, zerolog.Nop()).
		ProcessPending(context.Background(), 10)
	assert.Error(t, err)
}

func TestBatchUseCase_ProcessPending_Cancelled(t *testing.T) {
	saleItems := mocks.NewMockSaleItemRepository()
	saleItems.Add(pendingItem("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := &stubProcessor{}
	_, err := usecase.NewBatchUseCase(saleItems, processor, 1, zerolog.Nop()).ProcessPending(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, processor.calls.Load())
}

func TestBatchUseCase_ProcessPending_SkipsItemsThatCannotBeCommissioned(t *testing.T) {
	f := newCommissionFixture()
	f.seedNetwork(1000)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f.saleItems.Add(&domain.SaleLineItem{
		ID: "a-nodirect", Subtotal: decimal.NewFromInt(500), SellerID: "sponsor", DirectSale: false, CreatedAt: base,
	})
	f.saleItems.Add(&domain.SaleLineItem{
		ID: "b-noseller", Subtotal: decimal.NewFromInt(500), DirectSale: true, CreatedAt: base,
	})
	f.saleItems.Add(&domain.SaleLineItem{
		ID: "c-zero", Subtotal: decimal.Zero, SellerID: "sponsor", DirectSale: true, CreatedAt: base,
	})
	f.saleItems.Add(&domain.SaleLineItem{
		ID: "d-good", Subtotal: decimal.NewFromInt(1000), SellerID: "sponsor", DirectSale: true, CreatedAt: base.Add(time.Hour),
	})

	uc := usecase.NewBatchUseCase(f.saleItems, f.useCase(), 1, zerolog.Nop())

	summary, err := uc.ProcessPending(context.Background(), 2)
	require.NoError(t, err)

	// item-1 (zero created_at) and d-good; the three blocked items are never listed.
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 2, summary.Processed)
	assert.Zero(t, summary.Skipped)
	assert.True(t, f.saleItems.Get("d-good").CommissionIsProcessed)
	assert.False(t, f.saleItems.Get("a-nodirect").CommissionIsProcessed)

	summary, err = uc.ProcessPending(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, summary.Attempted)
	assert.False(t, summary.More)
}

func TestBatchUseCase_ProcessPage_MovesPastFailingItems(t *testing.T) {
	f := newCommissionFixture()
	f.seedNetwork(1000)
	f.addBeneficiary("inactive", false)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a-inactive", "b-inactive"} {
		f.saleItems.Add(&domain.SaleLineItem{
			ID: id, Subtotal: decimal.NewFromInt(500), SellerID: "inactive", DirectSale: true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	f.saleItems.Add(&domain.SaleLineItem{
		ID: "c-good", Subtotal: decimal.NewFromInt(1000), SellerID: "sponsor", DirectSale: true, CreatedAt: base.Add(time.Hour),
	})

	// item-1 from the seeded network sorts first; process it out of the way.
	require.True(t, f.useCase().ProcessCommission(context.Background(), "item-1").IsOk())

	uc := usecase.NewBatchUseCase(f.saleItems, f.useCase(), 1, zerolog.Nop())

	first, err := uc.ProcessPage(context.Background(), domain.SaleItemCursor{}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Failed)
	assert.True(t, first.More)
	assert.Equal(t, "b-inactive", first.Next.ID)

	second, err := uc.ProcessPage(context.Background(), first.Next, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.False(t, second.More)
	assert.True(t, f.saleItems.Get("c-good").CommissionIsProcessed)
}
