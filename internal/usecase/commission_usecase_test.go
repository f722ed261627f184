package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
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

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type commissionFixture struct {
	saleItems     *mocks.MockSaleItemRepository
	beneficiaries *mocks.MockBeneficiaryRepository
	entries       *mocks.MockLedgerEntryRepository
	outbox        *mocks.MockOutboxRepository
	txManager     *mocks.MockTransactionManager
	cache         *mocks.MockReceiptCache
	metrics       *mocks.MockCommissionMetrics
	rates         domain.RateTable
}

func newCommissionFixture() *commissionFixture {
	return &commissionFixture{
		saleItems:     mocks.NewMockSaleItemRepository(),
		beneficiaries: mocks.NewMockBeneficiaryRepository(),
		entries:       mocks.NewMockLedgerEntryRepository(),
		outbox:        mocks.NewMockOutboxRepository(),
		txManager:     mocks.NewMockTransactionManager(),
		cache:         mocks.NewMockReceiptCache(),
		metrics:       mocks.NewMockCommissionMetrics(),
		rates:         domain.DefaultRateTable(),
	}
}

func (f *commissionFixture) useCase() *usecase.CommissionUseCase {
	return usecase.NewCommissionUseCase(usecase.CommissionConfig{
		TxManager:     f.txManager,
		SaleItems:     f.saleItems,
		Beneficiaries: f.beneficiaries,
		Entries:       f.entries,
		Outbox:        f.outbox,
		IDGen:         mocks.NewMockIDGenerator(),
		Cache:         f.cache,
		Metrics:       f.metrics,
		Rates:         f.rates,
		Logger:        zerolog.Nop(),
		Now:           func() time.Time { return fixedNow },
	})
}

func (f *commissionFixture) addBeneficiary(id string, active bool, ancestors ...string) {
	b := &domain.Beneficiary{ID: id, Name: "Member " + id, MembershipActive: active}
	copy(b.Ancestors[:], ancestors)
	f.beneficiaries.Add(b)
}

// seedNetwork creates a stockist, a sponsor with parent_1..parent_3 and an
// unprocessed sale item of the given subtotal.
func (f *commissionFixture) seedNetwork(subtotal int64) {
	f.addBeneficiary("stockist", true)
	f.addBeneficiary("sponsor", true, "p1", "p2", "p3")
	f.addBeneficiary("p1", true)
	f.addBeneficiary("p2", true)
	f.addBeneficiary("p3", true)

	f.saleItems.Add(&domain.SaleLineItem{
		ID:          "item-1",
		ProductID:   "prod-9",
		ProductName: "Herbal Tea",
		Quantity:    2,
		Subtotal:    decimal.NewFromInt(subtotal),
		SellerID:    "sponsor",
		DirectSale:  true,
		StockistID:  "stockist",
	})
}

func requireCommissionError(t *testing.T, res mo.Result[*domain.Receipt], kind domain.ErrorKind) *domain.CommissionError {
	t.Helper()

	require.True(t, res.IsError(), "expected failure result")

	cerr, ok := domain.AsCommissionError(res.Error())
	require.True(t, ok, "expected *domain.CommissionError, got %T", res.Error())
	assert.Equal(t, kind, cerr.Kind)

	return cerr
}

func amountsByRole(entries []*domain.LedgerEntry) map[domain.CommissionType]string {
	out := make(map[domain.CommissionType]string, len(entries))
	for _, e := range entries {
		out[e.CommissionType] = e.Amount.StringFixed(2)
	}

	return out
}

func TestCommissionUseCase_ProcessCommission_EndToEnd(t *testing.T) {
	f := newCommissionFixture()
	f.seedNetwork(100000)

	res := f.useCase().ProcessCommission(context.Background(), "item-1")
	require.True(t, res.IsOk(), "unexpected error: %v", res.Error())

	receipt := res.MustGet()
	assert.Equal(t, "22500.00", receipt.TotalCommission.StringFixed(2))
	assert.Equal(t, "77500.00", receipt.BalanceAfterCommission.StringFixed(2))
	assert.Equal(t, 5, receipt.BeneficiaryCount())
	require.Len(t, receipt.Payouts, 5)

	roles := []domain.CommissionType{
		domain.CommissionTypeStockist,
		domain.CommissionTypeSponsor,
		domain.ParentLevelType(1),
		domain.ParentLevelType(2),
		domain.ParentLevelType(3),
	}
	for i, role := range roles {
		assert.Equal(t, role, receipt.Payouts[i].Role)
	}

	entries := f.entries.All()
	require.Len(t, entries, 5)
	assert.Equal(t, map[domain.CommissionType]string{
		domain.CommissionTypeStockist: "7000.00",
		domain.CommissionTypeSponsor:  "8000.00",
		domain.ParentLevelType(1):     "3000.00",
		domain.ParentLevelType(2):     "2500.00",
		domain.ParentLevelType(3):     "2000.00",
	}, amountsByRole(entries))

	for _, e := range entries {
		assert.Equal(t, "item-1", e.CommissionReferenceID)
		assert.Equal(t, domain.SourceProductCommission, e.Source)
		assert.Contains(t, e.Description, "Herbal Tea")
	}

	item := f.saleItems.Get("item-1")
	assert.True(t, item.CommissionIsProcessed)
	require.NotNil(t, item.CommissionProcessedAt)
	assert.True(t, item.CommissionProcessedAt.Equal(fixedNow))
	assert.Equal(t, "22500.00", item.TotalCommissionAmount.StringFixed(2))
	assert.Equal(t, "77500.00", item.BalanceAfterCommission.StringFixed(2))
	assert.Equal(t, "7000.00", item.StockistCommission.StringFixed(2))
	assert.Equal(t, "8000.00", item.SponsorCommission.StringFixed(2))
	assert.Equal(t, []string{"p1", "p2", "p3", ""}, item.LevelBeneficiaryIDs[:4])
	assert.Equal(t, "2500.00", item.LevelCommissions[1].StringFixed(2))

	assert.Nil(t, domain.CheckConservation(item, entries))

	events := f.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeCommissionProcessed, events[0].EventType)
	assert.Equal(t, "item-1", events[0].AggregateID)

	var body domain.CommissionProcessedEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &body))
	assert.Equal(t, "22500.00", body.TotalCommission)
	assert.Equal(t, "sponsor", body.SellerID)
	assert.Len(t, body.Payouts, len(receipt.Payouts))

	cached, err := f.cache.Get(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, receipt, cached)

	assert.Equal(t, []string{usecase.OutcomeProcessed}, f.metrics.Outcomes)
}

func TestCommissionUseCase_ProcessCommission_Idempotent(t *testing.T) {
	f := newCommissionFixture()
	f.seedNetwork(100000)
	uc := f.useCase()

	require.True(t, uc.ProcessCommission(context.Background(), "item-1").IsOk())

	res := uc.ProcessCommission(context.Background(), "item-1")
	cerr := requireCommissionError(t, res, domain.KindAlreadyProcessed)
	assert.True(t, cerr.Soft())
	assert.True(t, errors.Is(cerr, domain.ErrAlreadyProcessed))

	assert.Len(t, f.entries.All(), 5)
	assert.Len(t, f.outbox.Events(), 1)
}

func TestCommissionUseCase_ProcessCommission_AncestorChain(t *testing.T) {
	tests := []struct {
		name          string
		ancestors     []string
		setup         func(f *commissionFixture)
		expectedRoles []domain.CommissionType
		expectedIDs   []string
	}{
		{
			name:      "gap truncates the walk",
			ancestors: []string{"p1", "p2", "", "p4"},
			setup: func(f *commissionFixture) {
				f.addBeneficiary("p1", true)
				f.addBeneficiary("p2", true)
				f.addBeneficiary("p4", true)
			},
			expectedRoles: []domain.CommissionType{domain.ParentLevelType(1), domain.ParentLevelType(2)},
			expectedIDs:   []string{"p1", "p2", "", ""},
		},
		{
			name:      "inactive ancestor is skipped but walk continues",
			ancestors: []string{"p1", "p2", "p3", "p4"},
			setup: func(f *commissionFixture) {
				f.addBeneficiary("p1", true)
				f.addBeneficiary("p2", true)
				f.addBeneficiary("p3", false)
				f.addBeneficiary("p4", true)
			},
			expectedRoles: []domain.CommissionType{domain.ParentLevelType(1), domain.ParentLevelType(2), domain.ParentLevelType(4)},
			expectedIDs:   []string{"p1", "p2", "p3", "p4"},
		},
		{
			name:      "missing ancestor record is skipped but walk continues",
			ancestors: []string{"p1", "ghost", "p3"},
			setup: func(f *commissionFixture) {
				f.addBeneficiary("p1", true)
				f.addBeneficiary("p3", true)
			},
			expectedRoles: []domain.CommissionType{domain.ParentLevelType(1), domain.ParentLevelType(3)},
			expectedIDs:   []string{"p1", "ghost", "p3", ""},
		},
		{
			name:          "no ancestors",
			ancestors:     nil,
			setup:         func(*commissionFixture) {},
			expectedRoles: nil,
			expectedIDs:   []string{"", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCommissionFixture()
			f.addBeneficiary("sponsor", true, tt.ancestors...)
			tt.setup(f)
			f.saleItems.Add(&domain.SaleLineItem{
				ID:         "item-1",
				Subtotal:   decimal.NewFromInt(100000),
				SellerID:   "sponsor",
				DirectSale: true,
			})

			res := f.useCase().ProcessCommission(context.Background(), "item-1")
			require.True(t, res.IsOk(), "unexpected error: %v", res.Error())

			var levelRoles []domain.CommissionType
			for _, e := range f.entries.All() {
				if e.CommissionType.Level() > 0 {
					levelRoles = append(levelRoles, e.CommissionType)
				}
			}
			assert.Equal(t, tt.expectedRoles, levelRoles)

			item := f.saleItems.Get("item-1")
			assert.Equal(t, tt.expectedIDs, item.LevelBeneficiaryIDs[:4])
			assert.Nil(t, domain.CheckConservation(item, f.entries.All()))
		})
	}
}

func TestCommissionUseCase_ProcessCommission_RateCorrectness(t *testing.T) {
	f := newCommissionFixture()
	f.addBeneficiary("stockist", true)
	f.addBeneficiary("sponsor", true, "p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10")
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10"} {
		f.addBeneficiary(id, true)
	}
	f.saleItems.Add(&domain.SaleLineItem{
		ID:         "item-1",
		Subtotal:   decimal.RequireFromString("333.33"),
		SellerID:   "sponsor",
		DirectSale: true,
		StockistID: "stockist",
	})

	res := f.useCase().ProcessCommission(context.Background(), "item-1")
	require.True(t, res.IsOk(), "unexpected error: %v", res.Error())

	got := amountsByRole(f.entries.All())
	require.Len(t, got, 12)

	subtotal := decimal.RequireFromString("333.33")
	for role, amount := range got {
		want := subtotal.Mul(f.rates.RateFor(role)).Div(decimal.NewFromInt(100)).Round(2)
		assert.Equal(t, want.StringFixed(2), amount, "role %s", role)
	}

	assert.Equal(t, "26.67", got[domain.CommissionTypeSponsor])
	assert.Equal(t, "23.33", got[domain.CommissionTypeStockist])
	assert.Equal(t, "0.67", got[domain.ParentLevelType(10)])

	for _, e := range f.entries.All() {
		assert.True(t, e.Rate.Equal(f.rates.RateFor(e.CommissionType)), "stored rate for %s: %s", e.CommissionType, e.Rate)
	}

	item := f.saleItems.Get("item-1")
	assert.Nil(t, domain.CheckConservation(item, f.entries.All()))
}

func TestCommissionUseCase_ProcessCommission_Preconditions(t *testing.T) {
	tests := []struct {
		name string
		item *domain.SaleLineItem
		kind domain.ErrorKind
		soft bool
	}{
		{
			name: "already processed",
			item: &domain.SaleLineItem{ID: "item-1", Subtotal: decimal.NewFromInt(100), SellerID: "sponsor", DirectSale: true, CommissionIsProcessed: true},
			kind: domain.KindAlreadyProcessed,
			soft: true,
		},
		{
			name: "no seller id",
			item: &domain.SaleLineItem{ID: "item-1", Subtotal: decimal.NewFromInt(100), DirectSale: true},
			kind: domain.KindNoEligibleSeller,
			soft: true,
		},
		{
			name: "not a direct sale",
			item: &domain.SaleLineItem{ID: "item-1", Subtotal: decimal.NewFromInt(100), SellerID: "sponsor"},
			kind: domain.KindNoEligibleSeller,
			soft: true,
		},
		{
			name: "zero subtotal",
			item: &domain.SaleLineItem{ID: "item-1", Subtotal: decimal.Zero, SellerID: "sponsor", DirectSale: true},
			kind: domain.KindInvalidAmount,
		},
		{
			name: "negative subtotal",
			item: &domain.SaleLineItem{ID: "item-1", Subtotal: decimal.NewFromInt(-5), SellerID: "sponsor", DirectSale: true},
			kind: domain.KindInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCommissionFixture()
			f.addBeneficiary("sponsor", true)
			f.saleItems.Add(tt.item)

			res := f.useCase().ProcessCommission(context.Background(), "item-1")
			cerr := requireCommissionError(t, res, tt.kind)
			assert.Equal(t, tt.soft, cerr.Soft())

			assert.Empty(t, f.entries.All())
			assert.Empty(t, f.txManager.Transactions(), "no transaction should be started")
			assert.Equal(t, tt.item.CommissionIsProcessed, f.saleItems.Get("item-1").CommissionIsProcessed)
			assert.Equal(t, []string{string(tt.kind)}, f.metrics.Outcomes)
		})
	}
}

func TestCommissionUseCase_ProcessCommission_FatalRollsBack(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *commissionFixture)
		kind  domain.ErrorKind
	}{
		{
			name:  "seller not found",
			setup: func(f *commissionFixture) { f.addBeneficiary("stockist", true) },
			kind:  domain.KindSellerNotFound,
		},
		{
			name: "seller inactive",
			setup: func(f *commissionFixture) {
				f.addBeneficiary("stockist", true)
				f.addBeneficiary("sponsor", false, "p1")
				f.addBeneficiary("p1", true)
			},
			kind: domain.KindSellerInactive,
		},
		{
			name: "sponsor rate misconfigured",
			setup: func(f *commissionFixture) {
				f.addBeneficiary("stockist", true)
				f.addBeneficiary("sponsor", true)
				f.rates = domain.RateTable{}
			},
			kind: domain.KindInvalidCommissionAmount,
		},
		{
			name: "outbox write fails",
			setup: func(f *commissionFixture) {
				f.addBeneficiary("stockist", true)
				f.addBeneficiary("sponsor", true)
				f.outbox.CreateFunc = func(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
					return errors.New("connection reset")
				}
			},
			kind: domain.KindStoreFailure,
		},
		{
			name: "commit fails",
			setup: func(f *commissionFixture) {
				f.addBeneficiary("stockist", true)
				f.addBeneficiary("sponsor", true)
				f.txManager.BeginFunc = func(context.Context) (usecase.Transaction, error) {
					return &mocks.MockTransaction{
						CommitFunc: func(context.Context) error { return errors.New("commit failed") },
					}, nil
				}
			},
			kind: domain.KindStoreFailure,
		},
		{
			name: "begin fails",
			setup: func(f *commissionFixture) {
				f.addBeneficiary("sponsor", true)
				f.txManager.BeginFunc = func(context.Context) (usecase.Transaction, error) {
					return nil, errors.New("pool exhausted")
				}
			},
			kind: domain.KindStoreFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCommissionFixture()
			tt.setup(f)
			f.saleItems.Add(&domain.SaleLineItem{
				ID:         "item-1",
				Subtotal:   decimal.NewFromInt(1000),
				SellerID:   "sponsor",
				DirectSale: true,
				StockistID: "stockist",
			})

			res := f.useCase().ProcessCommission(context.Background(), "item-1")
			cerr := requireCommissionError(t, res, tt.kind)
			assert.False(t, cerr.Soft())
			assert.Equal(t, tt.kind == domain.KindStoreFailure, cerr.Kind.Retryable())

			assert.Empty(t, f.entries.All(), "ledger must be unchanged")
			assert.Empty(t, f.outbox.Events())
			assert.False(t, f.saleItems.Get("item-1").CommissionIsProcessed)

			_, err := f.cache.Get(context.Background(), "item-1")
			assert.ErrorIs(t, err, domain.ErrReceiptNotCached)
		})
	}
}

func TestCommissionUseCase_ProcessCommission_Stockist(t *testing.T) {
	tests := []struct {
		name          string
		stockistID    string
		setup         func(f *commissionFixture)
		expectedCount int
	}{
		{
			name:          "inactive stockist skipped",
			stockistID:    "stockist",
			setup:         func(f *commissionFixture) { f.addBeneficiary("stockist", false) },
			expectedCount: 1,
		},
		{
			name:          "missing stockist record skipped",
			stockistID:    "ghost",
			setup:         func(*commissionFixture) {},
			expectedCount: 1,
		},
		{
			name:          "no stockist on item",
			setup:         func(*commissionFixture) {},
			expectedCount: 1,
		},
		{
			name:          "active stockist paid",
			stockistID:    "stockist",
			setup:         func(f *commissionFixture) { f.addBeneficiary("stockist", true) },
			expectedCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCommissionFixture()
			f.addBeneficiary("sponsor", true)
			tt.setup(f)
			f.saleItems.Add(&domain.SaleLineItem{
				ID:         "item-1",
				Subtotal:   decimal.NewFromInt(1000),
				SellerID:   "sponsor",
				DirectSale: true,
				StockistID: tt.stockistID,
			})

			res := f.useCase().ProcessCommission(context.Background(), "item-1")
			require.True(t, res.IsOk(), "unexpected error: %v", res.Error())
			assert.Len(t, f.entries.All(), tt.expectedCount)
		})
	}
}

func TestCommissionUseCase_ProcessCommission_ReusesExistingEntry(t *testing.T) {
	f := newCommissionFixture()
	f.seedNetwork(100000)
	f.entries.Add(&domain.LedgerEntry{
		ID:                    "existing",
		UserID:                "sponsor",
		Amount:                decimal.NewFromInt(8000),
		Rate:                  decimal.NewFromInt(8),
		CommissionType:        domain.CommissionTypeSponsor,
		CommissionReferenceID: "item-1",
	})

	res := f.useCase().ProcessCommission(context.Background(), "item-1")
	require.True(t, res.IsOk(), "unexpected error: %v", res.Error())

	assert.Len(t, f.entries.All(), 5)
	assert.Equal(t, "existing", res.MustGet().Payouts[1].LedgerEntryID)
	assert.Equal(t, "8", res.MustGet().Payouts[1].Rate.String())
	assert.Nil(t, domain.CheckConservation(f.saleItems.Get("item-1"), f.entries.All()))
}

func TestCommissionUseCase_ProcessCommission_LockedRecheck(t *testing.T) {
	f := newCommissionFixture()
	f.seedNetwork(1000)
	f.saleItems.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.SaleLineItem, error) {
		item, err := f.saleItems.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// Another worker committed between the fast check and the lock.
		item.CommissionIsProcessed = true
		return item, nil
	}

	res := f.useCase().ProcessCommission(context.Background(), "item-1")
	requireCommissionError(t, res, domain.KindAlreadyProcessed)

	assert.Empty(t, f.entries.All())
	txs := f.txManager.Transactions()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].RolledBack)
}

func TestCommissionUseCase_ProcessCommission_SaleItemNotFound(t *testing.T) {
	f := newCommissionFixture()

	res := f.useCase().ProcessCommission(context.Background(), "missing")
	cerr := requireCommissionError(t, res, domain.KindSaleItemNotFound)
	assert.ErrorIs(t, cerr, domain.ErrSaleItemNotFound)
}
