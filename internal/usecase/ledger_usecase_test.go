package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name        string
		repo        *fakeLedgerRepository
		want        bool
		expectedErr error
	}{
		{
			name: "happy path no violations",
			repo: &fakeLedgerRepository{},
			want: true,
		},
		{
			name: "repo error surfaces",
			repo: &fakeLedgerRepository{
				err: errors.New("db down"),
			},
			want:        false,
			expectedErr: errors.New("db down"),
		},
		{
			name: "entries disagree with total",
			repo: &fakeLedgerRepository{
				violations: []*domain.ConservationViolation{{
					SaleItemID:            "item-1",
					TotalCommissionAmount: decimal.NewFromInt(100),
					EntriesTotal:          decimal.NewFromInt(90),
				}},
			},
			want:        false,
			expectedErr: ErrInconsistentLedger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewLedgerUseCase(tt.repo, &fakeSaleItemRepository{}, &fakeEntryRepository{})
			report, err := uc.CheckConsistency(context.Background())

			if tt.expectedErr != nil {
				if err == nil || err.Error() != tt.expectedErr.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := report != nil && report.Consistent
			if got != tt.want {
				t.Fatalf("CheckConsistency() consistent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedgerUseCase_RepositoryInvoked(t *testing.T) {
	repo := &fakeLedgerRepository{}
	uc := NewLedgerUseCase(repo, &fakeSaleItemRepository{}, &fakeEntryRepository{})

	if _, err := uc.CheckConsistency(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.calls != 1 {
		t.Fatalf("expected CheckConsistency to call repository once, got %d", repo.calls)
	}

	if repo.lastLimit != maxReportedViolations {
		t.Fatalf("expected limit %d, got %d", maxReportedViolations, repo.lastLimit)
	}
}

func TestLedgerUseCase_CheckSaleItem(t *testing.T) {
	processed := &domain.SaleLineItem{
		ID:                     "item-1",
		Subtotal:               decimal.NewFromInt(1000),
		CommissionIsProcessed:  true,
		TotalCommissionAmount:  decimal.NewFromInt(150),
		BalanceAfterCommission: decimal.NewFromInt(850),
	}

	tests := []struct {
		name        string
		item        *domain.SaleLineItem
		entries     []*domain.LedgerEntry
		expectedErr error
	}{
		{
			name: "conserved",
			item: processed,
			entries: []*domain.LedgerEntry{
				{Amount: decimal.NewFromInt(80)},
				{Amount: decimal.NewFromInt(70)},
			},
		},
		{
			name:        "missing entry",
			item:        processed,
			entries:     []*domain.LedgerEntry{{Amount: decimal.NewFromInt(80)}},
			expectedErr: domain.ErrConservationViolated,
		},
		{
			name:        "not processed",
			item:        &domain.SaleLineItem{ID: "item-1"},
			expectedErr: domain.ErrSaleItemNotProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewLedgerUseCase(
				&fakeLedgerRepository{},
				&fakeSaleItemRepository{item: tt.item},
				&fakeEntryRepository{entries: tt.entries},
			)

			err := uc.CheckSaleItem(context.Background(), "item-1")
			if tt.expectedErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

type recordingConsistencyObserver struct {
	counts []int
}

func (o *recordingConsistencyObserver) RecordConsistency(violations int) {
	o.counts = append(o.counts, violations)
}

func TestLedgerUseCase_ObserverSeesViolationCount(t *testing.T) {
	repo := &fakeLedgerRepository{
		violations: []*domain.ConservationViolation{{SaleItemID: "a"}, {SaleItemID: "b"}},
	}
	observer := &recordingConsistencyObserver{}
	uc := NewLedgerUseCase(repo, &fakeSaleItemRepository{}, &fakeEntryRepository{}).WithObserver(observer)

	if _, err := uc.CheckConsistency(context.Background()); !errors.Is(err, ErrInconsistentLedger) {
		t.Fatalf("expected ErrInconsistentLedger, got %v", err)
	}

	if len(observer.counts) != 1 || observer.counts[0] != 2 {
		t.Fatalf("expected one observation of 2 violations, got %v", observer.counts)
	}
}

type fakeLedgerRepository struct {
	violations []*domain.ConservationViolation
	err        error
	calls      int
	lastLimit  int
}

func (f *fakeLedgerRepository) FindConservationViolations(_ context.Context, limit int) ([]*domain.ConservationViolation, error) {
	f.calls++
	f.lastLimit = limit
	return f.violations, f.err
}

type fakeSaleItemRepository struct {
	item *domain.SaleLineItem
}

func (f *fakeSaleItemRepository) GetByID(context.Context, string) (*domain.SaleLineItem, error) {
	if f.item == nil {
		return nil, domain.ErrSaleItemNotFound
	}
	return f.item, nil
}
func (f *fakeSaleItemRepository) GetByIDForUpdate(ctx context.Context, _ Transaction, id string) (*domain.SaleLineItem, error) {
	return f.GetByID(ctx, id)
}
func (f *fakeSaleItemRepository) MarkProcessed(context.Context, Transaction, *domain.SaleLineItem) error {
	return errors.New("not implemented")
}
func (f *fakeSaleItemRepository) ListUnprocessed(context.Context, domain.SaleItemCursor, int) ([]*domain.SaleLineItem, error) {
	return nil, nil
}

type fakeEntryRepository struct {
	entries []*domain.LedgerEntry
}

func (f *fakeEntryRepository) Create(context.Context, Transaction, *domain.LedgerEntry) error {
	return errors.New("not implemented")
}
func (f *fakeEntryRepository) FindByReference(context.Context, Transaction, string, domain.CommissionType, string) (*domain.LedgerEntry, error) {
	return nil, domain.ErrLedgerEntryNotFound
}
func (f *fakeEntryRepository) ListByReference(context.Context, string) ([]*domain.LedgerEntry, error) {
	return f.entries, nil
}
func (f *fakeEntryRepository) ListByUser(context.Context, string, int, int) ([]*domain.LedgerEntry, error) {
	return f.entries, nil
}
func (f *fakeEntryRepository) SumByUser(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
