package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/gocommission/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when processed sale items disagree with their entries.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: commission totals do not match entries")
)

// maxReportedViolations caps a consistency report.
const maxReportedViolations = 100

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo   LedgerRepository
	saleItemRepo SaleItemRepository
	entryRepo    LedgerEntryRepository
	observer     ConsistencyObserver
}

// ConsistencyObserver is told how many violations each full check found.
type ConsistencyObserver interface {
	RecordConsistency(violations int)
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository, saleItemRepo SaleItemRepository, entryRepo LedgerEntryRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo:   ledgerRepo,
		saleItemRepo: saleItemRepo,
		entryRepo:    entryRepo,
	}
}

// WithObserver sets the observer notified after each CheckConsistency.
func (uc *LedgerUseCase) WithObserver(o ConsistencyObserver) *LedgerUseCase {
	uc.observer = o
	return uc
}

// ConsistencyReport is the result of a ledger-wide conservation check.
type ConsistencyReport struct {
	Consistent bool
	Violations []*domain.ConservationViolation
	CheckedAt  time.Time
}

// CheckConsistency verifies that every processed sale item's entries sum to
// its total and that its balance equals subtotal minus total.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	violations, err := uc.ledgerRepo.FindConservationViolations(ctx, maxReportedViolations)
	if err != nil {
		return nil, err
	}

	if uc.observer != nil {
		uc.observer.RecordConsistency(len(violations))
	}

	report := &ConsistencyReport{
		Consistent: len(violations) == 0,
		Violations: violations,
		CheckedAt:  time.Now().UTC(),
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}

// CheckSaleItem verifies conservation for a single processed sale item.
func (uc *LedgerUseCase) CheckSaleItem(ctx context.Context, saleItemID string) error {
	item, err := uc.saleItemRepo.GetByID(ctx, saleItemID)
	if err != nil {
		return err
	}

	if !item.CommissionIsProcessed {
		return domain.ErrSaleItemNotProcessed
	}

	entries, err := uc.entryRepo.ListByReference(ctx, saleItemID)
	if err != nil {
		return err
	}

	if v := domain.CheckConservation(item, entries); v != nil {
		return fmt.Errorf(
			"%w: sale item %s total=%s entries=%s balance=%s subtotal=%s",
			domain.ErrConservationViolated,
			v.SaleItemID,
			v.TotalCommissionAmount.String(),
			v.EntriesTotal.String(),
			v.BalanceAfterCommission.String(),
			v.Subtotal.String(),
		)
	}

	return nil
}
