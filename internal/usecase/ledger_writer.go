package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
)

// LedgerWriter creates commission ledger entries at most once per
// (beneficiary, role, sale item).
type LedgerWriter struct {
	entries LedgerEntryRepository
	idGen   IDGenerator
	now     func() time.Time
}

// NewLedgerWriter creates a new LedgerWriter.
func NewLedgerWriter(entries LedgerEntryRepository, idGen IDGenerator) *LedgerWriter {
	return &LedgerWriter{
		entries: entries,
		idGen:   idGen,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateEntryInput represents input for creating a commission entry.
type CreateEntryInput struct {
	Beneficiary *domain.Beneficiary
	SaleItem    *domain.SaleLineItem
	Role        domain.CommissionType
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// CreateEntry returns the existing entry for the dedup triple if there is one,
// otherwise inserts a new entry. created reports whether a row was written.
func (w *LedgerWriter) CreateEntry(ctx context.Context, tx Transaction, input CreateEntryInput) (*domain.LedgerEntry, bool, error) {
	existing, err := w.entries.FindByReference(ctx, tx, input.Beneficiary.ID, input.Role, input.SaleItem.ID)
	if err == nil {
		return existing, false, nil
	}

	if !errors.Is(err, domain.ErrLedgerEntryNotFound) {
		return nil, false, err
	}

	now := w.now()
	entry := &domain.LedgerEntry{
		ID:                    w.idGen.Generate(),
		UserID:                input.Beneficiary.ID,
		Amount:                input.Amount,
		Rate:                  input.Rate,
		Source:                domain.SourceProductCommission,
		CommissionType:        input.Role,
		CommissionReferenceID: input.SaleItem.ID,
		Description:           describe(input, now),
		CreatedAt:             now,
	}

	err = w.entries.Create(ctx, tx, entry)
	if errors.Is(err, domain.ErrDuplicateLedgerEntry) {
		// Lost a race with a concurrent writer.
		existing, err = w.entries.FindByReference(ctx, tx, input.Beneficiary.ID, input.Role, input.SaleItem.ID)
		if err != nil {
			return nil, false, err
		}

		return existing, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return entry, true, nil
}

func describe(input CreateEntryInput, at time.Time) string {
	item := input.SaleItem

	product := item.ProductID
	if item.ProductName != "" {
		product = fmt.Sprintf("%s (%s)", item.ProductName, item.ProductID)
	}

	return fmt.Sprintf("%s commission on sale item %s: product %s x%d, sale amount %s at %s%% = %s, recorded %s",
		input.Role.Label(),
		item.ID,
		product,
		item.Quantity,
		item.Subtotal.StringFixed(2),
		input.Rate.String(),
		input.Amount.StringFixed(2),
		at.Format(time.RFC3339),
	)
}
