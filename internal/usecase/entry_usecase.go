package usecase

import (
	"context"
	"errors"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
)

// EntryUseCase handles ledger entry queries and receipt retrieval.
type EntryUseCase struct {
	entryRepo       LedgerEntryRepository
	saleItemRepo    SaleItemRepository
	beneficiaryRepo BeneficiaryRepository
	cache           ReceiptCache
	logger          zerolog.Logger
}

// NewEntryUseCase creates a new EntryUseCase. cache may be nil.
func NewEntryUseCase(
	entryRepo LedgerEntryRepository,
	saleItemRepo SaleItemRepository,
	beneficiaryRepo BeneficiaryRepository,
	cache ReceiptCache,
	logger zerolog.Logger,
) *EntryUseCase {
	return &EntryUseCase{
		entryRepo:       entryRepo,
		saleItemRepo:    saleItemRepo,
		beneficiaryRepo: beneficiaryRepo,
		cache:           cache,
		logger:          logger,
	}
}

// GetEntriesByBeneficiaryInput represents input for listing entries.
type GetEntriesByBeneficiaryInput struct {
	BeneficiaryID string
	Limit         int
	Offset        int
}

// GetEntriesByBeneficiary lists entries credited to a beneficiary.
func (uc *EntryUseCase) GetEntriesByBeneficiary(ctx context.Context, input GetEntriesByBeneficiaryInput) ([]*domain.LedgerEntry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.ListByUser(ctx, input.BeneficiaryID, limit, offset)
}

// GetEntriesBySaleItem lists entries created for a sale item.
func (uc *EntryUseCase) GetEntriesBySaleItem(ctx context.Context, saleItemID string) ([]*domain.LedgerEntry, error) {
	if _, err := uc.saleItemRepo.GetByID(ctx, saleItemID); err != nil {
		return nil, err
	}

	return uc.entryRepo.ListByReference(ctx, saleItemID)
}

// GetBeneficiaryBalance returns the sum of all entries owned by a beneficiary.
func (uc *EntryUseCase) GetBeneficiaryBalance(ctx context.Context, beneficiaryID string) (decimal.Decimal, error) {
	if _, err := uc.beneficiaryRepo.GetByID(ctx, beneficiaryID); err != nil {
		return decimal.Zero, err
	}

	return uc.entryRepo.SumByUser(ctx, beneficiaryID)
}

// GetReceipt returns the receipt of a processed sale item, from cache when
// possible, otherwise rebuilt from its ledger entries. Rebuilt payouts carry
// the rate stored on each entry.
func (uc *EntryUseCase) GetReceipt(ctx context.Context, saleItemID string) (*domain.Receipt, error) {
	if uc.cache != nil {
		receipt, err := uc.cache.Get(ctx, saleItemID)
		if err == nil {
			return receipt, nil
		}

		if !errors.Is(err, domain.ErrReceiptNotCached) {
			uc.logger.Warn().Err(err).Str("sale_item_id", saleItemID).Msg("receipt cache read failed")
		}
	}

	item, err := uc.saleItemRepo.GetByID(ctx, saleItemID)
	if err != nil {
		return nil, err
	}

	if !item.CommissionIsProcessed {
		return nil, domain.ErrSaleItemNotProcessed
	}

	entries, err := uc.entryRepo.ListByReference(ctx, saleItemID)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(entries, func(a, b *domain.LedgerEntry) int {
		return roleRank(a.CommissionType) - roleRank(b.CommissionType)
	})

	receipt := &domain.Receipt{
		SaleItemID:             item.ID,
		Subtotal:               item.Subtotal,
		TotalCommission:        decimal.Zero,
		BalanceAfterCommission: item.BalanceAfterCommission,
	}

	if item.CommissionProcessedAt != nil {
		receipt.ProcessedAt = *item.CommissionProcessedAt
	}

	for _, e := range entries {
		var name string

		b, err := uc.beneficiaryRepo.GetByID(ctx, e.UserID)
		switch {
		case err == nil:
			name = b.Name
		case !errors.Is(err, domain.ErrBeneficiaryNotFound):
			return nil, err
		}

		receipt.AddPayout(domain.Payout{
			Level:           e.CommissionType.Level(),
			Role:            e.CommissionType,
			BeneficiaryID:   e.UserID,
			BeneficiaryName: name,
			Rate:            e.Rate,
			Amount:          e.Amount,
			LedgerEntryID:   e.ID,
		})
	}

	return receipt, nil
}

// roleRank orders stockist, sponsor, then ancestor levels ascending.
func roleRank(ct domain.CommissionType) int {
	switch ct {
	case domain.CommissionTypeStockist:
		return 0
	case domain.CommissionTypeSponsor:
		return 1
	default:
		return 1 + ct.Level()
	}
}
