package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/infrastructure/postgres/generated"
	"github.com/iho/gocommission/internal/usecase"
)

// SaleItemRepository implements usecase.SaleItemRepository.
type SaleItemRepository struct {
	queries *generated.Queries
}

// NewSaleItemRepository creates a new SaleItemRepository.
func NewSaleItemRepository(pool *pgxpool.Pool) *SaleItemRepository {
	return newSaleItemRepository(pool)
}

func newSaleItemRepository(db generated.DBTX) *SaleItemRepository {
	return &SaleItemRepository{queries: generated.New(db)}
}

// Create inserts an unprocessed sale item.
func (r *SaleItemRepository) Create(ctx context.Context, item *domain.SaleLineItem) error {
	return r.queries.CreateSaleItem(ctx, generated.CreateSaleItemParams{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    int32(item.Quantity),
		Subtotal:    decimalToNumeric(item.Subtotal),
		SellerID:    textOrNull(item.SellerID),
		DirectSale:  item.DirectSale,
		StockistID:  textOrNull(item.StockistID),
		CreatedAt:   timeToPgTimestamptz(item.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(item.UpdatedAt),
	})
}

// GetByID retrieves a sale item by ID.
func (r *SaleItemRepository) GetByID(ctx context.Context, id string) (*domain.SaleLineItem, error) {
	row, err := r.queries.GetSaleItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSaleItemNotFound
		}

		return nil, err
	}

	return rowToSaleItem(row), nil
}

// GetByIDForUpdate retrieves a sale item by ID with a FOR UPDATE lock.
func (r *SaleItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SaleLineItem, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetSaleItemByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSaleItemNotFound
		}

		return nil, err
	}

	return rowToSaleItem(row), nil
}

// MarkProcessed stores the commission totals and flips the processed flag.
// The update is guarded by commission_is_processed = FALSE.
func (r *SaleItemRepository) MarkProcessed(ctx context.Context, tx usecase.Transaction, item *domain.SaleLineItem) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	levels := make([]pgtype.Numeric, 0, domain.MaxAncestorLevels)
	for _, amount := range item.LevelCommissions {
		levels = append(levels, decimalToNumeric(amount))
	}

	processedAt := item.UpdatedAt
	if item.CommissionProcessedAt != nil {
		processedAt = *item.CommissionProcessedAt
	}

	affected, err := queries.MarkSaleItemProcessed(ctx, generated.MarkSaleItemProcessedParams{
		ID:                     item.ID,
		CommissionProcessedAt:  timeToPgTimestamptz(processedAt),
		StockistCommission:     decimalToNumeric(item.StockistCommission),
		SponsorCommission:      decimalToNumeric(item.SponsorCommission),
		LevelCommissions:       levels,
		LevelBeneficiaryIds:    item.LevelBeneficiaryIDs[:],
		TotalCommissionAmount:  decimalToNumeric(item.TotalCommissionAmount),
		BalanceAfterCommission: decimalToNumeric(item.BalanceAfterCommission),
		UpdatedAt:              timeToPgTimestamptz(item.UpdatedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrAlreadyProcessed
	}

	return nil
}

// ListUnprocessed lists sale items awaiting commission after the cursor,
// oldest first. Items that can never be commissioned are filtered out.
func (r *SaleItemRepository) ListUnprocessed(ctx context.Context, after domain.SaleItemCursor, limit int) ([]*domain.SaleLineItem, error) {
	rows, err := r.queries.ListUnprocessedSaleItems(ctx, generated.ListUnprocessedSaleItemsParams{
		AfterCreatedAt: timeToPgTimestamptz(after.CreatedAt),
		AfterID:        after.ID,
		RowLimit:       int32(limit),
	})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.SaleLineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToSaleItem(row))
	}

	return items, nil
}

func rowToSaleItem(row generated.SaleItem) *domain.SaleLineItem {
	item := &domain.SaleLineItem{
		ID:                     row.ID,
		ProductID:              row.ProductID,
		ProductName:            row.ProductName,
		Quantity:               int(row.Quantity),
		Subtotal:               numericToDecimal(row.Subtotal),
		SellerID:               textValue(row.SellerID),
		DirectSale:             row.DirectSale,
		StockistID:             textValue(row.StockistID),
		CommissionIsProcessed:  row.CommissionIsProcessed,
		CommissionProcessedAt:  optionalTime(row.CommissionProcessedAt),
		StockistCommission:     numericToDecimal(row.StockistCommission),
		SponsorCommission:      numericToDecimal(row.SponsorCommission),
		TotalCommissionAmount:  numericToDecimal(row.TotalCommissionAmount),
		BalanceAfterCommission: numericToDecimal(row.BalanceAfterCommission),
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
	}

	for i := 0; i < domain.MaxAncestorLevels && i < len(row.LevelCommissions); i++ {
		item.LevelCommissions[i] = numericToDecimal(row.LevelCommissions[i])
	}

	copy(item.LevelBeneficiaryIDs[:], row.LevelBeneficiaryIds)

	return item
}
