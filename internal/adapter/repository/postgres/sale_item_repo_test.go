package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
)

var saleItemColumns = []string{
	"id", "product_id", "product_name", "quantity", "subtotal", "seller_id", "direct_sale", "stockist_id",
	"commission_is_processed", "commission_processed_at", "stockist_commission", "sponsor_commission",
	"level_commissions", "level_beneficiary_ids", "total_commission_amount", "balance_after_commission",
	"created_at", "updated_at",
}

func zeroLevels() []pgtype.Numeric {
	levels := make([]pgtype.Numeric, domain.MaxAncestorLevels)
	for i := range levels {
		levels[i] = num("0")
	}
	return levels
}

func unprocessedSaleItemRow(id string) []any {
	return []any{
		id, "prod-1", "Herbal Tea", int32(2), num("100000.00"),
		pgtype.Text{String: "seller-1", Valid: true}, true, pgtype.Text{},
		false, pgtype.Timestamptz{}, num("0"), num("0"),
		zeroLevels(), make([]string, domain.MaxAncestorLevels), num("0"), num("0"),
		ts(testNow), ts(testNow),
	}
}

func TestSaleItemRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT .+ FROM sale_items WHERE id = \\$1").
		WithArgs("sale-1").
		WillReturnRows(pgxmock.NewRows(saleItemColumns).AddRow(unprocessedSaleItemRow("sale-1")...))

	repo := newSaleItemRepository(mockPool)
	item, err := repo.GetByID(context.Background(), "sale-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.SellerID != "seller-1" || item.StockistID != "" || !item.DirectSale {
		t.Fatalf("unexpected participants: %+v", item)
	}
	if item.Quantity != 2 || item.ProductName != "Herbal Tea" {
		t.Fatalf("unexpected product fields: %+v", item)
	}
	assertDecimal(t, "subtotal", item.Subtotal, "100000")
	if item.CommissionIsProcessed || item.CommissionProcessedAt != nil {
		t.Fatalf("expected unprocessed item")
	}

	assertExpectations(t, mockPool)
}

func TestSaleItemRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM sale_items").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := newSaleItemRepository(mockPool)
	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSaleItemNotFound) {
		t.Fatalf("expected ErrSaleItemNotFound, got %v", err)
	}
}

func TestSaleItemRepositoryGetByIDForUpdate(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginMockTx(t, mockPool)

	row := unprocessedSaleItemRow("sale-1")
	row[8] = true
	row[9] = ts(testNow)
	row[15] = num("77500.00")
	mockPool.ExpectQuery("FOR UPDATE").
		WithArgs("sale-1").
		WillReturnRows(pgxmock.NewRows(saleItemColumns).AddRow(row...))

	repo := newSaleItemRepository(mockPool)
	item, err := repo.GetByIDForUpdate(context.Background(), tx, "sale-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !item.CommissionIsProcessed || item.CommissionProcessedAt == nil {
		t.Fatalf("expected processed item")
	}
	assertDecimal(t, "balance", item.BalanceAfterCommission, "77500")

	assertExpectations(t, mockPool)
}

func TestSaleItemRepositoryMarkProcessed(t *testing.T) {
	item := &domain.SaleLineItem{
		ID:                     "sale-1",
		Subtotal:               decimal.RequireFromString("100000"),
		StockistCommission:     decimal.RequireFromString("8000"),
		SponsorCommission:      decimal.RequireFromString("7000"),
		TotalCommissionAmount:  decimal.RequireFromString("22500"),
		BalanceAfterCommission: decimal.RequireFromString("77500"),
		UpdatedAt:              testNow,
	}
	processedAt := testNow
	item.CommissionProcessedAt = &processedAt
	item.LevelCommissions[0] = decimal.RequireFromString("3000")
	item.LevelBeneficiaryIDs[0] = "anc-1"

	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "already processed", affected: 0, wantErr: domain.ErrAlreadyProcessed},
		{name: "store error", execErr: errors.New("connection reset"), wantErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			tx := beginMockTx(t, mockPool)

			exec := mockPool.ExpectExec("UPDATE sale_items").
				WithArgs("sale-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
					pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg())
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			}

			repo := newSaleItemRepository(mockPool)
			err := repo.MarkProcessed(context.Background(), tx, item)

			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case errors.Is(tt.wantErr, domain.ErrAlreadyProcessed) && !errors.Is(err, domain.ErrAlreadyProcessed):
				t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
			case tt.execErr != nil && (err == nil || err.Error() != tt.execErr.Error()):
				t.Fatalf("expected store error, got %v", err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestSaleItemRepositoryListUnprocessed(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(`commission_is_processed = FALSE\s+AND direct_sale = TRUE\s+AND seller_id IS NOT NULL AND seller_id <> ''\s+AND subtotal > 0`).
		WithArgs(ts(time.Time{}), "", int32(2)).
		WillReturnRows(pgxmock.NewRows(saleItemColumns).
			AddRow(unprocessedSaleItemRow("sale-1")...).
			AddRow(unprocessedSaleItemRow("sale-2")...))

	repo := newSaleItemRepository(mockPool)
	items, err := repo.ListUnprocessed(context.Background(), domain.SaleItemCursor{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 || items[0].ID != "sale-1" || items[1].ID != "sale-2" {
		t.Fatalf("unexpected items: %+v", items)
	}

	assertExpectations(t, mockPool)
}

func TestSaleItemRepositoryListUnprocessedAfterCursor(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(`\(created_at, id\) > \(\$1::timestamptz, \$2::text\)`).
		WithArgs(ts(testNow), "sale-1", int32(10)).
		WillReturnRows(pgxmock.NewRows(saleItemColumns).
			AddRow(unprocessedSaleItemRow("sale-2")...))

	repo := newSaleItemRepository(mockPool)
	items, err := repo.ListUnprocessed(context.Background(), domain.SaleItemCursor{CreatedAt: testNow, ID: "sale-1"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 1 || items[0].ID != "sale-2" {
		t.Fatalf("unexpected items: %+v", items)
	}

	assertExpectations(t, mockPool)
}

func TestSaleItemRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("INSERT INTO sale_items").
		WithArgs("sale-1", "prod-1", "Herbal Tea", int32(1), pgxmock.AnyArg(),
			pgtype.Text{String: "seller-1", Valid: true}, true, pgtype.Text{},
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := newSaleItemRepository(mockPool)
	err := repo.Create(context.Background(), &domain.SaleLineItem{
		ID:          "sale-1",
		ProductID:   "prod-1",
		ProductName: "Herbal Tea",
		Quantity:    1,
		Subtotal:    decimal.RequireFromString("150"),
		SellerID:    "seller-1",
		DirectSale:  true,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}
