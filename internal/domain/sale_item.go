package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineItem is one line of a customer purchase subject to commission.
type SaleLineItem struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	Subtotal    decimal.Decimal

	// SellerID is the sponsor credited with the direct-sale commission.
	SellerID string
	// DirectSale is false when the sale has no direct-sale beneficiary even
	// though a seller id may be recorded.
	DirectSale bool
	StockistID string

	CommissionIsProcessed bool
	CommissionProcessedAt *time.Time

	StockistCommission     decimal.Decimal
	SponsorCommission      decimal.Decimal
	LevelCommissions       [MaxAncestorLevels]decimal.Decimal
	LevelBeneficiaryIDs    [MaxAncestorLevels]string
	TotalCommissionAmount  decimal.Decimal
	BalanceAfterCommission decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaleItemCursor is a keyset position in (created_at, id) order. The zero
// value is the head of the queue.
type SaleItemCursor struct {
	CreatedAt time.Time
	ID        string
}

// IsZero reports whether c points at the head of the queue.
func (c SaleItemCursor) IsZero() bool {
	return c.ID == "" && c.CreatedAt.IsZero()
}

// Before reports whether c sorts strictly before item.
func (c SaleItemCursor) Before(item *SaleLineItem) bool {
	if !c.CreatedAt.Equal(item.CreatedAt) {
		return c.CreatedAt.Before(item.CreatedAt)
	}

	return c.ID < item.ID
}

// Cursor returns the keyset position of the item.
func (s *SaleLineItem) Cursor() SaleItemCursor {
	return SaleItemCursor{CreatedAt: s.CreatedAt, ID: s.ID}
}

// AwaitingCommission reports whether the item can still be commissioned.
// Unprocessed items without an eligible seller or with a non-positive
// subtotal never leave that state and are not queued.
func (s *SaleLineItem) AwaitingCommission() bool {
	return !s.CommissionIsProcessed && s.HasEligibleSeller() && s.Subtotal.IsPositive()
}

// HasEligibleSeller reports whether a direct-sale commission can be attributed.
func (s *SaleLineItem) HasEligibleSeller() bool {
	return s.SellerID != "" && s.DirectSale
}

// RecordLevel stores the attempted ancestor and the amount paid at a 1-based level.
func (s *SaleLineItem) RecordLevel(level int, beneficiaryID string, amount decimal.Decimal) {
	if level < 1 || level > MaxAncestorLevels {
		return
	}

	s.LevelBeneficiaryIDs[level-1] = beneficiaryID
	s.LevelCommissions[level-1] = amount
}

// MarkProcessed transitions the item to PROCESSED with the final totals.
func (s *SaleLineItem) MarkProcessed(total decimal.Decimal, at time.Time) {
	s.CommissionIsProcessed = true
	s.CommissionProcessedAt = &at
	s.TotalCommissionAmount = total
	s.BalanceAfterCommission = s.Subtotal.Sub(total)
	s.UpdatedAt = at
}
