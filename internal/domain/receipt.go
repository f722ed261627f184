package domain

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Payout is one beneficiary credit in a receipt.
type Payout struct {
	Level           int             `json:"level"`
	Role            CommissionType  `json:"role"`
	BeneficiaryID   string          `json:"beneficiary_id"`
	BeneficiaryName string          `json:"beneficiary_name"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
	LedgerEntryID   string          `json:"ledger_entry_id"`
}

// Receipt summarizes a successful commission run.
type Receipt struct {
	SaleItemID             string          `json:"sale_item_id"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	TotalCommission        decimal.Decimal `json:"total_commission"`
	BalanceAfterCommission decimal.Decimal `json:"balance_after_commission"`
	Payouts                []Payout        `json:"payouts"`
	ProcessedAt            time.Time       `json:"processed_at"`
}

// AddPayout appends a payout and updates the running total.
func (r *Receipt) AddPayout(p Payout) {
	r.Payouts = append(r.Payouts, p)
	r.TotalCommission = r.PayoutTotal()
}

// PayoutTotal sums all payout amounts.
func (r *Receipt) PayoutTotal() decimal.Decimal {
	return lo.Reduce(r.Payouts, func(acc decimal.Decimal, p Payout, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)
}

// BeneficiaryCount returns the number of distinct beneficiaries paid.
func (r *Receipt) BeneficiaryCount() int {
	return len(lo.UniqBy(r.Payouts, func(p Payout) string { return p.BeneficiaryID }))
}

// ConservationViolation describes a processed item whose totals disagree with its ledger entries.
type ConservationViolation struct {
	SaleItemID             string
	Subtotal               decimal.Decimal
	TotalCommissionAmount  decimal.Decimal
	BalanceAfterCommission decimal.Decimal
	EntriesTotal           decimal.Decimal
}

// CheckConservation verifies that entries sum to the recorded total and that
// the balance equals subtotal minus total.
func CheckConservation(item *SaleLineItem, entries []*LedgerEntry) *ConservationViolation {
	sum := lo.Reduce(entries, func(acc decimal.Decimal, e *LedgerEntry, _ int) decimal.Decimal {
		return acc.Add(e.Amount)
	}, decimal.Zero)

	if sum.Equal(item.TotalCommissionAmount) &&
		item.BalanceAfterCommission.Equal(item.Subtotal.Sub(item.TotalCommissionAmount)) {
		return nil
	}

	return &ConservationViolation{
		SaleItemID:             item.ID,
		Subtotal:               item.Subtotal,
		TotalCommissionAmount:  item.TotalCommissionAmount,
		BalanceAfterCommission: item.BalanceAfterCommission,
		EntriesTotal:           sum,
	}
}
