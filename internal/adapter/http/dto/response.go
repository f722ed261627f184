package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
)

// PayoutResponse represents one beneficiary credit in a receipt.
type PayoutResponse struct {
	Level           int             `json:"level"`
	Role            string          `json:"role"`
	BeneficiaryID   string          `json:"beneficiary_id"`
	BeneficiaryName string          `json:"beneficiary_name,omitempty"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
	LedgerEntryID   string          `json:"ledger_entry_id,omitempty"`
}

// ReceiptResponse represents a commission receipt in API responses.
type ReceiptResponse struct {
	SaleItemID             string            `json:"sale_item_id"`
	Subtotal               decimal.Decimal   `json:"subtotal"`
	TotalCommission        decimal.Decimal   `json:"total_commission"`
	BalanceAfterCommission decimal.Decimal   `json:"balance_after_commission"`
	BeneficiaryCount       int               `json:"beneficiary_count"`
	Payouts                []*PayoutResponse `json:"payouts"`
	ProcessedAt            time.Time         `json:"processed_at"`
}

// ReceiptFromDomain converts a domain receipt to response.
func ReceiptFromDomain(r *domain.Receipt) *ReceiptResponse {
	payouts := make([]*PayoutResponse, len(r.Payouts))
	for i, p := range r.Payouts {
		payouts[i] = &PayoutResponse{
			Level:           p.Level,
			Role:            string(p.Role),
			BeneficiaryID:   p.BeneficiaryID,
			BeneficiaryName: p.BeneficiaryName,
			Rate:            p.Rate,
			Amount:          p.Amount,
			LedgerEntryID:   p.LedgerEntryID,
		}
	}

	return &ReceiptResponse{
		SaleItemID:             r.SaleItemID,
		Subtotal:               r.Subtotal,
		TotalCommission:        r.TotalCommission,
		BalanceAfterCommission: r.BalanceAfterCommission,
		BeneficiaryCount:       r.BeneficiaryCount(),
		Payouts:                payouts,
		ProcessedAt:            r.ProcessedAt,
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id"`
	Amount                decimal.Decimal `json:"amount"`
	Rate                  decimal.Decimal `json:"rate"`
	Source                string          `json:"source"`
	CommissionType        string          `json:"commission_type"`
	CommissionReferenceID string          `json:"commission_reference_id"`
	Description           string          `json:"description"`
	CreatedAt             time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:                    e.ID,
		UserID:                e.UserID,
		Amount:                e.Amount,
		Rate:                  e.Rate,
		Source:                e.Source,
		CommissionType:        string(e.CommissionType),
		CommissionReferenceID: e.CommissionReferenceID,
		Description:           e.Description,
		CreatedAt:             e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse is a beneficiary's commission balance.
type BalanceResponse struct {
	BeneficiaryID string          `json:"beneficiary_id"`
	Balance       decimal.Decimal `json:"balance"`
}

// BatchFailure is one failed sale item in a batch run.
type BatchFailure struct {
	SaleItemID string `json:"sale_item_id"`
	Error      string `json:"error"`
}

// BatchSummaryResponse reports a batch run.
type BatchSummaryResponse struct {
	Attempted       int             `json:"attempted"`
	Processed       int             `json:"processed"`
	Skipped         int             `json:"skipped"`
	Failed          int             `json:"failed"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	Failures        []BatchFailure  `json:"failures,omitempty"`
}

// BatchSummaryFromUseCase converts a batch summary to response. Failures are
// ordered by sale item id.
func BatchSummaryFromUseCase(s *usecase.BatchSummary) *BatchSummaryResponse {
	resp := &BatchSummaryResponse{
		Attempted:       s.Attempted,
		Processed:       s.Processed,
		Skipped:         s.Skipped,
		Failed:          s.Failed,
		TotalCommission: s.TotalCommission,
	}

	for id, msg := range s.Failures {
		resp.Failures = append(resp.Failures, BatchFailure{SaleItemID: id, Error: msg})
	}
	sort.Slice(resp.Failures, func(i, j int) bool {
		return resp.Failures[i].SaleItemID < resp.Failures[j].SaleItemID
	})

	return resp
}

// ViolationResponse describes one conservation violation.
type ViolationResponse struct {
	SaleItemID             string          `json:"sale_item_id"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	TotalCommissionAmount  decimal.Decimal `json:"total_commission_amount"`
	BalanceAfterCommission decimal.Decimal `json:"balance_after_commission"`
	EntriesTotal           decimal.Decimal `json:"entries_total"`
}

// ConsistencyResponse reports a ledger consistency check.
type ConsistencyResponse struct {
	Status     string               `json:"status"`
	Consistent bool                 `json:"consistent"`
	Violations []*ViolationResponse `json:"violations,omitempty"`
	CheckedAt  time.Time            `json:"checked_at"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:     "consistent",
		Consistent: r.Consistent,
		CheckedAt:  r.CheckedAt,
	}
	if !r.Consistent {
		resp.Status = "inconsistent"
	}

	for _, v := range r.Violations {
		resp.Violations = append(resp.Violations, &ViolationResponse{
			SaleItemID:             v.SaleItemID,
			Subtotal:               v.Subtotal,
			TotalCommissionAmount:  v.TotalCommissionAmount,
			BalanceAfterCommission: v.BalanceAfterCommission,
			EntriesTotal:           v.EntriesTotal,
		})
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
