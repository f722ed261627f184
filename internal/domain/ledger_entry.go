package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceProductCommission tags ledger entries produced by sale commissions.
const SourceProductCommission = "product_commission"

// LedgerEntry is one signed money movement owned by a beneficiary.
// (UserID, CommissionType, CommissionReferenceID) is unique. Rate is the
// percentage applied when the entry was written.
type LedgerEntry struct {
	ID                    string
	UserID                string
	Amount                decimal.Decimal
	Rate                  decimal.Decimal
	Source                string
	CommissionType        CommissionType
	CommissionReferenceID string
	Description           string
	CreatedAt             time.Time
}
