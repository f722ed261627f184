package domain

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrSaleItemNotFound    = errors.New("sale item not found")
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")
	ErrReceiptNotCached    = errors.New("receipt not cached")

	// Commission outcomes
	ErrAlreadyProcessed        = errors.New("commission already processed")
	ErrNoEligibleSeller        = errors.New("sale item has no eligible seller")
	ErrInvalidAmount           = errors.New("sale subtotal must be positive")
	ErrSellerNotFound          = errors.New("seller not found")
	ErrSellerInactive          = errors.New("seller membership is not active")
	ErrInvalidCommissionAmount = errors.New("computed commission must be positive")
	ErrStoreFailure            = errors.New("ledger store failure")

	// Ledger errors
	ErrDuplicateLedgerEntry = errors.New("ledger entry already exists")
	ErrSaleItemNotProcessed = errors.New("sale item commission not processed")
	ErrConservationViolated = errors.New("commission totals do not match ledger entries")

	// Configuration errors
	ErrInvalidRateTable = errors.New("invalid commission rate table")
)

// ErrorKind classifies commission processing failures.
type ErrorKind string

const (
	KindAlreadyProcessed        ErrorKind = "already_processed"
	KindNoEligibleSeller        ErrorKind = "no_eligible_seller"
	KindSaleItemNotFound        ErrorKind = "sale_item_not_found"
	KindInvalidAmount           ErrorKind = "invalid_amount"
	KindSellerNotFound          ErrorKind = "seller_not_found"
	KindSellerInactive          ErrorKind = "seller_inactive"
	KindInvalidCommissionAmount ErrorKind = "invalid_commission_amount"
	KindStoreFailure            ErrorKind = "store_failure"
)

var kindSentinels = map[ErrorKind]error{
	KindAlreadyProcessed:        ErrAlreadyProcessed,
	KindNoEligibleSeller:        ErrNoEligibleSeller,
	KindSaleItemNotFound:        ErrSaleItemNotFound,
	KindInvalidAmount:           ErrInvalidAmount,
	KindSellerNotFound:          ErrSellerNotFound,
	KindSellerInactive:          ErrSellerInactive,
	KindInvalidCommissionAmount: ErrInvalidCommissionAmount,
	KindStoreFailure:            ErrStoreFailure,
}

// Soft reports whether the kind is an expected steady-state outcome.
func (k ErrorKind) Soft() bool {
	return k == KindAlreadyProcessed || k == KindNoEligibleSeller
}

// Retryable reports whether a later attempt may succeed without data changes.
func (k ErrorKind) Retryable() bool {
	return k == KindStoreFailure
}

// CommissionError is the failure value of a commission processing attempt.
type CommissionError struct {
	Kind       ErrorKind
	SaleItemID string
	Err        error
}

// NewCommissionError wraps err under kind. A nil err is replaced by the kind's sentinel.
func NewCommissionError(kind ErrorKind, saleItemID string, err error) *CommissionError {
	if err == nil {
		err = kindSentinels[kind]
	}

	return &CommissionError{Kind: kind, SaleItemID: saleItemID, Err: err}
}

func (e *CommissionError) Error() string {
	return fmt.Sprintf("sale item %s: %s: %v", e.SaleItemID, e.Kind, e.Err)
}

func (e *CommissionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel associated with the error kind.
func (e *CommissionError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// Soft reports whether the failure is an expected steady-state outcome.
func (e *CommissionError) Soft() bool {
	return e.Kind.Soft()
}

// AsCommissionError extracts a CommissionError from err.
func AsCommissionError(err error) (*CommissionError, bool) {
	var cerr *CommissionError
	if errors.As(err, &cerr) {
		return cerr, true
	}

	return nil, false
}
