package usecase

//go:generate mockgen -source=interfaces.go -destination=mockgen/mock_interfaces.go -package=mockgen

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
)

// SaleItemRepository defines data access for sale line items.
type SaleItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SaleLineItem, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.SaleLineItem, error)
	// MarkProcessed persists the processed totals. It must only update an
	// unprocessed row and returns domain.ErrAlreadyProcessed otherwise.
	MarkProcessed(ctx context.Context, tx Transaction, item *domain.SaleLineItem) error
	// ListUnprocessed lists items awaiting commission that sort after the
	// cursor, oldest first.
	ListUnprocessed(ctx context.Context, after domain.SaleItemCursor, limit int) ([]*domain.SaleLineItem, error)
}

// BeneficiaryRepository defines data access for beneficiaries.
type BeneficiaryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Beneficiary, error)
}

// LedgerEntryRepository defines data access for ledger entries.
type LedgerEntryRepository interface {
	// Create inserts the entry. A row with the same (user, type, reference)
	// triple yields domain.ErrDuplicateLedgerEntry.
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	FindByReference(ctx context.Context, tx Transaction, userID string, commissionType domain.CommissionType, referenceID string) (*domain.LedgerEntry, error)
	ListByReference(ctx context.Context, referenceID string) ([]*domain.LedgerEntry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumByUser(ctx context.Context, userID string) (decimal.Decimal, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	FindConservationViolations(ctx context.Context, limit int) ([]*domain.ConservationViolation, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs fn while it fails with a transient store error.
type Retrier interface {
	Retry(ctx context.Context, fn func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ReceiptCache stores receipts of processed sale items.
type ReceiptCache interface {
	Get(ctx context.Context, saleItemID string) (*domain.Receipt, error)
	Set(ctx context.Context, receipt *domain.Receipt, ttl time.Duration) error
	Delete(ctx context.Context, saleItemID string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// CommissionMetrics observes commission processing.
type CommissionMetrics interface {
	RecordOutcome(outcome string, duration time.Duration)
	RecordPayout(role domain.CommissionType, amount decimal.Decimal)
}

type nopMetrics struct{}

func (nopMetrics) RecordOutcome(string, time.Duration)                  {}
func (nopMetrics) RecordPayout(domain.CommissionType, decimal.Decimal) {}

// noRetry runs fn once.
type noRetry struct{}

func (noRetry) Retry(_ context.Context, fn func() error) error { return fn() }
