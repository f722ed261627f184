package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultReceiptTTL is how long receipts stay cached after processing
	DefaultReceiptTTL = 24 * time.Hour

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultBatchConcurrency bounds parallel items in a batch run
	DefaultBatchConcurrency = 4
)

// Outcome labels reported to CommissionMetrics.
const (
	OutcomeProcessed = "processed"
)
