package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/infrastructure/postgres/generated"
	"github.com/iho/gocommission/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	queries *generated.Queries
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return newLedgerEntryRepository(pool)
}

func newLedgerEntryRepository(db generated.DBTX) *LedgerEntryRepository {
	return &LedgerEntryRepository{queries: generated.New(db)}
}

// Create inserts an entry. The insert uses ON CONFLICT DO NOTHING on the dedup
// triple so a duplicate does not abort the surrounding transaction.
func (r *LedgerEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
		ID:                    entry.ID,
		UserID:                entry.UserID,
		Amount:                decimalToNumeric(entry.Amount),
		Rate:                  decimalToNumeric(entry.Rate),
		Source:                entry.Source,
		CommissionType:        string(entry.CommissionType),
		CommissionReferenceID: entry.CommissionReferenceID,
		Description:           entry.Description,
		CreatedAt:             timeToPgTimestamptz(entry.CreatedAt),
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDuplicateLedgerEntry
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrDuplicateLedgerEntry
	}

	return err
}

// FindByReference looks up the entry for a dedup triple inside tx.
func (r *LedgerEntryRepository) FindByReference(
	ctx context.Context,
	tx usecase.Transaction,
	userID string,
	commissionType domain.CommissionType,
	referenceID string,
) (*domain.LedgerEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetLedgerEntryByReference(ctx, generated.GetLedgerEntryByReferenceParams{
		UserID:                userID,
		CommissionType:        string(commissionType),
		CommissionReferenceID: referenceID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerEntryNotFound
		}

		return nil, err
	}

	return rowToLedgerEntry(row), nil
}

// ListByReference lists entries created for a sale item.
func (r *LedgerEntryRepository) ListByReference(ctx context.Context, referenceID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntriesByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	return rowsToLedgerEntries(rows), nil
}

// ListByUser lists entries owned by a beneficiary, newest first.
func (r *LedgerEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntriesByUser(ctx, generated.ListLedgerEntriesByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToLedgerEntries(rows), nil
}

// SumByUser returns the sum of a beneficiary's entries.
func (r *LedgerEntryRepository) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	total, err := r.queries.SumLedgerEntriesByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func rowsToLedgerEntries(rows []generated.LedgerEntry) []*domain.LedgerEntry {
	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToLedgerEntry(row))
	}

	return entries
}

func rowToLedgerEntry(row generated.LedgerEntry) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:                    row.ID,
		UserID:                row.UserID,
		Amount:                numericToDecimal(row.Amount),
		Rate:                  numericToDecimal(row.Rate),
		Source:                row.Source,
		CommissionType:        domain.CommissionType(row.CommissionType),
		CommissionReferenceID: row.CommissionReferenceID,
		Description:           row.Description,
		CreatedAt:             row.CreatedAt.Time,
	}
}
