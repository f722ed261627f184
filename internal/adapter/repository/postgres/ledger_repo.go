package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// FindConservationViolations returns processed sale items whose ledger entries
// do not sum to the recorded total or whose balance is off.
func (r *LedgerRepository) FindConservationViolations(ctx context.Context, limit int) ([]*domain.ConservationViolation, error) {
	rows, err := r.queries.FindConservationViolations(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	violations := make([]*domain.ConservationViolation, 0, len(rows))
	for _, row := range rows {
		violations = append(violations, &domain.ConservationViolation{
			SaleItemID:             row.ID,
			Subtotal:               numericToDecimal(row.Subtotal),
			TotalCommissionAmount:  numericToDecimal(row.TotalCommissionAmount),
			BalanceAfterCommission: numericToDecimal(row.BalanceAfterCommission),
			EntriesTotal:           numericToDecimal(row.EntriesTotal),
		})
	}

	return violations, nil
}
