package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/infrastructure/postgres/generated"
)

// BeneficiaryRepository implements usecase.BeneficiaryRepository.
type BeneficiaryRepository struct {
	queries *generated.Queries
}

// NewBeneficiaryRepository creates a new BeneficiaryRepository.
func NewBeneficiaryRepository(pool *pgxpool.Pool) *BeneficiaryRepository {
	return newBeneficiaryRepository(pool)
}

func newBeneficiaryRepository(db generated.DBTX) *BeneficiaryRepository {
	return &BeneficiaryRepository{queries: generated.New(db)}
}

// Create inserts a beneficiary with its materialized lineage.
func (r *BeneficiaryRepository) Create(ctx context.Context, b *domain.Beneficiary) error {
	p := b.Ancestors

	return r.queries.CreateBeneficiary(ctx, generated.CreateBeneficiaryParams{
		ID:               b.ID,
		Name:             b.Name,
		MembershipActive: b.MembershipActive,
		Parent1:          textOrNull(p[0]),
		Parent2:          textOrNull(p[1]),
		Parent3:          textOrNull(p[2]),
		Parent4:          textOrNull(p[3]),
		Parent5:          textOrNull(p[4]),
		Parent6:          textOrNull(p[5]),
		Parent7:          textOrNull(p[6]),
		Parent8:          textOrNull(p[7]),
		Parent9:          textOrNull(p[8]),
		Parent10:         textOrNull(p[9]),
		CreatedAt:        timeToPgTimestamptz(b.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(b.UpdatedAt),
	})
}

// GetByID retrieves a beneficiary by ID.
func (r *BeneficiaryRepository) GetByID(ctx context.Context, id string) (*domain.Beneficiary, error) {
	row, err := r.queries.GetBeneficiaryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBeneficiaryNotFound
		}

		return nil, err
	}

	return &domain.Beneficiary{
		ID:               row.ID,
		Name:             row.Name,
		MembershipActive: row.MembershipActive,
		Ancestors: [domain.MaxAncestorLevels]string{
			textValue(row.Parent1),
			textValue(row.Parent2),
			textValue(row.Parent3),
			textValue(row.Parent4),
			textValue(row.Parent5),
			textValue(row.Parent6),
			textValue(row.Parent7),
			textValue(row.Parent8),
			textValue(row.Parent9),
			textValue(row.Parent10),
		},
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}
