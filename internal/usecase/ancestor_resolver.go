package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/gocommission/internal/domain"
)

// AncestorSlot is one resolved level of a sponsor's lineage.
type AncestorSlot struct {
	Level         int
	BeneficiaryID string
	// Beneficiary is nil when the stored id has no matching record.
	Beneficiary *domain.Beneficiary
}

// AncestorResolver reads the materialized parent_1..parent_10 chain of a sponsor.
type AncestorResolver struct {
	beneficiaries BeneficiaryRepository
	logger        zerolog.Logger
}

// NewAncestorResolver creates a new AncestorResolver.
func NewAncestorResolver(beneficiaries BeneficiaryRepository, logger zerolog.Logger) *AncestorResolver {
	return &AncestorResolver{
		beneficiaries: beneficiaries,
		logger:        logger,
	}
}

// Resolve returns up to MaxAncestorLevels slots in level order. The walk stops
// at the first empty link. A link whose record is missing is logged and
// returned with a nil Beneficiary so callers can still audit the attempt.
func (r *AncestorResolver) Resolve(ctx context.Context, sponsor *domain.Beneficiary) ([]AncestorSlot, error) {
	slots := make([]AncestorSlot, 0, domain.MaxAncestorLevels)

	for level := 1; level <= domain.MaxAncestorLevels; level++ {
		id, ok := sponsor.AncestorAt(level)
		if !ok {
			break
		}

		b, err := r.beneficiaries.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrBeneficiaryNotFound) {
				return nil, fmt.Errorf("resolve ancestor level %d: %w", level, err)
			}

			r.logger.Warn().
				Str("sponsor_id", sponsor.ID).
				Str("ancestor_id", id).
				Int("level", level).
				Msg("ancestor record not found, skipping level")

			b = nil
		}

		slots = append(slots, AncestorSlot{Level: level, BeneficiaryID: id, Beneficiary: b})
	}

	return slots, nil
}
