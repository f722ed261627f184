package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CommissionType is the role tag recorded on a ledger entry.
type CommissionType string

const (
	CommissionTypeStockist CommissionType = "stockist"
	CommissionTypeSponsor  CommissionType = "sponsor"

	parentLevelPrefix = "parent_level_"
)

// ParentLevelType returns the role tag for a 1-based ancestor level.
func ParentLevelType(level int) CommissionType {
	return CommissionType(parentLevelPrefix + strconv.Itoa(level))
}

// Level returns the ancestor level encoded in the tag, or 0 for stockist and sponsor.
func (t CommissionType) Level() int {
	s, ok := strings.CutPrefix(string(t), parentLevelPrefix)
	if !ok {
		return 0
	}

	level, err := strconv.Atoi(s)
	if err != nil || level < 1 || level > MaxAncestorLevels {
		return 0
	}

	return level
}

// Label returns a human readable role name for audit descriptions.
func (t CommissionType) Label() string {
	switch t {
	case CommissionTypeStockist:
		return "Stockist"
	case CommissionTypeSponsor:
		return "Sponsor"
	}

	if level := t.Level(); level > 0 {
		return fmt.Sprintf("Parent level %d", level)
	}

	return string(t)
}

// percentScale is the number of decimal places kept for money.
const percentScale = 2

var hundred = decimal.NewFromInt(100)

// Calculate returns round(amount * ratePercent / 100, 2), rounding half away
// from zero. Non-positive rates yield zero.
func Calculate(amount, ratePercent decimal.Decimal) decimal.Decimal {
	if !ratePercent.IsPositive() {
		return decimal.Zero
	}

	return amount.Mul(ratePercent).Div(hundred).Round(percentScale)
}

// RateTable holds the commission percentages of sale subtotal. It is a value
// type with unexported fields, so a constructed table cannot be mutated.
type RateTable struct {
	stockist decimal.Decimal
	sponsor  decimal.Decimal
	levels   [MaxAncestorLevels]decimal.Decimal
}

// DefaultRateTable returns the standard commission table.
func DefaultRateTable() RateTable {
	return RateTable{
		stockist: decimal.RequireFromString("7.0"),
		sponsor:  decimal.RequireFromString("8.0"),
		levels: [MaxAncestorLevels]decimal.Decimal{
			decimal.RequireFromString("3.0"),
			decimal.RequireFromString("2.5"),
			decimal.RequireFromString("2.0"),
			decimal.RequireFromString("1.5"),
			decimal.RequireFromString("1.0"),
			decimal.RequireFromString("0.8"),
			decimal.RequireFromString("0.6"),
			decimal.RequireFromString("0.5"),
			decimal.RequireFromString("0.4"),
			decimal.RequireFromString("0.2"),
		},
	}
}

// NewRateTable builds a validated table. Every rate must lie in [0, 100], the
// sponsor rate must be positive and the total must not exceed 100.
func NewRateTable(stockist, sponsor decimal.Decimal, levels [MaxAncestorLevels]decimal.Decimal) (RateTable, error) {
	total := stockist.Add(sponsor)

	rates := append([]decimal.Decimal{stockist, sponsor}, levels[:]...)
	for _, r := range rates {
		if r.IsNegative() || r.GreaterThan(hundred) {
			return RateTable{}, fmt.Errorf("%w: rate %s outside [0, 100]", ErrInvalidRateTable, r)
		}
	}

	for _, r := range levels {
		total = total.Add(r)
	}

	if !sponsor.IsPositive() {
		return RateTable{}, fmt.Errorf("%w: sponsor rate must be positive", ErrInvalidRateTable)
	}

	if total.GreaterThan(hundred) {
		return RateTable{}, fmt.Errorf("%w: rates sum to %s%%", ErrInvalidRateTable, total)
	}

	return RateTable{stockist: stockist, sponsor: sponsor, levels: levels}, nil
}

// Stockist returns the stockist rate.
func (t RateTable) Stockist() decimal.Decimal { return t.stockist }

// Sponsor returns the direct-sale rate.
func (t RateTable) Sponsor() decimal.Decimal { return t.sponsor }

// Level returns the rate for a 1-based ancestor level, zero when out of range.
func (t RateTable) Level(level int) decimal.Decimal {
	if level < 1 || level > MaxAncestorLevels {
		return decimal.Zero
	}

	return t.levels[level-1]
}

// RateFor returns the rate for a role tag.
func (t RateTable) RateFor(ct CommissionType) decimal.Decimal {
	switch ct {
	case CommissionTypeStockist:
		return t.stockist
	case CommissionTypeSponsor:
		return t.sponsor
	default:
		return t.Level(ct.Level())
	}
}

// Total returns the sum of all rates, the maximum share of a sale paid out.
func (t RateTable) Total() decimal.Decimal {
	total := t.stockist.Add(t.sponsor)
	for _, r := range t.levels {
		total = total.Add(r)
	}

	return total
}
