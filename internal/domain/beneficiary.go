package domain

import "time"

// MaxAncestorLevels is the depth of the materialized sponsor lineage.
const MaxAncestorLevels = 10

// Beneficiary is a network participant that can receive commission.
type Beneficiary struct {
	ID               string
	Name             string
	MembershipActive bool
	// Ancestors[0] is parent_1, the sponsor's own sponsor. An empty slot
	// means the chain is broken at that level.
	Ancestors [MaxAncestorLevels]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanReceiveCommission reports whether the beneficiary may be credited.
func (b *Beneficiary) CanReceiveCommission() bool {
	return b != nil && b.MembershipActive
}

// AncestorAt returns the stored ancestor id for a 1-based level.
func (b *Beneficiary) AncestorAt(level int) (string, bool) {
	if level < 1 || level > MaxAncestorLevels {
		return "", false
	}

	id := b.Ancestors[level-1]

	return id, id != ""
}
