package do

import (
	"strings"
	"time"
)

// VoterInfo is the central per-account record. Version distinguishes the v1
// layout (no claim window, no reward set) from the current v2 layout; v1 rows
// are upgraded in place by the migration path and new rows are always
// written as v2.
type VoterInfo struct {
	ID    uint64 `gorm:"primaryKey"`
	Owner string `gorm:"uniqueIndex:unique_idx_owner;type:varchar(12);not null"`
	// Staked is the snapshot of delegated weight in base asset units.
	Staked int64 `gorm:"not null;default:0"`
	// NextClaimPeriod is the unix timestamp the next claim becomes eligible
	// at, inclusive. Zero on unmigrated v1 rows.
	NextClaimPeriod int64  `gorm:"index:idx_next_claim_period;not null;default:0"`
	Referral        string `gorm:"index:idx_referral;type:varchar(12)"`
	// Rewards is the comma-separated reward symbol set. Superseded by a
	// portfolio when one exists. Empty on unmigrated v1 rows.
	Rewards   string `gorm:"type:varchar(256)"`
	Version   int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RewardSymbols splits the stored reward set.
func (v *VoterInfo) RewardSymbols() []string {
	if v.Rewards == "" {
		return nil
	}
	return strings.Split(v.Rewards, ",")
}
