package do

import "time"

// ClaimReceiptInfo is the persisted summary of a completed claim.
type ClaimReceiptInfo struct {
	ID     uint64 `gorm:"primaryKey"`
	Owner  string `gorm:"index:idx_owner;type:varchar(12);not null"`
	Staked int64  `gorm:"not null;default:0"`
	Rate   int64  `gorm:"not null;default:0"`
	// Interval is the claim interval the receipt was computed with, seconds.
	Interval int64 `gorm:"not null;default:0"`
	// Entitled is the base-asset-equivalent entitlement before the referral
	// cut, in base asset units.
	Entitled    int64  `gorm:"not null;default:0"`
	ReferralCut int64  `gorm:"not null;default:0"`
	Referral    string `gorm:"type:varchar(12)"`
	// Payouts is the JSON-encoded payout set of the claim.
	Payouts   string `gorm:"type:varchar(2048)"`
	ClaimedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
