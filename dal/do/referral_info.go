package do

import "time"

// ReferralInfo is an authorized referral account.
type ReferralInfo struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex:unique_idx_name;type:varchar(12);not null"`
	Website     string `gorm:"type:varchar(256)"`
	Description string `gorm:"type:varchar(512)"`
	// Rate is the referral commission in pips, capped at
	// constdef.MaxReferralRate.
	Rate      int64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
