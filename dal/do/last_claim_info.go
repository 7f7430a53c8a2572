package do

import "time"

// LastClaimInfo is the singleton "last claim" row, overwritten on every
// successful claim.
type LastClaimInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	Voter     string `gorm:"type:varchar(12);not null"`
	Amount    int64  `gorm:"not null;default:0"`
	Rate      int64  `gorm:"not null;default:0"`
	Interval  int64  `gorm:"not null;default:0"`
	ClaimedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
