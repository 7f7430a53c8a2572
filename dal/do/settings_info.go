package do

import "time"

// SettingsInfo is the singleton configuration row. At most one row exists;
// readers fall back to defaults when the table is empty.
type SettingsInfo struct {
	ID uint64 `gorm:"primaryKey"`
	// Rate is the annual yield in pips (1/100 of 1%).
	Rate int64 `gorm:"default:400;not null"`
	// Interval is the claim interval in seconds.
	Interval int64 `gorm:"default:86400;not null"`
	// RentRate is the annual rate applied by the reserve manager when valuing
	// rented reserve, in pips.
	RentRate int64 `gorm:"default:16;not null"`
	// MaxCatchupIntervals bounds the number of missed intervals a single
	// claim may cover.
	MaxCatchupIntervals int64 `gorm:"default:30;not null"`
	Paused              bool  `gorm:"default:false;not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
