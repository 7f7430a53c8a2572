package do

import "time"

// RewardAssetInfo is an authorized reward asset.
type RewardAssetInfo struct {
	ID     uint64 `gorm:"primaryKey"`
	Symbol string `gorm:"uniqueIndex:unique_idx_symbol;type:varchar(12);not null"`
	// Contract is the denominating token contract. Immutable once set.
	Contract string `gorm:"type:varchar(12);not null"`
	// Price is the base asset quantity equal to one unit of this asset,
	// scaled by constdef.PriceScale. Always > 0.
	Price     int64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
