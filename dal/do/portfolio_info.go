package do

import "time"

// PortfolioInfo is a single entry of an account's reward allocation. The
// full allocation of an account is the ordered set of its rows; Position
// preserves the order the entries were supplied in.
type PortfolioInfo struct {
	ID      uint64 `gorm:"primaryKey"`
	Account string `gorm:"uniqueIndex:unique_idx_account_symbol,priority:1;index:idx_account;type:varchar(12);not null"`
	Symbol  string `gorm:"uniqueIndex:unique_idx_account_symbol,priority:2;type:varchar(12);not null"`
	// Percent is in 1/100 of 1%, 10000 = 100.00%.
	Percent   int64 `gorm:"not null"`
	Position  int   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
