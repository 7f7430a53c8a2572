package do

import "time"

// ProxyInfo is an authorized voting proxy. At most one row is active at a
// time; the proxy service enforces that invariant on writes.
type ProxyInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	Proxy     string `gorm:"uniqueIndex:unique_idx_proxy;type:varchar(12);not null"`
	Active    bool   `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
