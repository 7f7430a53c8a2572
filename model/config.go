package model

// EngineConfig groups the operational knobs of the claim engine and the
// background managers. Values are resolved once at startup from the config
// file; per-claim parameters (rate, interval, paused) live in the settings
// table instead.
type EngineConfig struct {
	// ClaimAllPageSize bounds the number of voters a single claimall
	// invocation may touch.
	ClaimAllPageSize int

	// MigrateAllPageSize bounds the number of voters a single migrateall
	// invocation may touch.
	MigrateAllPageSize int

	// ReserveFloat is the base asset amount kept liquid for payouts. Reserve
	// above ReserveTarget is parked in the rental market.
	ReserveFloat  int64
	ReserveTarget int64

	// PriceRefreshSeconds is the cadence of the scheduled price refresh.
	PriceRefreshSeconds int
}
