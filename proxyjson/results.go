package proxyjson

// VoterResult describes a voter record.
type VoterResult struct {
	Owner           string `json:"owner"`
	Staked          int64  `json:"staked"`
	NextClaimPeriod int64  `json:"next_claim_period"`
	Referral        string `json:"referral,omitempty"`
	Rewards         string `json:"rewards"`
	Version         int    `json:"version"`
}

// GetVotersResult is a page of voter records.
type GetVotersResult struct {
	Total  int64         `json:"total"`
	Voters []VoterResult `json:"voters"`
}

// SettingsResult describes the engine settings.
type SettingsResult struct {
	Rate                int64 `json:"rate"`
	Interval            int64 `json:"interval"`
	RentRate            int64 `json:"rent_rate"`
	MaxCatchupIntervals int64 `json:"max_catchup_intervals"`
	Paused              bool  `json:"paused"`
}

// RewardAssetResult describes one authorized reward asset.
type RewardAssetResult struct {
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
	Price    int64  `json:"price"`
}

// ReferralResult describes one registered referral.
type ReferralResult struct {
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Rate        int64  `json:"rate"`
}

// ProxyResult describes one registered proxy.
type ProxyResult struct {
	Proxy  string `json:"proxy"`
	Active bool   `json:"active"`
}

// PortfolioResult is the ordered allocation of one account.
type PortfolioResult struct {
	Account string           `json:"account"`
	Entries []PortfolioEntry `json:"entries"`
}

// PayoutResult is one outbound transfer of a claim.
type PayoutResult struct {
	To       string `json:"to"`
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
	Amount   int64  `json:"amount"`
	Memo     string `json:"memo"`
}

// ClaimResult is the receipt of a settled claim.
type ClaimResult struct {
	Owner       string         `json:"owner"`
	Staked      int64          `json:"staked"`
	Rate        int64          `json:"rate"`
	Interval    int64          `json:"interval"`
	Entitled    int64          `json:"entitled"`
	ReferralCut int64          `json:"referral_cut,omitempty"`
	Referral    string         `json:"referral,omitempty"`
	Payouts     []PayoutResult `json:"payouts"`
	ClaimedAt   int64          `json:"claimed_at"`
}

// ClaimAllResult reports a claim sweep.
type ClaimAllResult struct {
	Claimed int `json:"claimed"`
}

// MigrateResult reports a single-voter migration.
type MigrateResult struct {
	Migrated bool `json:"migrated"`
}

// MigrateAllResult reports a bulk migration.
type MigrateAllResult struct {
	Migrated int `json:"migrated"`
}

// GetReceiptsResult is a page of claim receipts.
type GetReceiptsResult struct {
	Total    int64         `json:"total"`
	Receipts []ClaimResult `json:"receipts"`
}

// LastClaimResult is the most recent claim summary.
type LastClaimResult struct {
	Voter     string `json:"voter"`
	Amount    int64  `json:"amount"`
	Rate      int64  `json:"rate"`
	Interval  int64  `json:"interval"`
	ClaimedAt int64  `json:"claimed_at"`
}

// CleanResult reports how many rows a clean removed.
type CleanResult struct {
	Rows int64 `json:"rows"`
}

// GetInfoResult is the server status summary.
type GetInfoResult struct {
	Version     string `json:"version"`
	Net         string `json:"net"`
	Voters      int64  `json:"voters"`
	Receipts    int64  `json:"receipts"`
	Paused      bool   `json:"paused"`
	ActiveProxy string `json:"active_proxy,omitempty"`
}
