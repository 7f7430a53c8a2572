package proxyjson

// Method names accepted by the RPC dispatcher.
const (
	MethodSignup       = "signup"
	MethodUnsignup     = "unsignup"
	MethodRefresh      = "refresh"
	MethodClaim        = "claim"
	MethodClaimAll     = "claimall"
	MethodSetRate      = "setrate"
	MethodSetInterval  = "setinterval"
	MethodSetRent      = "setrent"
	MethodSetReward    = "setreward"
	MethodDelReward    = "delreward"
	MethodSetPortfolio = "setportfolio"
	MethodDelPortfolio = "delportfolio"
	MethodSetReferral  = "setreferral"
	MethodDelReferral  = "delreferral"
	MethodSetProxy     = "setproxy"
	MethodPause        = "pause"
	MethodSetPrice     = "setprice"
	MethodSetPrices    = "setprices"
	MethodMigrate      = "migrate"
	MethodMigrateAll   = "migrateall"
	MethodClean        = "clean"

	MethodGetInfo      = "getinfo"
	MethodGetVoter     = "getvoter"
	MethodGetVoters    = "getvoters"
	MethodGetSettings  = "getsettings"
	MethodGetRewards   = "getrewards"
	MethodGetReferrals = "getreferrals"
	MethodGetProxies   = "getproxies"
	MethodGetPortfolio = "getportfolio"
	MethodGetReceipts  = "getreceipts"
	MethodGetLastClaim = "getlastclaim"
)

type SignupCmd struct {
	Owner    string `json:"owner"`
	Referral string `json:"referral,omitempty"`
}

type UnsignupCmd struct {
	Owner string `json:"owner"`
}

type RefreshCmd struct {
	Owner string `json:"owner"`
}

type ClaimCmd struct {
	Owner string `json:"owner"`
}

// ClaimAllCmd sweeps voters with Start <= owner < End; empty bounds mean
// the whole table.
type ClaimAllCmd struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type SetRateCmd struct {
	// Rate is the annual yield in pips (1/100 of 1%).
	Rate int64 `json:"rate"`
}

type SetIntervalCmd struct {
	// Interval is the claim interval in seconds.
	Interval int64 `json:"interval"`
}

type SetRentCmd struct {
	// Rate is the annual rental yield in pips.
	Rate int64 `json:"rate"`
}

type SetRewardCmd struct {
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
	// Price is in base asset units per asset unit, scaled by 10000.
	Price int64 `json:"price"`
}

type DelRewardCmd struct {
	Symbol string `json:"symbol"`
}

// PortfolioEntry is one slice of an account's reward allocation.
type PortfolioEntry struct {
	Symbol string `json:"symbol"`
	// Percent is in 1/100 of 1%, 10000 = 100.00%.
	Percent int64 `json:"percent"`
}

type SetPortfolioCmd struct {
	Account string           `json:"account"`
	Entries []PortfolioEntry `json:"entries"`
}

type DelPortfolioCmd struct {
	Account string `json:"account"`
}

type SetReferralCmd struct {
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	// Rate is the commission in pips, at most 500.
	Rate int64 `json:"rate"`
}

type DelReferralCmd struct {
	Name string `json:"name"`
}

type SetProxyCmd struct {
	Proxy  string `json:"proxy"`
	Active bool   `json:"active"`
}

type PauseCmd struct {
	Paused bool `json:"paused"`
}

type SetPriceCmd struct {
	Symbol string `json:"symbol"`
	Price  int64  `json:"price"`
}

// AssetPrice is one quote of a bulk price update.
type AssetPrice struct {
	Symbol string `json:"symbol"`
	Price  int64  `json:"price"`
}

type SetPricesCmd struct {
	Prices []AssetPrice `json:"prices"`
}

type MigrateCmd struct {
	Owner string `json:"owner"`
}

// MigrateAllCmd upgrades every legacy voter row, skipping the first Skip
// unmigrated rows so an interrupted sweep can resume.
type MigrateAllCmd struct {
	Skip int `json:"skip,omitempty"`
}

type CleanCmd struct {
	Selector string `json:"selector"`
}

type GetInfoCmd struct{}

type GetVoterCmd struct {
	Owner string `json:"owner"`
}

type GetVotersCmd struct {
	Page int `json:"page"`
	Num  int `json:"num"`
}

type GetSettingsCmd struct{}

type GetRewardsCmd struct{}

type GetReferralsCmd struct{}

type GetProxiesCmd struct{}

type GetPortfolioCmd struct {
	Account string `json:"account"`
}

type GetReceiptsCmd struct {
	Owner string `json:"owner,omitempty"`
	Page  int    `json:"page"`
	Num   int    `json:"num"`
}

type GetLastClaimCmd struct{}

// Commands maps each method to a constructor of its command struct. The
// dispatcher uses it to decode request params.
var Commands = map[string]func() interface{}{
	MethodSignup:       func() interface{} { return new(SignupCmd) },
	MethodUnsignup:     func() interface{} { return new(UnsignupCmd) },
	MethodRefresh:      func() interface{} { return new(RefreshCmd) },
	MethodClaim:        func() interface{} { return new(ClaimCmd) },
	MethodClaimAll:     func() interface{} { return new(ClaimAllCmd) },
	MethodSetRate:      func() interface{} { return new(SetRateCmd) },
	MethodSetInterval:  func() interface{} { return new(SetIntervalCmd) },
	MethodSetRent:      func() interface{} { return new(SetRentCmd) },
	MethodSetReward:    func() interface{} { return new(SetRewardCmd) },
	MethodDelReward:    func() interface{} { return new(DelRewardCmd) },
	MethodSetPortfolio: func() interface{} { return new(SetPortfolioCmd) },
	MethodDelPortfolio: func() interface{} { return new(DelPortfolioCmd) },
	MethodSetReferral:  func() interface{} { return new(SetReferralCmd) },
	MethodDelReferral:  func() interface{} { return new(DelReferralCmd) },
	MethodSetProxy:     func() interface{} { return new(SetProxyCmd) },
	MethodPause:        func() interface{} { return new(PauseCmd) },
	MethodSetPrice:     func() interface{} { return new(SetPriceCmd) },
	MethodSetPrices:    func() interface{} { return new(SetPricesCmd) },
	MethodMigrate:      func() interface{} { return new(MigrateCmd) },
	MethodMigrateAll:   func() interface{} { return new(MigrateAllCmd) },
	MethodClean:        func() interface{} { return new(CleanCmd) },
	MethodGetInfo:      func() interface{} { return new(GetInfoCmd) },
	MethodGetVoter:     func() interface{} { return new(GetVoterCmd) },
	MethodGetVoters:    func() interface{} { return new(GetVotersCmd) },
	MethodGetSettings:  func() interface{} { return new(GetSettingsCmd) },
	MethodGetRewards:   func() interface{} { return new(GetRewardsCmd) },
	MethodGetReferrals: func() interface{} { return new(GetReferralsCmd) },
	MethodGetProxies:   func() interface{} { return new(GetProxiesCmd) },
	MethodGetPortfolio: func() interface{} { return new(GetPortfolioCmd) },
	MethodGetReceipts:  func() interface{} { return new(GetReceiptsCmd) },
	MethodGetLastClaim: func() interface{} { return new(GetLastClaimCmd) },
}
