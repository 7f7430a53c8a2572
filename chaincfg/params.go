package chaincfg

// BackendVersion is the semantic version reported by getinfo.
const BackendVersion = "1.2.0"

// Params is used to group parameters for various networks such as the main
// network and test networks.
type Params struct {
	Name string

	// BaseSymbol and BaseContract identify the base asset all rates and
	// prices are denominated in.
	BaseSymbol   string
	BaseContract string

	// SystemAccount is the account the service operates as. It pays reward
	// transfers and receives inbound donations.
	SystemAccount string

	// FallbackProxy is the well-known proxy identity used when no proxy is
	// marked active in the registry.
	FallbackProxy string

	// RentSymbol is the symbol of the resource-rental market token.
	RentSymbol string

	LedgerRPCPort  string
	StakingRPCPort string
}

// MainNetParams contains parameters on the main network
var MainNetParams = Params{
	Name:           "mainnet",
	BaseSymbol:     "EOS",
	BaseContract:   "eosio.token",
	SystemAccount:  "proxy4nation",
	FallbackProxy:  "proxy4nation",
	RentSymbol:     "REX",
	LedgerRPCPort:  "8667",
	StakingRPCPort: "8665",
}

// TestNetParams contains parameters on the test network
var TestNetParams = Params{
	Name:           "testnet",
	BaseSymbol:     "EOS",
	BaseContract:   "eosio.token",
	SystemAccount:  "proxy4nation",
	FallbackProxy:  "proxy4nation",
	RentSymbol:     "REX",
	LedgerRPCPort:  "18667",
	StakingRPCPort: "18665",
}

// RegNetParams contains parameters specific to the regression test network
var RegNetParams = Params{
	Name:           "regtest",
	BaseSymbol:     "EOS",
	BaseContract:   "eosio.token",
	SystemAccount:  "proxy4nation",
	FallbackProxy:  "proxy4nation",
	RentSymbol:     "REX",
	LedgerRPCPort:  "28667",
	StakingRPCPort: "28665",
}

// ActiveNetParams is the currently selected network parameters. It defaults
// to the main network and is switched once at startup by config handling.
var ActiveNetParams = &MainNetParams
