package constdef

const (
	MinAccountLength = 1
	MaxAccountLength = 12
	MaxSymbolLength  = 7
	MaxMemoLength    = 256
	MaxWebsiteLength = 256
	MaxDescLength    = 512
)

const (
	// RateDenominator is the denominator of all rates expressed in pips,
	// where 1 pip = 1/100 of 1%.
	RateDenominator = 10000

	// PriceScale is the fixed-point scale of reward asset prices. A price of
	// 10000 means 1.0000 unit of the base asset per unit of the reward asset.
	PriceScale = 10000

	// PercentDenominator is the denominator of portfolio percentages,
	// 10000 = 100.00%.
	PercentDenominator = 10000

	SecondsPerYear = 31536000

	// MaxReferralRate caps referral commissions at 5%.
	MaxReferralRate = 500
)

const (
	DefaultRate                = 400
	DefaultInterval            = 86400
	DefaultRentRate            = 16
	DefaultMaxCatchupIntervals = 30
)

// Voter record schema versions.
const (
	VoterSchemaV1 = 1
	VoterSchemaV2 = 2
)
