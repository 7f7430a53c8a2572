package claimmgr

import (
	"math/big"

	"github.com/EOS-Nation/eosn-proxy/constdef"
)

// intervalsElapsed is the number of whole claim intervals covered by a claim
// at time now, given the voter's next eligible timestamp. Eligibility is
// inclusive: now == nextClaimPeriod covers exactly one interval. The result
// is capped at maxCatchup so that a long-dormant voter cannot accrue
// unbounded back pay.
func intervalsElapsed(now, nextClaimPeriod, interval, maxCatchup int64) int64 {
	if interval <= 0 || now < nextClaimPeriod {
		return 0
	}
	windowStart := nextClaimPeriod - interval
	n := (now - windowStart) / interval
	if maxCatchup > 0 && n > maxCatchup {
		n = maxCatchup
	}
	return n
}

// entitledAmount computes floor(staked * rate * elapsedSeconds /
// (RateDenominator * SecondsPerYear)) in base asset units. The triple
// product overflows int64 for realistic whale stakes, so the numerator is
// carried in a big.Int.
func entitledAmount(staked, rate, elapsedSeconds int64) int64 {
	if staked <= 0 || rate <= 0 || elapsedSeconds <= 0 {
		return 0
	}
	num := new(big.Int).SetInt64(staked)
	num.Mul(num, big.NewInt(rate))
	num.Mul(num, big.NewInt(elapsedSeconds))
	den := big.NewInt(int64(constdef.RateDenominator) * int64(constdef.SecondsPerYear))
	num.Quo(num, den)
	if !num.IsInt64() {
		// Saturate rather than wrap; a stake this size means corrupt input.
		return 0
	}
	return num.Int64()
}

// baseValue is the inverse of assetUnits: the base asset value of units of
// a reward asset priced at price, flooring the result. baseValue(assetUnits(x,
// p), p) <= x, and the difference is the dust lost to unit conversion.
func baseValue(units, price int64) int64 {
	if units <= 0 || price <= 0 {
		return 0
	}
	num := new(big.Int).SetInt64(units)
	num.Mul(num, big.NewInt(price))
	num.Quo(num, big.NewInt(constdef.PriceScale))
	if !num.IsInt64() {
		return 0
	}
	return num.Int64()
}

// assetUnits converts a base asset quantity into units of a reward asset
// priced at price (base units per asset unit, scaled by PriceScale),
// flooring the result.
func assetUnits(baseAmount, price int64) int64 {
	if baseAmount <= 0 || price <= 0 {
		return 0
	}
	num := new(big.Int).SetInt64(baseAmount)
	num.Mul(num, big.NewInt(constdef.PriceScale))
	num.Quo(num, big.NewInt(price))
	if !num.IsInt64() {
		return 0
	}
	return num.Int64()
}
