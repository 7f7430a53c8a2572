package claimmgr

import (
	"math/big"

	"github.com/EOS-Nation/eosn-proxy/constdef"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/model"
)

// splitAllocation divides a base asset amount across the voter's portfolio
// entries. Each entry receives floor(amount * percent / PercentDenominator)
// base units, converted to units of its asset at the registered price. The
// unallocated residue, plus the share of any entry whose asset cannot be
// resolved, is paid out in the base asset so that every claim disburses the
// full entitlement in base equivalent terms.
func splitAllocation(amount int64, entries []model.PortfolioEntry, assets map[string]*do.RewardAssetInfo, base *do.RewardAssetInfo) []model.Payout {
	if amount <= 0 {
		return nil
	}

	payouts := make([]model.Payout, 0, len(entries)+1)
	baseIdx := -1
	allocated := int64(0)
	for _, entry := range entries {
		share := percentShare(amount, entry.Percent)
		if share <= 0 {
			continue
		}
		asset, ok := assets[entry.Symbol]
		if !ok {
			// Unresolvable entry, its share falls through to the base asset.
			continue
		}
		if entry.Symbol == base.Symbol {
			allocated += share
			baseIdx = len(payouts)
			payouts = append(payouts, model.Payout{
				Symbol:   base.Symbol,
				Contract: base.Contract,
				Amount:   share,
			})
			continue
		}
		units := assetUnits(share, asset.Price)
		if units <= 0 {
			// Share too small for a single unit, refund it in base.
			continue
		}
		// Count only the floored value of the converted payout so that the
		// conversion dust joins the base residue below.
		allocated += baseValue(units, asset.Price)
		payouts = append(payouts, model.Payout{
			Symbol:   asset.Symbol,
			Contract: asset.Contract,
			Amount:   units,
		})
	}

	residue := amount - allocated
	if residue > 0 {
		if baseIdx >= 0 {
			payouts[baseIdx].Amount += residue
		} else {
			payouts = append(payouts, model.Payout{
				Symbol:   base.Symbol,
				Contract: base.Contract,
				Amount:   residue,
			})
		}
	}
	return payouts
}

func percentShare(amount, percent int64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	num := new(big.Int).SetInt64(amount)
	num.Mul(num, big.NewInt(percent))
	num.Quo(num, big.NewInt(constdef.PercentDenominator))
	if !num.IsInt64() {
		return 0
	}
	return num.Int64()
}
