package claimmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/constdef"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/metrics"
	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/service"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

const (
	claimMemo    = "proxy voter rewards"
	referralMemo = "proxy referral commission"
)

// Transferer executes outbound ledger transfers for claim payouts.
type Transferer interface {
	Transfer(ctx context.Context, payout *model.Payout) error
}

// StakeSource answers delegation queries against the staking registry.
type StakeSource interface {
	CurrentStake(ctx context.Context, owner string) (int64, error)
	CurrentProxy(ctx context.Context, owner string) (string, error)
}

// Engine drives the voter lifecycle: signup, refresh, accrual claims and
// schema migration. It owns no state of its own; everything durable lives in
// the database and everything external goes through the Transferer and
// StakeSource collaborators.
type Engine struct {
	db       *gorm.DB
	clock    clockwork.Clock
	transfer Transferer
	stake    StakeSource
	cfg      *model.EngineConfig
}

func NewEngine(db *gorm.DB, cfg *model.EngineConfig, clock clockwork.Clock, transfer Transferer, stake StakeSource) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		db:       db,
		clock:    clock,
		transfer: transfer,
		stake:    stake,
		cfg:      cfg,
	}
}

// Signup registers a voter. The account must currently delegate to an
// authorized proxy; its delegated weight is snapshotted and the first claim
// unlocks one full interval from now.
func (e *Engine) Signup(ctx context.Context, owner string, referral string) (*do.VoterInfo, error) {
	settingsService := service.GetSettingsService()
	proxyService := service.GetProxyService()
	voterService := service.GetVoterService()

	settings, err := settingsService.Get(ctx, e.db)
	if err != nil {
		return nil, err
	}
	if settings.Paused {
		return nil, fmt.Errorf("%w: engine is paused", errcode.ErrNotEligible)
	}

	if err := e.checkDelegation(ctx, owner, proxyService); err != nil {
		return nil, err
	}
	staked, err := e.stake.CurrentStake(ctx, owner)
	if err != nil {
		return nil, err
	}

	// A fresh voter is claimable right away; the fixed cadence starts from
	// whenever they choose to collect.
	next := e.clock.Now().Unix()
	info, err := voterService.Signup(ctx, e.db, owner, referral, staked, next)
	if err != nil {
		return nil, err
	}
	metrics.VoterSignups.Inc()
	log.Info("voter signed up", "owner", owner, "referral", referral, "staked", staked, "next_claim_period", next)
	return info, nil
}

// Unsignup erases the voter record and its portfolio. Accrued but unclaimed
// rewards are forfeited.
func (e *Engine) Unsignup(ctx context.Context, owner string) error {
	if err := service.GetVoterService().Unsignup(ctx, e.db, owner); err != nil {
		return err
	}
	log.Info("voter removed", "owner", owner)
	return nil
}

// Refresh re-reads the voter's delegated weight from the staking registry
// and stores the new snapshot. The claim schedule is untouched. Delegation
// is the sole admission gate: a voter whose weight has moved to an
// unauthorized proxy is erased outright, not flagged.
func (e *Engine) Refresh(ctx context.Context, owner string) (*do.VoterInfo, error) {
	voterService := service.GetVoterService()
	if _, err := voterService.Get(ctx, e.db, owner); err != nil {
		return nil, err
	}
	if err := e.checkDelegation(ctx, owner, service.GetProxyService()); err != nil {
		if errors.Is(err, errcode.ErrNotEligible) {
			if rmErr := voterService.Unsignup(ctx, e.db, owner); rmErr != nil {
				return nil, rmErr
			}
			log.Info("voter revoked on refresh", "owner", owner)
			return nil, fmt.Errorf("%w: delegation revoked, voter removed", errcode.ErrNotEligible)
		}
		return nil, err
	}
	staked, err := e.stake.CurrentStake(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := voterService.UpdateStaked(ctx, e.db, owner, staked); err != nil {
		return nil, err
	}
	log.Debug("voter refreshed", "owner", owner, "staked", staked)
	return voterService.Get(ctx, e.db, owner)
}

// Claim settles every whole interval the voter has accrued since their last
// claim, pays the referral commission and the portfolio split, advances the
// claim schedule and records a receipt. The whole claim is all-or-nothing:
// a failed ledger transfer unwinds the schedule advance and the receipt.
func (e *Engine) Claim(ctx context.Context, owner string) (*model.ClaimReceipt, error) {
	return e.settle(ctx, owner)
}

// ClaimAll sweeps the voters with start <= owner < end (empty bounds mean
// unbounded) in pages and claims for each one. Ineligible voters are
// skipped; an individual claim failure is logged and does not abort the
// sweep. Re-invoking over an overlapping range is safe: a voter whose
// schedule already advanced this cadence window is simply skipped. Returns
// how many claims settled.
func (e *Engine) ClaimAll(ctx context.Context, start, end string) (int, error) {
	settings, err := service.GetSettingsService().Get(ctx, e.db)
	if err != nil {
		return 0, err
	}
	if settings.Paused {
		return 0, fmt.Errorf("%w: engine is paused", errcode.ErrNotEligible)
	}

	voterService := service.GetVoterService()
	pageSize := e.cfg.ClaimAllPageSize
	claimed := 0
	cursor := start
	// Pages overlap by one row: the cursor re-fetches the last owner of the
	// previous page, which the done guard below skips.
	done := ""
	for {
		voters, err := voterService.GetRange(ctx, e.db, cursor, end, pageSize)
		if err != nil {
			return claimed, err
		}
		if len(voters) == 0 {
			break
		}
		for _, voter := range voters {
			if voter.Owner == done {
				continue
			}
			_, err := e.settle(ctx, voter.Owner)
			if errors.Is(err, errcode.ErrNotEligible) {
				continue
			}
			if err != nil {
				log.Error("claim sweep: claim failed", "owner", voter.Owner, "err", err)
				continue
			}
			claimed++
		}
		if len(voters) < pageSize {
			break
		}
		last := voters[len(voters)-1].Owner
		if last == done {
			break
		}
		done = last
		cursor = last
	}
	log.Info("claim sweep finished", "start", start, "end", end, "claimed", claimed)
	return claimed, nil
}

// HandleDelegationChange refreshes the staked snapshot of a voter whose
// on-chain delegation moved. Accounts that never signed up are ignored, and
// a voter whose weight left the authorized proxy is erased by Refresh.
func (e *Engine) HandleDelegationChange(ctx context.Context, change *model.DelegationChange) {
	_, err := e.Refresh(ctx, change.Account)
	switch {
	case err == nil:
	case errors.Is(err, errcode.ErrNotFound):
	case errors.Is(err, errcode.ErrNotEligible):
	default:
		log.Error("delegation refresh failed", "account", change.Account, "delta", change.Delta, "err", err)
	}
}

// Migrate upgrades a single voter row to the current schema. Returns false
// when the row was already current.
func (e *Engine) Migrate(ctx context.Context, owner string) (bool, error) {
	now := e.clock.Now().Unix()
	return service.GetVoterService().Migrate(ctx, e.db, owner, now)
}

// MigrateAll upgrades every legacy voter row in bounded batches, skipping
// the first skip unmigrated rows so a partially completed sweep can be
// resumed from a cursor.
func (e *Engine) MigrateAll(ctx context.Context, skip int) (int, error) {
	voterService := service.GetVoterService()
	now := e.clock.Now().Unix()
	total := 0
	for {
		n, err := voterService.MigrateAll(ctx, e.db, skip, e.cfg.MigrateAllPageSize, now)
		if err != nil {
			return total, err
		}
		total += n
		if n < e.cfg.MigrateAllPageSize {
			break
		}
	}
	if total > 0 {
		log.Info("voter migration finished", "migrated", total)
	}
	return total, nil
}

// settle runs a claim end to end in one transaction: eligibility, accrual,
// bookkeeping and the ledger transfers. A failed transfer aborts the
// transaction so the interval stays claimable.
func (e *Engine) settle(ctx context.Context, owner string) (*model.ClaimReceipt, error) {
	settingsService := service.GetSettingsService()
	voterService := service.GetVoterService()
	rewardService := service.GetRewardService()
	referralService := service.GetReferralService()
	proxyService := service.GetProxyService()
	receiptService := service.GetReceiptService()

	var receipt *model.ClaimReceipt
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := settingsService.Get(ctx, tx)
		if err != nil {
			return err
		}
		if settings.Paused {
			return fmt.Errorf("%w: engine is paused", errcode.ErrNotEligible)
		}

		voter, err := voterService.Get(ctx, tx, owner)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		intervals := intervalsElapsed(now.Unix(), voter.NextClaimPeriod, settings.Interval, settings.MaxCatchupIntervals)
		if intervals == 0 {
			return fmt.Errorf("%w: next claim unlocks at %d", errcode.ErrNotEligible, voter.NextClaimPeriod)
		}

		if err := e.checkDelegationTx(ctx, tx, owner, proxyService); err != nil {
			return err
		}
		staked, err := e.stake.CurrentStake(ctx, owner)
		if err != nil {
			return err
		}
		if staked <= 0 {
			return fmt.Errorf("%w: no delegated stake", errcode.ErrNotEligible)
		}

		elapsed := intervals * settings.Interval
		entitled := entitledAmount(staked, settings.Rate, elapsed)

		var referralCut int64
		referral := voter.Referral
		if referral != "" {
			rate, registered, err := referralService.Lookup(ctx, tx, referral)
			if err != nil {
				return err
			}
			if !registered {
				// Referral removed since signup; pay nothing and keep going.
				referral = ""
			} else {
				referralCut = percentShare(entitled, rate)
			}
		}

		portfolio, err := rewardService.GetPortfolio(ctx, tx, owner)
		if err != nil {
			return err
		}
		assets, base, err := e.assetTable(ctx, tx, rewardService)
		if err != nil {
			return err
		}

		payouts := splitAllocation(entitled-referralCut, portfolio, assets, base)
		for i := range payouts {
			payouts[i].To = owner
			payouts[i].Memo = claimMemo
		}
		if referralCut > 0 {
			payouts = append(payouts, model.Payout{
				To:       referral,
				Symbol:   base.Symbol,
				Contract: base.Contract,
				Amount:   referralCut,
				Memo:     referralMemo,
			})
		}

		voter.Staked = staked
		voter.NextClaimPeriod += elapsed
		voter.Rewards = rewardSet(portfolio, base.Symbol)
		if err := voterService.Update(ctx, tx, voter); err != nil {
			return err
		}

		receipt = &model.ClaimReceipt{
			Owner:       owner,
			Staked:      staked,
			Rate:        settings.Rate,
			Interval:    settings.Interval,
			Entitled:    entitled,
			ReferralCut: referralCut,
			Referral:    referral,
			Payouts:     payouts,
			Timestamp:   now,
		}
		if err := receiptService.Record(ctx, tx, receipt); err != nil {
			return err
		}
		return e.disburse(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	metrics.ClaimsSettled.Inc()
	metrics.RewardsEntitled.Add(float64(receipt.Entitled))
	log.Info("claim settled", "owner", owner, "entitled", receipt.Entitled,
		"referral_cut", receipt.ReferralCut, "payouts", len(receipt.Payouts))
	return receipt, nil
}

// disburse pushes the receipt's payouts to the ledger, stopping at the
// first failure. Runs inside the claim transaction so a failure unwinds
// the settlement.
func (e *Engine) disburse(ctx context.Context, receipt *model.ClaimReceipt) error {
	for i := range receipt.Payouts {
		payout := &receipt.Payouts[i]
		if err := e.transfer.Transfer(ctx, payout); err != nil {
			metrics.TransferFailures.Inc()
			log.Error("payout transfer failed", "to", payout.To, "symbol", payout.Symbol,
				"amount", payout.Amount, "err", err)
			return fmt.Errorf("payout transfer to %s: %w", payout.To, err)
		}
	}
	return nil
}

func (e *Engine) checkDelegation(ctx context.Context, owner string, proxyService service.ProxyService) error {
	return e.checkDelegationTx(ctx, e.db, owner, proxyService)
}

func (e *Engine) checkDelegationTx(ctx context.Context, tx *gorm.DB, owner string, proxyService service.ProxyService) error {
	proxy, err := e.stake.CurrentProxy(ctx, owner)
	if err != nil {
		return err
	}
	authorized, err := proxyService.IsAuthorized(ctx, tx, proxy)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("%w: %s does not delegate to an authorized proxy", errcode.ErrNotEligible, owner)
	}
	return nil
}

// assetTable loads the reward asset registry as a symbol-indexed map plus
// the base asset. The base asset is synthesized from the chain params when
// the registry has no row for it, at par price.
func (e *Engine) assetTable(ctx context.Context, tx *gorm.DB, rewardService service.RewardService) (map[string]*do.RewardAssetInfo, *do.RewardAssetInfo, error) {
	infos, err := rewardService.GetAssets(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	assets := make(map[string]*do.RewardAssetInfo, len(infos))
	for _, info := range infos {
		assets[info.Symbol] = info
	}
	params := chaincfg.ActiveNetParams
	base, ok := assets[params.BaseSymbol]
	if !ok {
		base = &do.RewardAssetInfo{
			Symbol:   params.BaseSymbol,
			Contract: params.BaseContract,
			Price:    constdef.PriceScale,
		}
		assets[base.Symbol] = base
	}
	return assets, base, nil
}

func rewardSet(portfolio []model.PortfolioEntry, baseSymbol string) string {
	if len(portfolio) == 0 {
		return baseSymbol
	}
	symbols := make([]string, 0, len(portfolio))
	for _, entry := range portfolio {
		symbols = append(symbols, entry.Symbol)
	}
	return strings.Join(symbols, ",")
}
