package claimmgr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/service"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLedger struct {
	mu      sync.Mutex
	payouts []model.Payout
	failAll bool
}

func (f *fakeLedger) Transfer(ctx context.Context, payout *model.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("ledger unavailable")
	}
	f.payouts = append(f.payouts, *payout)
	return nil
}

func (f *fakeLedger) sent() []model.Payout {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Payout(nil), f.payouts...)
}

type fakeStaking struct {
	stake map[string]int64
	proxy map[string]string
}

func (f *fakeStaking) CurrentStake(ctx context.Context, owner string) (int64, error) {
	return f.stake[owner], nil
}

func (f *fakeStaking) CurrentProxy(ctx context.Context, owner string) (string, error) {
	if proxy, ok := f.proxy[owner]; ok {
		return proxy, nil
	}
	return chaincfg.ActiveNetParams.FallbackProxy, nil
}

type engineHarness struct {
	engine  *Engine
	db      *gorm.DB
	clock   *clockwork.FakeClock
	ledger  *fakeLedger
	staking *fakeStaking
}

func newEngineHarness(t *testing.T) *engineHarness {
	t.Helper()
	db, err := dal.InitTestDB()
	require.NoError(t, err)

	ledger := &fakeLedger{}
	staking := &fakeStaking{stake: map[string]int64{}, proxy: map[string]string{}}
	clock := clockwork.NewFakeClockAt(time.Unix(1600000000, 0))
	cfg := &model.EngineConfig{ClaimAllPageSize: 100, MigrateAllPageSize: 100}
	return &engineHarness{
		engine:  NewEngine(db, cfg, clock, ledger, staking),
		db:      db,
		clock:   clock,
		ledger:  ledger,
		staking: staking,
	}
}

func (h *engineHarness) signup(t *testing.T, owner string, staked int64) *do.VoterInfo {
	t.Helper()
	h.staking.stake[owner] = staked
	info, err := h.engine.Signup(context.Background(), owner, "")
	require.NoError(t, err)
	return info
}

func (h *engineHarness) advanceDays(days int64) {
	h.clock.Advance(time.Duration(days*86400) * time.Second)
}

// drain collects the interval granted at signup so the test can make
// assertions about a clean cadence afterwards.
func (h *engineHarness) drain(t *testing.T, owner string) {
	t.Helper()
	_, err := h.engine.Claim(context.Background(), owner)
	require.NoError(t, err)
	h.ledger.mu.Lock()
	h.ledger.payouts = nil
	h.ledger.mu.Unlock()
}

func TestEngineSignup(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()

	info := h.signup(t, "alice", 6000000)
	assert.Equal(t, int64(6000000), info.Staked)
	assert.Equal(t, h.clock.Now().Unix(), info.NextClaimPeriod)
	assert.Equal(t, "EOS", info.Rewards)
	assert.Equal(t, 2, info.Version)

	_, err := h.engine.Signup(ctx, "alice", "")
	assert.ErrorIs(t, err, errcode.ErrAlreadyExists)

	_, err = h.engine.Signup(ctx, "bob", "nosuchrefer")
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestEngineSignupUnauthorizedProxy(t *testing.T) {
	h := newEngineHarness(t)
	h.staking.proxy["mallory"] = "randomproxy"

	_, err := h.engine.Signup(context.Background(), "mallory", "")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)
}

func TestEngineClaimBoundaryInclusive(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)

	// A fresh voter is due immediately; eligibility at now == next_claim_period
	// covers exactly one interval.
	receipt, err := h.engine.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(657), receipt.Entitled)

	_, err = h.engine.Claim(ctx, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)
}

func TestEngineClaimSingleInterval(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)
	h.drain(t, "alice")
	h.advanceDays(1)

	receipt, err := h.engine.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(657), receipt.Entitled)
	require.Len(t, receipt.Payouts, 1)
	assert.Equal(t, "alice", receipt.Payouts[0].To)
	assert.Equal(t, "EOS", receipt.Payouts[0].Symbol)
	assert.Equal(t, int64(657), receipt.Payouts[0].Amount)
	assert.Equal(t, claimMemo, receipt.Payouts[0].Memo)
	require.Len(t, h.ledger.sent(), 1)

	voter, err := service.GetVoterService().Get(ctx, h.db, "alice")
	require.NoError(t, err)
	assert.Equal(t, h.clock.Now().Unix()+86400, voter.NextClaimPeriod)

	// Immediately claiming again yields nothing.
	_, err = h.engine.Claim(ctx, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)
}

func TestEngineClaimCatchupCap(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)
	h.drain(t, "alice")
	firstDue := h.clock.Now().Unix() + 86400

	// 40 missed intervals, but at most 30 settle in one claim.
	h.advanceDays(40)
	receipt, err := h.engine.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(19726), receipt.Entitled)

	voter, err := service.GetVoterService().Get(ctx, h.db, "alice")
	require.NoError(t, err)
	assert.Equal(t, firstDue+30*86400, voter.NextClaimPeriod)

	// The remaining 10 intervals settle in a follow-up claim; the schedule
	// phase is preserved so no interval pays twice.
	receipt, err = h.engine.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(6575), receipt.Entitled)

	_, err = h.engine.Claim(ctx, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)
}

func TestEnginePause(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)
	h.advanceDays(1)

	require.NoError(t, service.GetSettingsService().SetPaused(ctx, h.db, true))

	_, err := h.engine.Claim(ctx, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)
	_, err = h.engine.ClaimAll(ctx, "", "")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)
	_, err = h.engine.Signup(ctx, "bob", "")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)

	require.NoError(t, service.GetSettingsService().SetPaused(ctx, h.db, false))
	_, err = h.engine.Claim(ctx, "alice")
	assert.NoError(t, err)
}

func TestEngineClaimReferralCut(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()

	require.NoError(t, service.GetReferralService().Set(ctx, h.db, "refpartner", "", "", 500))
	h.staking.stake["bob"] = 6000000
	_, err := h.engine.Signup(ctx, "bob", "refpartner")
	require.NoError(t, err)
	h.drain(t, "bob")

	h.advanceDays(1)
	receipt, err := h.engine.Claim(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(657), receipt.Entitled)
	assert.Equal(t, int64(32), receipt.ReferralCut)
	require.Len(t, receipt.Payouts, 2)
	assert.Equal(t, "bob", receipt.Payouts[0].To)
	assert.Equal(t, int64(625), receipt.Payouts[0].Amount)
	assert.Equal(t, "refpartner", receipt.Payouts[1].To)
	assert.Equal(t, int64(32), receipt.Payouts[1].Amount)
	assert.Equal(t, referralMemo, receipt.Payouts[1].Memo)

	// A referral removed after signup is silently skipped.
	require.NoError(t, service.GetReferralService().Remove(ctx, h.db, "refpartner"))
	h.advanceDays(1)
	receipt, err = h.engine.Claim(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), receipt.ReferralCut)
	require.Len(t, receipt.Payouts, 1)
	assert.Equal(t, int64(657), receipt.Payouts[0].Amount)
}

func TestEngineClaimPortfolioSplit(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	rewardService := service.GetRewardService()

	require.NoError(t, rewardService.RegisterAsset(ctx, h.db, "USDT", "tethertether", 20000))
	h.signup(t, "alice", 6000000)
	h.drain(t, "alice")
	require.NoError(t, rewardService.SetPortfolio(ctx, h.db, "alice",
		[]model.PortfolioEntry{{Symbol: "USDT", Percent: 5000}}))

	h.advanceDays(1)
	receipt, err := h.engine.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(657), receipt.Entitled)
	require.Len(t, receipt.Payouts, 2)
	assert.Equal(t, "USDT", receipt.Payouts[0].Symbol)
	assert.Equal(t, int64(164), receipt.Payouts[0].Amount)
	assert.Equal(t, "EOS", receipt.Payouts[1].Symbol)
	assert.Equal(t, int64(329), receipt.Payouts[1].Amount)

	voter, err := service.GetVoterService().Get(ctx, h.db, "alice")
	require.NoError(t, err)
	assert.Equal(t, "USDT", voter.Rewards)
}

func TestEngineClaimWithoutStake(t *testing.T) {
	h := newEngineHarness(t)
	h.signup(t, "alice", 6000000)
	h.staking.stake["alice"] = 0
	h.advanceDays(1)

	_, err := h.engine.Claim(context.Background(), "alice")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)
}

func TestEngineClaimUnknownVoter(t *testing.T) {
	h := newEngineHarness(t)

	_, err := h.engine.Claim(context.Background(), "nobody")
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestEngineRefresh(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	info := h.signup(t, "alice", 6000000)

	h.staking.stake["alice"] = 9000000
	refreshed, err := h.engine.Refresh(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(9000000), refreshed.Staked)
	assert.Equal(t, info.NextClaimPeriod, refreshed.NextClaimPeriod)

	_, err = h.engine.Refresh(ctx, "nobody")
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestEngineHandleDelegationChange(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)

	h.staking.stake["alice"] = 7000000
	h.engine.HandleDelegationChange(ctx, &model.DelegationChange{Account: "alice", Delta: 1000000})

	voter, err := service.GetVoterService().Get(ctx, h.db, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7000000), voter.Staked)

	// Accounts that never signed up are ignored.
	h.engine.HandleDelegationChange(ctx, &model.DelegationChange{Account: "stranger", Delta: 5})
}

func TestEngineRefreshRevokesMovedDelegation(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)

	// Delegation moved to an unauthorized proxy: refresh erases the voter.
	h.staking.proxy["alice"] = "randomproxy"
	_, err := h.engine.Refresh(ctx, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotEligible)

	_, err = service.GetVoterService().Get(ctx, h.db, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestEngineUnsignup(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)

	require.NoError(t, h.engine.Unsignup(ctx, "alice"))
	_, err := service.GetVoterService().Get(ctx, h.db, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotFound)

	err = h.engine.Unsignup(ctx, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestEngineClaimAll(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)
	h.signup(t, "bob", 3000000)
	h.signup(t, "carol", 0)

	h.advanceDays(1)
	claimed, err := h.engine.ClaimAll(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, claimed)

	// A second sweep in the same interval pays nobody.
	claimed, err = h.engine.ClaimAll(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, claimed)
}

func TestEngineClaimAllOverlappingRanges(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)
	h.signup(t, "bob", 3000000)
	h.signup(t, "carol", 1000000)

	claimed, err := h.engine.ClaimAll(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.Equal(t, 2, claimed)

	// The wider sweep overlaps the first range but pays only carol; alice
	// and bob already advanced past this cadence window.
	claimed, err = h.engine.ClaimAll(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, claimed)
}

func TestEngineMigrate(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()

	legacy := &do.VoterInfo{Owner: "legacyvoter", Staked: 1000000, Version: 1}
	require.NoError(t, h.db.Create(legacy).Error)

	migrated, err := h.engine.Migrate(ctx, "legacyvoter")
	require.NoError(t, err)
	assert.True(t, migrated)

	voter, err := service.GetVoterService().Get(ctx, h.db, "legacyvoter")
	require.NoError(t, err)
	assert.Equal(t, 2, voter.Version)
	assert.Equal(t, h.clock.Now().Unix(), voter.NextClaimPeriod)
	assert.Equal(t, "EOS", voter.Rewards)

	// Migration is idempotent.
	migrated, err = h.engine.Migrate(ctx, "legacyvoter")
	require.NoError(t, err)
	assert.False(t, migrated)

	_, err = h.engine.Migrate(ctx, "nobody")
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestEngineMigrateAll(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()

	for _, owner := range []string{"legacyone", "legacytwo", "legacythree"} {
		require.NoError(t, h.db.Create(&do.VoterInfo{Owner: owner, Version: 1}).Error)
	}
	h.signup(t, "alice", 6000000)

	migrated, err := h.engine.MigrateAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, migrated)

	migrated, err = h.engine.MigrateAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
}

func TestEngineMigrateAllSkipCursor(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()

	for _, owner := range []string{"legacyone", "legacytwo", "legacythree"} {
		require.NoError(t, h.db.Create(&do.VoterInfo{Owner: owner, Version: 1}).Error)
	}

	// Skipping the first two unmigrated rows resumes the sweep at the third.
	migrated, err := h.engine.MigrateAll(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	migrated, err = h.engine.MigrateAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)
}

func TestEngineClaimTransferFailureRollsBack(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.signup(t, "alice", 6000000)
	h.drain(t, "alice")
	h.advanceDays(1)

	before, err := service.GetVoterService().Get(ctx, h.db, "alice")
	require.NoError(t, err)

	h.ledger.failAll = true
	_, err = h.engine.Claim(ctx, "alice")
	require.Error(t, err)

	// The schedule advance and the receipt unwound with the failed transfer.
	after, err := service.GetVoterService().Get(ctx, h.db, "alice")
	require.NoError(t, err)
	assert.Equal(t, before.NextClaimPeriod, after.NextClaimPeriod)

	n, err := service.GetReceiptService().GetReceiptNum(ctx, h.db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Once the ledger recovers the same interval pays out in full.
	h.ledger.failAll = false
	receipt, err := h.engine.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(657), receipt.Entitled)
}
