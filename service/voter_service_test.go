package service

import (
	"context"
	"testing"

	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func voterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	return db
}

func TestVoterServiceSignup(t *testing.T) {
	db := voterTestDB(t)
	ctx := context.Background()
	s := GetVoterService()

	info, err := s.Signup(ctx, db, "alice", "", 6000000, 1600086400)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Owner)
	assert.Equal(t, int64(6000000), info.Staked)
	assert.Equal(t, int64(1600086400), info.NextClaimPeriod)
	assert.Equal(t, "EOS", info.Rewards)
	assert.Equal(t, 2, info.Version)

	t.Run("duplicate owner", func(t *testing.T) {
		_, err := s.Signup(ctx, db, "alice", "", 1, 1)
		assert.ErrorIs(t, err, errcode.ErrAlreadyExists)
	})

	t.Run("invalid account names", func(t *testing.T) {
		for _, owner := range []string{"", "Alice", "0badname", "waytoolongaccount", ".dotfirst", "dotlast."} {
			_, err := s.Signup(ctx, db, owner, "", 1, 1)
			assert.ErrorIs(t, err, errcode.ErrInvalidArgument, "owner %q", owner)
		}
	})

	t.Run("unknown referral", func(t *testing.T) {
		_, err := s.Signup(ctx, db, "bob", "nosuchrefer", 1, 1)
		assert.ErrorIs(t, err, errcode.ErrNotFound)
	})

	t.Run("registered referral", func(t *testing.T) {
		require.NoError(t, GetReferralService().Set(ctx, db, "refpartner", "", "", 100))
		info, err := s.Signup(ctx, db, "bob", "refpartner", 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "refpartner", info.Referral)
	})
}

func TestVoterServiceUnsignupCascadesPortfolio(t *testing.T) {
	db := voterTestDB(t)
	ctx := context.Background()
	s := GetVoterService()
	rewards := GetRewardService()

	_, err := s.Signup(ctx, db, "alice", "", 6000000, 1600086400)
	require.NoError(t, err)
	require.NoError(t, rewards.RegisterAsset(ctx, db, "USDT", "tethertether", 20000))
	require.NoError(t, rewards.SetPortfolio(ctx, db, "alice",
		[]model.PortfolioEntry{{Symbol: "USDT", Percent: 5000}}))

	require.NoError(t, s.Unsignup(ctx, db, "alice"))

	_, err = s.Get(ctx, db, "alice")
	assert.ErrorIs(t, err, errcode.ErrNotFound)
	entries, err := rewards.GetPortfolio(ctx, db, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, s.Unsignup(ctx, db, "alice"), errcode.ErrNotFound)
}

func TestVoterServiceUpdateStaked(t *testing.T) {
	db := voterTestDB(t)
	ctx := context.Background()
	s := GetVoterService()

	_, err := s.Signup(ctx, db, "alice", "", 6000000, 1600086400)
	require.NoError(t, err)

	require.NoError(t, s.UpdateStaked(ctx, db, "alice", 7500000))
	info, err := s.Get(ctx, db, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7500000), info.Staked)

	assert.ErrorIs(t, s.UpdateStaked(ctx, db, "nobody", 1), errcode.ErrNotFound)
}

func TestVoterServiceGetPage(t *testing.T) {
	db := voterTestDB(t)
	ctx := context.Background()
	s := GetVoterService()

	for _, owner := range []string{"alice", "bob", "carol", "dave", "erin"} {
		_, err := s.Signup(ctx, db, owner, "", 1, 1)
		require.NoError(t, err)
	}

	total, err := s.GetVoterNum(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	page, err := s.GetPage(ctx, db, 0, 2, true)
	require.NoError(t, err)
	require.Len(t, page, 2)
	next, err := s.GetPage(ctx, db, 1, 2, true)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.NotEqual(t, page[0].Owner, next[0].Owner)

	last, err := s.GetPage(ctx, db, 2, 2, true)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestVoterServiceMigrate(t *testing.T) {
	db := voterTestDB(t)
	ctx := context.Background()
	s := GetVoterService()

	legacy := &do.VoterInfo{Owner: "legacyvoter", Staked: 500, Referral: "refpartner", Version: 1}
	require.NoError(t, db.Create(legacy).Error)

	migrated, err := s.Migrate(ctx, db, "legacyvoter", 1600000000)
	require.NoError(t, err)
	assert.True(t, migrated)

	info, err := s.Get(ctx, db, "legacyvoter")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Version)
	assert.Equal(t, int64(1600000000), info.NextClaimPeriod)
	assert.Equal(t, "EOS", info.Rewards)
	// Staked and referral survive untouched.
	assert.Equal(t, int64(500), info.Staked)
	assert.Equal(t, "refpartner", info.Referral)

	migrated, err = s.Migrate(ctx, db, "legacyvoter", 1700000000)
	require.NoError(t, err)
	assert.False(t, migrated)

	// The no-op did not move the claim window.
	info, err = s.Get(ctx, db, "legacyvoter")
	require.NoError(t, err)
	assert.Equal(t, int64(1600000000), info.NextClaimPeriod)
}

func TestVoterServiceMigrateAll(t *testing.T) {
	db := voterTestDB(t)
	ctx := context.Background()
	s := GetVoterService()

	for _, owner := range []string{"legacyone", "legacytwo", "legacythree"} {
		require.NoError(t, db.Create(&do.VoterInfo{Owner: owner, Version: 1}).Error)
	}
	_, err := s.Signup(ctx, db, "alice", "", 1, 1)
	require.NoError(t, err)

	migrated, err := s.MigrateAll(ctx, db, 0, 2, 1600000000)
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)

	migrated, err = s.MigrateAll(ctx, db, 0, 2, 1600000000)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	migrated, err = s.MigrateAll(ctx, db, 0, 2, 1600000000)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
}
