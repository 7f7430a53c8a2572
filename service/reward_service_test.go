package service

import (
	"context"
	"testing"

	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func rewardTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	return db
}

func TestRewardServiceRegisterAsset(t *testing.T) {
	db := rewardTestDB(t)
	ctx := context.Background()
	s := GetRewardService()

	require.NoError(t, s.RegisterAsset(ctx, db, "USDT", "tethertether", 20000))

	asset, err := s.GetAsset(ctx, db, "USDT")
	require.NoError(t, err)
	assert.Equal(t, "tethertether", asset.Contract)
	assert.Equal(t, int64(20000), asset.Price)

	t.Run("reregistering refreshes the price", func(t *testing.T) {
		require.NoError(t, s.RegisterAsset(ctx, db, "USDT", "tethertether", 25000))
		asset, err := s.GetAsset(ctx, db, "USDT")
		require.NoError(t, err)
		assert.Equal(t, int64(25000), asset.Price)
	})

	t.Run("contract is immutable", func(t *testing.T) {
		err := s.RegisterAsset(ctx, db, "USDT", "fake.token", 25000)
		assert.ErrorIs(t, err, errcode.ErrAlreadyExists)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		assert.ErrorIs(t, s.RegisterAsset(ctx, db, "usdt", "tethertether", 20000), errcode.ErrInvalidArgument)
		assert.ErrorIs(t, s.RegisterAsset(ctx, db, "TOOLONGSYM", "tethertether", 20000), errcode.ErrInvalidArgument)
		assert.ErrorIs(t, s.RegisterAsset(ctx, db, "USDT", "Bad_Contract", 20000), errcode.ErrInvalidArgument)
		assert.ErrorIs(t, s.RegisterAsset(ctx, db, "PBTC", "btc.ptokens", 0), errcode.ErrInvalidArgument)
	})
}

func TestRewardServiceUpdatePrice(t *testing.T) {
	db := rewardTestDB(t)
	ctx := context.Background()
	s := GetRewardService()

	require.NoError(t, s.RegisterAsset(ctx, db, "USDT", "tethertether", 20000))
	require.NoError(t, s.UpdatePrice(ctx, db, "USDT", 21000))

	asset, err := s.GetAsset(ctx, db, "USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(21000), asset.Price)

	assert.ErrorIs(t, s.UpdatePrice(ctx, db, "GONE", 21000), errcode.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePrice(ctx, db, "USDT", -1), errcode.ErrInvalidArgument)
}

func TestRewardServiceRemoveAsset(t *testing.T) {
	db := rewardTestDB(t)
	ctx := context.Background()
	s := GetRewardService()

	require.NoError(t, s.RegisterAsset(ctx, db, "USDT", "tethertether", 20000))

	t.Run("base asset cannot be removed", func(t *testing.T) {
		assert.ErrorIs(t, s.RemoveAsset(ctx, db, "EOS"), errcode.ErrInvalidArgument)
	})

	t.Run("referenced asset cannot be removed", func(t *testing.T) {
		require.NoError(t, s.SetPortfolio(ctx, db, "alice",
			[]model.PortfolioEntry{{Symbol: "USDT", Percent: 5000}}))
		assert.ErrorIs(t, s.RemoveAsset(ctx, db, "USDT"), errcode.ErrReferentialIntegrity)

		// Clearing the referencing portfolio unblocks the removal.
		require.NoError(t, s.ClearPortfolio(ctx, db, "alice"))
		assert.NoError(t, s.RemoveAsset(ctx, db, "USDT"))
	})

	t.Run("unknown asset", func(t *testing.T) {
		assert.ErrorIs(t, s.RemoveAsset(ctx, db, "GONE"), errcode.ErrNotFound)
	})
}

func TestRewardServiceSetPortfolio(t *testing.T) {
	db := rewardTestDB(t)
	ctx := context.Background()
	s := GetRewardService()

	require.NoError(t, s.RegisterAsset(ctx, db, "USDT", "tethertether", 20000))
	require.NoError(t, s.RegisterAsset(ctx, db, "PBTC", "btc.ptokens", 30000))

	t.Run("percentages may sum to exactly 100 percent", func(t *testing.T) {
		err := s.SetPortfolio(ctx, db, "alice", []model.PortfolioEntry{
			{Symbol: "USDT", Percent: 6000},
			{Symbol: "PBTC", Percent: 4000},
		})
		require.NoError(t, err)

		entries, err := s.GetPortfolio(ctx, db, "alice")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "USDT", entries[0].Symbol)
		assert.Equal(t, int64(6000), entries[0].Percent)
	})

	t.Run("percentages above 100 percent are rejected", func(t *testing.T) {
		err := s.SetPortfolio(ctx, db, "alice", []model.PortfolioEntry{
			{Symbol: "USDT", Percent: 6001},
			{Symbol: "PBTC", Percent: 4000},
		})
		assert.ErrorIs(t, err, errcode.ErrInvalidArgument)
	})

	t.Run("unregistered symbol is rejected", func(t *testing.T) {
		err := s.SetPortfolio(ctx, db, "alice", []model.PortfolioEntry{
			{Symbol: "GONE", Percent: 5000},
		})
		assert.ErrorIs(t, err, errcode.ErrNotFound)
	})

	t.Run("duplicate symbol is rejected", func(t *testing.T) {
		err := s.SetPortfolio(ctx, db, "alice", []model.PortfolioEntry{
			{Symbol: "USDT", Percent: 3000},
			{Symbol: "USDT", Percent: 3000},
		})
		assert.ErrorIs(t, err, errcode.ErrInvalidArgument)
	})

	t.Run("setting again replaces, not merges", func(t *testing.T) {
		require.NoError(t, s.SetPortfolio(ctx, db, "alice",
			[]model.PortfolioEntry{{Symbol: "PBTC", Percent: 2500}}))
		entries, err := s.GetPortfolio(ctx, db, "alice")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "PBTC", entries[0].Symbol)
	})

	t.Run("rejected set leaves the old portfolio intact", func(t *testing.T) {
		err := s.SetPortfolio(ctx, db, "alice", []model.PortfolioEntry{
			{Symbol: "GONE", Percent: 1000},
		})
		require.Error(t, err)
		entries, err := s.GetPortfolio(ctx, db, "alice")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "PBTC", entries[0].Symbol)
	})
}
