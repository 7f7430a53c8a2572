package service

import (
	"context"
	"testing"

	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsServiceDefaults(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetSettingsService()

	settings, err := s.Get(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(400), settings.Rate)
	assert.Equal(t, int64(86400), settings.Interval)
	assert.Equal(t, int64(16), settings.RentRate)
	assert.Equal(t, int64(30), settings.MaxCatchupIntervals)
	assert.False(t, settings.Paused)
}

func TestSettingsServiceUpdates(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetSettingsService()

	require.NoError(t, s.SetRate(ctx, db, 500))
	require.NoError(t, s.SetInterval(ctx, db, 3600))
	require.NoError(t, s.SetRentRate(ctx, db, 20))
	require.NoError(t, s.SetPaused(ctx, db, true))

	settings, err := s.Get(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(500), settings.Rate)
	assert.Equal(t, int64(3600), settings.Interval)
	assert.Equal(t, int64(20), settings.RentRate)
	assert.True(t, settings.Paused)

	assert.ErrorIs(t, s.SetRate(ctx, db, -1), errcode.ErrInvalidArgument)
	assert.ErrorIs(t, s.SetInterval(ctx, db, 0), errcode.ErrInvalidArgument)
	assert.ErrorIs(t, s.SetRentRate(ctx, db, -5), errcode.ErrInvalidArgument)
}

func TestAdminServiceClean(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = GetVoterService().Signup(ctx, db, "alice", "", 1, 1)
	require.NoError(t, err)
	_, err = GetVoterService().Signup(ctx, db, "bob", "", 1, 1)
	require.NoError(t, err)

	rows, err := GetAdminService().Clean(ctx, db, CleanVoters)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	total, err := GetVoterService().GetVoterNum(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, err = GetAdminService().Clean(ctx, db, "bogus")
	assert.ErrorIs(t, err, errcode.ErrInvalidArgument)
}
