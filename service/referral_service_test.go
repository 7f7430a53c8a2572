package service

import (
	"context"
	"testing"

	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralServiceSet(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetReferralService()

	require.NoError(t, s.Set(ctx, db, "refpartner", "https://example.com", "community proxy", 300))

	info, err := s.Get(ctx, db, "refpartner")
	require.NoError(t, err)
	assert.Equal(t, int64(300), info.Rate)

	t.Run("set again overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, db, "refpartner", "", "", 100))
		info, err := s.Get(ctx, db, "refpartner")
		require.NoError(t, err)
		assert.Equal(t, int64(100), info.Rate)
	})

	t.Run("rate above the cap is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.Set(ctx, db, "refpartner", "", "", 501), errcode.ErrInvalidArgument)
	})

	t.Run("rate at the cap is allowed", func(t *testing.T) {
		assert.NoError(t, s.Set(ctx, db, "refpartner", "", "", 500))
	})

	t.Run("invalid account name", func(t *testing.T) {
		assert.ErrorIs(t, s.Set(ctx, db, "NotAnAccount", "", "", 100), errcode.ErrInvalidArgument)
	})
}

func TestReferralServiceRemoveAndLookup(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetReferralService()

	require.NoError(t, s.Set(ctx, db, "refpartner", "", "", 250))

	rate, registered, err := s.Lookup(ctx, db, "refpartner")
	require.NoError(t, err)
	assert.True(t, registered)
	assert.Equal(t, int64(250), rate)

	require.NoError(t, s.Remove(ctx, db, "refpartner"))
	assert.ErrorIs(t, s.Remove(ctx, db, "refpartner"), errcode.ErrNotFound)

	// Lookup of a missing referral is not an error.
	rate, registered, err = s.Lookup(ctx, db, "refpartner")
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Equal(t, int64(0), rate)

	_, registered, err = s.Lookup(ctx, db, "")
	require.NoError(t, err)
	assert.False(t, registered)
}
