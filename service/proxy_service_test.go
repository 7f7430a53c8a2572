package service

import (
	"context"
	"testing"

	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyServiceSingleActive(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetProxyService()

	require.NoError(t, s.Set(ctx, db, "proxyalpha", true))
	require.NoError(t, s.Set(ctx, db, "proxybeta", false))

	active, err := s.ActiveProxy(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "proxyalpha", active)

	// Activating another proxy deactivates the previous one.
	require.NoError(t, s.Set(ctx, db, "proxybeta", true))
	active, err = s.ActiveProxy(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "proxybeta", active)

	proxies, err := s.GetAll(ctx, db)
	require.NoError(t, err)
	require.Len(t, proxies, 2)
	activeCount := 0
	for _, p := range proxies {
		if p.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestProxyServiceFallback(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetProxyService()

	// With an empty registry the well-known network identity serves.
	active, err := s.ActiveProxy(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "proxy4nation", active)

	ok, err := s.IsAuthorized(ctx, db, "proxy4nation")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProxyServiceIsAuthorized(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetProxyService()

	require.NoError(t, s.Set(ctx, db, "proxyalpha", true))
	require.NoError(t, s.Set(ctx, db, "proxybeta", false))

	ok, err := s.IsAuthorized(ctx, db, "proxyalpha")
	require.NoError(t, err)
	assert.True(t, ok)

	// Registered but inactive.
	ok, err = s.IsAuthorized(ctx, db, "proxybeta")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.IsAuthorized(ctx, db, "stranger")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.Set(ctx, db, "Invalid!", true), errcode.ErrInvalidArgument)
}
