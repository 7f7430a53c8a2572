package proxyserver

import (
	"net/http"
	"testing"

	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/proxyjson"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestServer() *ProxyServer {
	return NewProxyServer(&Config{
		RPCUser:      "admin",
		RPCPass:      "adminpass",
		RPCLimitUser: "alicevoter",
		RPCLimitPass: "voterpass",
	}, nil, nil, nil)
}

func authRequest(t *testing.T, user, pass string) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, err)
	r.SetBasicAuth(user, pass)
	return r
}

func TestCheckAuth(t *testing.T) {
	svr := newAuthTestServer()

	t.Run("admin credential", func(t *testing.T) {
		ok, isAdmin, user, err := svr.checkAuth(authRequest(t, "admin", "adminpass"), true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, isAdmin)
		assert.Equal(t, "admin", user)
	})

	t.Run("limit credential carries the account name", func(t *testing.T) {
		ok, isAdmin, user, err := svr.checkAuth(authRequest(t, "alicevoter", "voterpass"), true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, isAdmin)
		assert.Equal(t, "alicevoter", user)
	})

	t.Run("bad credential", func(t *testing.T) {
		ok, _, _, err := svr.checkAuth(authRequest(t, "alicevoter", "wrong"), true)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("missing header", func(t *testing.T) {
		r, err := http.NewRequest(http.MethodPost, "/", nil)
		require.NoError(t, err)
		_, _, _, err = svr.checkAuth(r, true)
		assert.Error(t, err)
	})
}

func TestCheckCmdScope(t *testing.T) {
	t.Run("limited user on own record", func(t *testing.T) {
		assert.NoError(t, checkCmdScope(false, "alicevoter",
			&proxyjson.ClaimCmd{Owner: "alicevoter"}))
		assert.NoError(t, checkCmdScope(false, "alicevoter",
			&proxyjson.SetPortfolioCmd{Account: "alicevoter"}))
	})

	t.Run("limited user on another account", func(t *testing.T) {
		for _, cmd := range []interface{}{
			&proxyjson.SignupCmd{Owner: "bobvoter"},
			&proxyjson.UnsignupCmd{Owner: "bobvoter"},
			&proxyjson.ClaimCmd{Owner: "bobvoter"},
			&proxyjson.SetPortfolioCmd{Account: "bobvoter"},
			&proxyjson.DelPortfolioCmd{Account: "bobvoter"},
			&proxyjson.SetReferralCmd{Name: "bobpartner"},
			&proxyjson.DelReferralCmd{Name: "bobpartner"},
		} {
			err := checkCmdScope(false, "alicevoter", cmd)
			assert.ErrorIs(t, err, errcode.ErrUnauthorized, "%T", cmd)
		}
	})

	t.Run("admin acts on any account", func(t *testing.T) {
		assert.NoError(t, checkCmdScope(true, "admin",
			&proxyjson.UnsignupCmd{Owner: "bobvoter"}))
		assert.NoError(t, checkCmdScope(true, "admin",
			&proxyjson.DelReferralCmd{Name: "bobpartner"}))
	})

	t.Run("queries are not owner scoped", func(t *testing.T) {
		assert.NoError(t, checkCmdScope(false, "alicevoter",
			&proxyjson.GetVoterCmd{Owner: "bobvoter"}))
	})
}

func TestRPCLimitedExcludesAdminCommands(t *testing.T) {
	for _, method := range []string{
		proxyjson.MethodRefresh,
		proxyjson.MethodClaimAll,
		proxyjson.MethodMigrate,
		proxyjson.MethodMigrateAll,
		proxyjson.MethodSetRate,
		proxyjson.MethodSetProxy,
		proxyjson.MethodPause,
		proxyjson.MethodClean,
	} {
		_, ok := rpcLimited[method]
		assert.False(t, ok, method)
	}
}
