package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptServiceRecord(t *testing.T) {
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := GetReceiptService()

	claimedAt := time.Unix(1600086400, 0)
	receipt := &model.ClaimReceipt{
		Owner:       "alice",
		Staked:      6000000,
		Rate:        400,
		Interval:    86400,
		Entitled:    657,
		ReferralCut: 32,
		Referral:    "refpartner",
		Payouts: []model.Payout{
			{To: "alice", Symbol: "EOS", Contract: "eosio.token", Amount: 625},
			{To: "refpartner", Symbol: "EOS", Contract: "eosio.token", Amount: 32},
		},
		Timestamp: claimedAt,
	}
	require.NoError(t, s.Record(ctx, db, receipt))

	infos, err := s.GetByOwner(ctx, db, "alice", 0, 10)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(657), infos[0].Entitled)

	var payouts []model.Payout
	require.NoError(t, json.Unmarshal([]byte(infos[0].Payouts), &payouts))
	require.Len(t, payouts, 2)
	assert.Equal(t, int64(625), payouts[0].Amount)

	last, err := s.GetLastClaim(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "alice", last.Voter)
	assert.Equal(t, int64(657), last.Amount)

	t.Run("last claim is overwritten", func(t *testing.T) {
		second := *receipt
		second.Owner = "bob"
		second.Entitled = 100
		second.Timestamp = claimedAt.Add(time.Hour)
		require.NoError(t, s.Record(ctx, db, &second))

		last, err := s.GetLastClaim(ctx, db)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, "bob", last.Voter)

		total, err := s.GetReceiptNum(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}
