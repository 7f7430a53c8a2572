package proxyserver

import (
	"context"
	"encoding/json"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/proxyjson"
	"github.com/EOS-Nation/eosn-proxy/service"
)

func claimResult(receipt *model.ClaimReceipt) *proxyjson.ClaimResult {
	payouts := make([]proxyjson.PayoutResult, 0, len(receipt.Payouts))
	for _, p := range receipt.Payouts {
		payouts = append(payouts, proxyjson.PayoutResult{
			To:       p.To,
			Symbol:   p.Symbol,
			Contract: p.Contract,
			Amount:   p.Amount,
			Memo:     p.Memo,
		})
	}
	return &proxyjson.ClaimResult{
		Owner:       receipt.Owner,
		Staked:      receipt.Staked,
		Rate:        receipt.Rate,
		Interval:    receipt.Interval,
		Entitled:    receipt.Entitled,
		ReferralCut: receipt.ReferralCut,
		Referral:    receipt.Referral,
		Payouts:     payouts,
		ClaimedAt:   receipt.Timestamp.Unix(),
	}
}

// handleClaim implements the claim command.
func handleClaim(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.ClaimCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid claim command")
	}

	receipt, err := s.engine.Claim(context.Background(), cmd.Owner)
	if err != nil {
		return nil, err
	}
	return claimResult(receipt), nil
}

// handleClaimAll implements the claimall command.
func handleClaimAll(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.ClaimAllCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid claimall command")
	}

	claimed, err := s.engine.ClaimAll(context.Background(), cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}
	return &proxyjson.ClaimAllResult{Claimed: claimed}, nil
}

// handleGetReceipts implements the getreceipts command.
func handleGetReceipts(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.GetReceiptsCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid getreceipts command")
	}

	receiptService := service.GetReceiptService()
	ctx := context.Background()

	total, err := receiptService.GetReceiptNum(ctx, s.db)
	if err != nil {
		return nil, err
	}
	num := cmd.Num
	if num <= 0 || num > 1000 {
		num = 100
	}

	var infos []*do.ClaimReceiptInfo
	if cmd.Owner != "" {
		infos, err = receiptService.GetByOwner(ctx, s.db, cmd.Owner, cmd.Page, num)
	} else {
		infos, err = receiptService.GetPage(ctx, s.db, cmd.Page, num, false)
	}
	if err != nil {
		return nil, err
	}

	receipts := make([]proxyjson.ClaimResult, 0, len(infos))
	for _, info := range infos {
		var payouts []proxyjson.PayoutResult
		if info.Payouts != "" {
			var modelPayouts []model.Payout
			if err := json.Unmarshal([]byte(info.Payouts), &modelPayouts); err == nil {
				for _, p := range modelPayouts {
					payouts = append(payouts, proxyjson.PayoutResult{
						To:       p.To,
						Symbol:   p.Symbol,
						Contract: p.Contract,
						Amount:   p.Amount,
						Memo:     p.Memo,
					})
				}
			}
		}
		receipts = append(receipts, proxyjson.ClaimResult{
			Owner:       info.Owner,
			Staked:      info.Staked,
			Rate:        info.Rate,
			Interval:    info.Interval,
			Entitled:    info.Entitled,
			ReferralCut: info.ReferralCut,
			Referral:    info.Referral,
			Payouts:     payouts,
			ClaimedAt:   info.ClaimedAt.Unix(),
		})
	}
	return &proxyjson.GetReceiptsResult{
		Total:    total,
		Receipts: receipts,
	}, nil
}

// handleGetLastClaim implements the getlastclaim command.
func handleGetLastClaim(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	info, err := service.GetReceiptService().GetLastClaim(context.Background(), s.db)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return &proxyjson.LastClaimResult{}, nil
	}
	return &proxyjson.LastClaimResult{
		Voter:     info.Voter,
		Amount:    info.Amount,
		Rate:      info.Rate,
		Interval:  info.Interval,
		ClaimedAt: info.ClaimedAt.Unix(),
	}, nil
}
