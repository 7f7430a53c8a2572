package model

import "time"

// Payout is a single outbound transfer produced by a claim.
type Payout struct {
	To       string
	Symbol   string
	Contract string
	// Amount is expressed in asset units scaled by constdef.PriceScale.
	Amount int64
	Memo   string
}

// ClaimReceipt summarizes a completed claim for off-service bookkeeping.
type ClaimReceipt struct {
	Owner       string
	Staked      int64
	Rate        int64
	Interval    int64
	Entitled    int64
	ReferralCut int64
	Referral    string
	Payouts     []Payout
	Timestamp   time.Time
}
