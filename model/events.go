package model

// IncomingTransfer is the payload of a ledger notification about an asset
// transfer credited to the service account (payout reserve top-up).
type IncomingTransfer struct {
	From     string
	To       string
	Symbol   string
	Contract string
	Amount   int64
	Memo     string
}

// DelegationChange is the payload of a staking notification about a
// delegate/undelegate event affecting a voter's staked weight.
type DelegationChange struct {
	Account string
	// Delta is positive on delegate, negative on undelegate, in base asset
	// units.
	Delta int64
}
