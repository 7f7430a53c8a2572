package model

// PortfolioEntry is one (symbol, percent) pair of an account's reward
// allocation. Percent is in 1/100 of 1%.
type PortfolioEntry struct {
	Symbol  string
	Percent int64
}
