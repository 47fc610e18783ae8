package domain

import "github.com/shopspring/decimal"

// BalanceSnapshot holdings of the buy account at a point in time.
// Replaced wholesale on every refresh.
type BalanceSnapshot struct {
	BRL decimal.Decimal
	BTC decimal.Decimal
}

// Amount returns the balance of the current sizing currency.
func (b BalanceSnapshot) Amount(isBRL bool) decimal.Decimal {
	if isBRL {
		return b.BRL
	}
	return b.BTC
}
