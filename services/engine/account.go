package engine

import (
	"github.com/shopspring/decimal"
)

// Account tracks cash and the held quantity of a single asset. Fees are
// charged per side at a flat commission rate.
type Account struct {
	Cash           decimal.Decimal
	Quantity       decimal.Decimal
	CommissionRate decimal.Decimal
}

func NewAccount(startingCapital, commissionRate decimal.Decimal) *Account {
	return &Account{
		Cash:           startingCapital,
		Quantity:       decimal.Zero,
		CommissionRate: commissionRate,
	}
}

// Fee returns the commission charged on a notional amount.
func (a *Account) Fee(notional decimal.Decimal) decimal.Decimal {
	return notional.Mul(a.CommissionRate)
}

// Buy debits cash for qty at price plus commission. Returns the notional
// and the fee charged, or ok=false when cash cannot cover the order.
func (a *Account) Buy(price, qty decimal.Decimal) (notional, fee decimal.Decimal, ok bool) {
	notional = price.Mul(qty)
	fee = a.Fee(notional)
	total := notional.Add(fee)
	if total.GreaterThan(a.Cash) {
		return decimal.Zero, decimal.Zero, false
	}
	a.Cash = a.Cash.Sub(total)
	a.Quantity = a.Quantity.Add(qty)
	return notional, fee, true
}

// Sell credits cash for qty at price minus commission. Quantity is capped
// at the held amount.
func (a *Account) Sell(price, qty decimal.Decimal) (notional, fee decimal.Decimal) {
	if qty.GreaterThan(a.Quantity) {
		qty = a.Quantity
	}
	notional = price.Mul(qty)
	fee = a.Fee(notional)
	a.Cash = a.Cash.Add(notional.Sub(fee))
	a.Quantity = a.Quantity.Sub(qty)
	return notional, fee
}

// Equity marks the account to market at the given price.
func (a *Account) Equity(price decimal.Decimal) decimal.Decimal {
	return a.Cash.Add(a.Quantity.Mul(price))
}

// Flat reports whether no asset is held.
func (a *Account) Flat() bool {
	return a.Quantity.IsZero()
}
