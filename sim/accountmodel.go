package sim

import (
	"github.com/quantlab/backsim/money"
)

// AccountModel computes the buying power of an account after each step. Like
// the other strategies it is pure: parameters are fixed at construction.
type AccountModel interface {
	BuyingPower(a *InternalAccount) (money.Amount, error)
}

// CashAccount has no leverage: buying power is the cash balance converted to
// the base currency.
type CashAccount struct{}

func (CashAccount) BuyingPower(a *InternalAccount) (money.Amount, error) {
	return a.cash.Convert(a.baseCurrency, a.rates, a.lastUpdate)
}

// MarginAccount computes buying power as equity times leverage minus the
// margin already used, where used margin is the summed absolute exposure of
// all open positions.
type MarginAccount struct {
	Leverage float64
}

func (m MarginAccount) BuyingPower(a *InternalAccount) (money.Amount, error) {
	equity, err := a.equity().Convert(a.baseCurrency, a.rates, a.lastUpdate)
	if err != nil {
		return money.Amount{}, err
	}

	used := money.NewWallet()
	for _, p := range a.positions {
		used.Deposit(p.Exposure())
	}
	usedBase, err := used.Convert(a.baseCurrency, a.rates, a.lastUpdate)
	if err != nil {
		return money.Amount{}, err
	}

	leverage := m.Leverage
	if leverage <= 0 {
		leverage = 1
	}
	// Negative buying power is meaningful: it signals an over-leveraged
	// account to the policy layer.
	bp := equity.Value*leverage - usedBase.Value
	return money.NewAmount(a.baseCurrency, bp), nil
}
