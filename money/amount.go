package money

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Currency is an ISO-4217 style currency code, e.g. "USD".
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
)

// Amount is a monetary value in a single currency.
type Amount struct {
	Currency Currency
	Value    float64
}

// NewAmount returns an Amount in the given currency.
func NewAmount(c Currency, v float64) Amount {
	return Amount{Currency: c, Value: v}
}

// Convert converts the amount using the supplied rates at the given time.
func (a Amount) Convert(to Currency, rates ExchangeRates, at time.Time) (Amount, error) {
	if a.Currency == to || a.Value == 0 {
		return Amount{Currency: to, Value: a.Value}, nil
	}
	rate, err := rates.Rate(a.Currency, to, at)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Currency: to, Value: a.Value * rate}, nil
}

func (a Amount) String() string {
	return fmt.Sprintf("%.2f %s", a.Value, a.Currency)
}

// Wallet holds balances for any number of currencies. Keys are unique; a
// balance that reaches exactly zero is removed. The zero value is not usable,
// use NewWallet.
type Wallet map[Currency]float64

// NewWallet returns a wallet holding the given amounts.
func NewWallet(amounts ...Amount) Wallet {
	w := make(Wallet, len(amounts))
	for _, a := range amounts {
		w.Deposit(a)
	}
	return w
}

// Deposit adds the amount to the wallet. Negative values withdraw.
func (w Wallet) Deposit(a Amount) {
	v := w[a.Currency] + a.Value
	if v == 0 {
		delete(w, a.Currency)
		return
	}
	w[a.Currency] = v
}

// Withdraw removes the amount from the wallet. Balances may go negative;
// overdraft policy belongs to the account model, not the wallet.
func (w Wallet) Withdraw(a Amount) {
	w.Deposit(Amount{Currency: a.Currency, Value: -a.Value})
}

// Add merges another wallet into a new wallet, leaving both inputs untouched.
func (w Wallet) Add(o Wallet) Wallet {
	out := w.Clone()
	for c, v := range o {
		out.Deposit(Amount{Currency: c, Value: v})
	}
	return out
}

// Get returns the balance in the given currency, zero if absent.
func (w Wallet) Get(c Currency) Amount {
	return Amount{Currency: c, Value: w[c]}
}

// Clone returns an independent copy.
func (w Wallet) Clone() Wallet {
	out := make(Wallet, len(w))
	for c, v := range w {
		out[c] = v
	}
	return out
}

// Convert collapses the wallet into a single currency using the supplied
// rates at the given time.
func (w Wallet) Convert(to Currency, rates ExchangeRates, at time.Time) (Amount, error) {
	total := Amount{Currency: to}
	for c, v := range w {
		a, err := Amount{Currency: c, Value: v}.Convert(to, rates, at)
		if err != nil {
			return Amount{}, err
		}
		total.Value += a.Value
	}
	return total, nil
}

func (w Wallet) String() string {
	if len(w) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(w))
	for c, v := range w {
		parts = append(parts, Amount{Currency: c, Value: v}.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, " + ")
}
