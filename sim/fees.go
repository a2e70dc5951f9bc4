package sim

import (
	"math"

	"github.com/quantlab/backsim/broker"
)

// FeeModel computes the commission charged for an execution, in the asset
// currency. Implementations must be total: any finite price and size input
// yields a defined fee.
type FeeModel interface {
	Calculate(exec broker.Execution) float64
}

// NoFee charges nothing.
type NoFee struct{}

func (NoFee) Calculate(exec broker.Execution) float64 { return 0 }

// PercentageFee charges a percentage of the absolute execution value,
// including the contract multiplier.
type PercentageFee struct {
	Pct float64
}

func (f PercentageFee) Calculate(exec broker.Execution) float64 {
	return math.Abs(exec.Value().Value) * f.Pct
}

// DefaultFee charges |size| * price * pct, ignoring the contract multiplier.
type DefaultFee struct {
	Pct float64
}

func (f DefaultFee) Calculate(exec broker.Execution) float64 {
	return math.Abs(exec.Size().Float64()) * exec.Price * f.Pct
}
