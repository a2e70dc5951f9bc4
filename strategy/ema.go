package strategy

// ema is a streaming exponential moving average. Ready after `period`
// samples.
type ema struct {
	period int
	alpha  float64
	value  float64
	count  int
}

func newEMA(period int) *ema {
	return &ema{period: period, alpha: 2.0 / (float64(period) + 1.0)}
}

func (e *ema) Update(price float64) {
	if e.count == 0 {
		e.value = price
	} else {
		e.value += e.alpha * (price - e.value)
	}
	e.count++
}

func (e *ema) Ready() bool    { return e.count >= e.period }
func (e *ema) Value() float64 { return e.value }
