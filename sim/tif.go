package sim

import "time"

// TimeInForce decides when a still-open order expires. The engine applies it
// at the start of every step, before matching.
type TimeInForce interface {
	Expired(placedAt, now time.Time) bool
	String() string
}

// GTC keeps orders open until filled or cancelled, with a safety cap of
// MaxDays (90 when zero) against orders lingering forever.
type GTC struct {
	MaxDays int
}

func (g GTC) Expired(placedAt, now time.Time) bool {
	days := g.MaxDays
	if days <= 0 {
		days = 90
	}
	return now.Sub(placedAt) > time.Duration(days)*24*time.Hour
}

func (g GTC) String() string { return "GTC" }

// Day expires orders at the end of the UTC calendar day they were placed on.
type Day struct{}

func (Day) Expired(placedAt, now time.Time) bool {
	py, pm, pd := placedAt.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return py != ny || pm != nm || pd != nd
}

func (Day) String() string { return "DAY" }
