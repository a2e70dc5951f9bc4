// Package timeframe provides an immutable time interval type and the
// partitioning algorithms used for walk-forward and Monte Carlo testing.
package timeframe

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrInvalidRange is returned when end precedes start or a bound falls
	// outside [MinTime, MaxTime].
	ErrInvalidRange = errors.New("timeframe: invalid range")

	// ErrPeriodTooLarge is returned by Sample when the requested period does
	// not fit inside the timeframe.
	ErrPeriodTooLarge = errors.New("timeframe: period exceeds duration")
)

// MinTime and MaxTime are the sentinel bounds for any Timeframe. They are far
// enough out to be "forever" for market data while staying well inside the
// range time.Time arithmetic is exact for.
var (
	MinTime = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Timeframe is a half-open [Start, End) interval, or closed [Start, End] when
// Inclusive is set. The zero value is not valid; use New or Infinite.
// Timeframe is a value type: every transform returns a new value.
type Timeframe struct {
	Start     time.Time
	End       time.Time
	Inclusive bool
}

// New validates and returns a half-open timeframe [start, end).
func New(start, end time.Time) (Timeframe, error) {
	return newTimeframe(start, end, false)
}

// NewInclusive validates and returns a closed timeframe [start, end].
func NewInclusive(start, end time.Time) (Timeframe, error) {
	return newTimeframe(start, end, true)
}

func newTimeframe(start, end time.Time, inclusive bool) (Timeframe, error) {
	if end.Before(start) {
		return Timeframe{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidRange, end, start)
	}
	if start.Before(MinTime) || end.After(MaxTime) {
		return Timeframe{}, fmt.Errorf("%w: outside [%s, %s]", ErrInvalidRange, MinTime, MaxTime)
	}
	return Timeframe{Start: start.UTC(), End: end.UTC(), Inclusive: inclusive}, nil
}

// Infinite returns the maximal timeframe.
func Infinite() Timeframe {
	return Timeframe{Start: MinTime, End: MaxTime, Inclusive: true}
}

// Contains reports whether t falls inside the timeframe.
func (tf Timeframe) Contains(t time.Time) bool {
	if t.Before(tf.Start) {
		return false
	}
	if t.Before(tf.End) {
		return true
	}
	return tf.Inclusive && t.Equal(tf.End)
}

// Duration returns End - Start.
func (tf Timeframe) Duration() time.Duration {
	return tf.End.Sub(tf.Start)
}

// Shift moves both bounds by d.
func (tf Timeframe) Shift(d time.Duration) Timeframe {
	return Timeframe{Start: tf.Start.Add(d), End: tf.End.Add(d), Inclusive: tf.Inclusive}
}

// Extend widens the timeframe by before on the left and after on the right.
func (tf Timeframe) Extend(before, after time.Duration) Timeframe {
	return Timeframe{Start: tf.Start.Add(-before), End: tf.End.Add(after), Inclusive: tf.Inclusive}
}

// Split partitions the timeframe into consecutive sub-frames of length
// period. When overlap > 0 each frame is widened to period+overlap while the
// step stays period, so consecutive frames share the overlap. The last frame
// is truncated at the true end. With overlap == 0 the frames cover
// [Start, End) contiguously and their count equals ceil(Duration/period).
func (tf Timeframe) Split(period, overlap time.Duration) []Timeframe {
	if period <= 0 {
		return nil
	}
	var out []Timeframe
	for start := tf.Start; start.Before(tf.End); start = start.Add(period) {
		end := start.Add(period + overlap)
		if end.After(tf.End) {
			end = tf.End
		}
		out = append(out, Timeframe{Start: start, End: end, Inclusive: tf.Inclusive && end.Equal(tf.End)})
	}
	return out
}

// Sample draws n sub-frames of fixed length period with uniformly random
// start offsets inside the timeframe. The rng is injected so Monte Carlo
// runs are reproducible.
func (tf Timeframe) Sample(period time.Duration, n int, rng *rand.Rand) ([]Timeframe, error) {
	max := tf.Duration() - period
	if period <= 0 || max <= 0 {
		return nil, fmt.Errorf("%w: period %s, duration %s", ErrPeriodTooLarge, period, tf.Duration())
	}
	out := make([]Timeframe, 0, n)
	for i := 0; i < n; i++ {
		offset := time.Duration(rng.Int63n(int64(max)))
		start := tf.Start.Add(offset)
		out = append(out, Timeframe{Start: start, End: start.Add(period)})
	}
	return out, nil
}

// SplitTrainTest partitions the timeframe into an adjacent (train, test) pair
// whose durations are in ratio (1-testFraction):testFraction. The partition
// is proportional to wall-clock duration, not event count.
func (tf Timeframe) SplitTrainTest(testFraction float64) (train, test Timeframe) {
	boundary := tf.Start.Add(time.Duration(float64(tf.Duration()) * (1.0 - testFraction)))
	train = Timeframe{Start: tf.Start, End: boundary}
	test = Timeframe{Start: boundary, End: tf.End, Inclusive: tf.Inclusive}
	return train, test
}

// Annualize extrapolates a holding-period return over this timeframe to a
// 365-day basis.
func (tf Timeframe) Annualize(pct float64) float64 {
	years := float64(365*24*time.Hour) / float64(tf.Duration())
	return math.Pow(1.0+pct, years) - 1.0
}

func (tf Timeframe) String() string {
	closing := ")"
	if tf.Inclusive {
		closing = "]"
	}
	return fmt.Sprintf("[%s - %s%s", tf.Start.Format(time.RFC3339), tf.End.Format(time.RFC3339), closing)
}
