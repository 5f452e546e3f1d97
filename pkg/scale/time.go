package scale

import (
	"math"
	"time"
)

// TickLayout is the label layout for time ticks ("Jan 16").
const TickLayout = "Jan 06"

// Time is a linear scale over instants.
type Time struct {
	lin    *Linear
	d0, d1 time.Time
}

// NewTime builds a time scale over [d0, d1].
func NewTime(d0, d1 time.Time, r Range) *Time {
	return &Time{
		lin: NewLinear(instant(d0), instant(d1), r),
		d0:  d0,
		d1:  d1,
	}
}

func instant(t time.Time) float64 {
	if t.IsZero() {
		return math.NaN()
	}
	return float64(t.UnixMilli())
}

// Domain returns the domain bounds.
func (s *Time) Domain() (time.Time, time.Time) { return s.d0, s.d1 }

// Range returns the current range.
func (s *Time) Range() Range { return s.lin.Range() }

// SetRange replaces the range. The domain is unchanged.
func (s *Time) SetRange(r Range) { s.lin.SetRange(r) }

// Map converts an instant to a range value. The zero time maps to NaN.
func (s *Time) Map(t time.Time) float64 {
	return s.lin.Map(instant(t))
}

var monthIntervals = []int{1, 2, 3, 6, 12}

// Ticks returns month-aligned instants inside the domain, choosing the
// smallest interval of 1, 2, 3, 6 or 12 months that yields at most n ticks.
func (s *Time) Ticks(n int) []time.Time {
	if n <= 0 || s.d0.IsZero() || s.d1.IsZero() {
		return nil
	}
	lo, hi := s.d0, s.d1
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	first := time.Date(lo.Year(), lo.Month(), 1, 0, 0, 0, 0, lo.Location())
	if first.Before(lo) {
		first = first.AddDate(0, 1, 0)
	}

	var ticks []time.Time
	for _, every := range monthIntervals {
		ticks = ticks[:0]
		for t := first; !t.After(hi); t = t.AddDate(0, 1, 0) {
			if (int(t.Month())-1)%every == 0 {
				ticks = append(ticks, t)
			}
		}
		if len(ticks) <= n {
			break
		}
	}
	return ticks
}

// TimeExtent returns the earliest and latest non-zero instants.
func TimeExtent(ts []time.Time) (lo, hi time.Time, ok bool) {
	for _, t := range ts {
		if t.IsZero() {
			continue
		}
		if !ok || t.Before(lo) {
			lo = t
		}
		if !ok || t.After(hi) {
			hi = t
		}
		ok = true
	}
	return lo, hi, ok
}
