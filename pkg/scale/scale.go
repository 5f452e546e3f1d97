// Package scale provides the domain→range mappings used to position and
// colour chart elements.
//
// Every scale separates its domain, fixed when the scale is built from a
// dataset, from its range, which may be changed with SetRange when the
// viewport is resized. Re-ranging never reorders or rebuilds the domain, so
// a category keeps its band and its colour across resizes.
package scale

import "math"

// Range is a pixel interval. Start may be greater than End (inverted axes).
type Range struct {
	Start, End float64
}

// Span returns End - Start.
func (r Range) Span() float64 { return r.End - r.Start }

// Extent returns the minimum and maximum of values, skipping NaN.
// ok is false when no finite value exists.
func Extent(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return lo, hi, true
}
