package scale

import (
	"math"
	"strconv"
	"strings"
)

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	d0, d1 float64
	rng    Range
}

// NewLinear builds a linear scale over [d0, d1].
func NewLinear(d0, d1 float64, r Range) *Linear {
	return &Linear{d0: d0, d1: d1, rng: r}
}

// Domain returns the domain bounds.
func (l *Linear) Domain() (float64, float64) { return l.d0, l.d1 }

// Range returns the current range.
func (l *Linear) Range() Range { return l.rng }

// SetRange replaces the range. The domain is unchanged.
func (l *Linear) SetRange(r Range) { l.rng = r }

// Map converts a domain value to a range value. A degenerate domain maps
// every value to the middle of the range; NaN maps to NaN.
func (l *Linear) Map(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	span := l.d1 - l.d0
	t := 0.5
	if span != 0 {
		t = (v - l.d0) / span
	}
	return l.rng.Start + t*l.rng.Span()
}

// Ticks returns roughly n evenly spaced, human-friendly values inside the
// domain, using steps of 1, 2 or 5 times a power of ten.
func (l *Linear) Ticks(n int) []float64 {
	return niceTicks(l.d0, l.d1, n)
}

// TickStep returns the step used by Ticks(n).
func (l *Linear) TickStep(n int) float64 {
	lo, hi := math.Min(l.d0, l.d1), math.Max(l.d0, l.d1)
	inc, _, _ := tickSpec(lo, hi, n)
	if inc < 0 {
		return -1 / inc
	}
	return inc
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickSpec returns the increment and the first/last tick indices. A negative
// increment encodes a step of 1/-inc, which keeps fractional ticks exact.
func tickSpec(start, stop float64, count int) (inc float64, i1, i2 int) {
	step := (stop - start) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	errf := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case errf >= e10:
		factor = 10
	case errf >= e5:
		factor = 5
	case errf >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = int(math.Round(start * inc))
		i2 = int(math.Round(stop * inc))
		if float64(i1)/inc < start {
			i1++
		}
		if float64(i2)/inc > stop {
			i2--
		}
		return -inc, i1, i2
	}
	inc = math.Pow(10, power) * factor
	i1 = int(math.Round(start / inc))
	i2 = int(math.Round(stop / inc))
	if float64(i1)*inc < start {
		i1++
	}
	if float64(i2)*inc > stop {
		i2--
	}
	return inc, i1, i2
}

func niceTicks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	inc, i1, i2 := tickSpec(start, stop, count)
	if i2 < i1 || math.IsInf(inc, 0) || inc == 0 {
		return nil
	}
	ticks := make([]float64, 0, i2-i1+1)
	for i := i1; i <= i2; i++ {
		if inc < 0 {
			ticks = append(ticks, float64(i)/-inc)
		} else {
			ticks = append(ticks, float64(i)*inc)
		}
	}
	if reverse {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

// FormatTick renders a tick value with thousands separators and as many
// decimals as step requires.
func FormatTick(v, step float64) string {
	decimals := 0
	if step > 0 && step < 1 {
		decimals = int(math.Ceil(-math.Log10(step)))
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 && s != strconv.FormatFloat(0, 'f', decimals, 64) {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
