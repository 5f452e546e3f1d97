package scale

// Band divides a continuous range into equal-width bands, one per distinct
// domain value, laid out in domain order without padding.
type Band struct {
	domain []string
	index  map[string]int
	rng    Range
}

// NewBand builds a band scale. Duplicate domain values keep their first
// position.
func NewBand(domain []string, r Range) *Band {
	b := &Band{index: make(map[string]int, len(domain)), rng: r}
	for _, v := range domain {
		if _, dup := b.index[v]; dup {
			continue
		}
		b.index[v] = len(b.domain)
		b.domain = append(b.domain, v)
	}
	return b
}

// Domain returns a copy of the ordered, de-duplicated domain.
func (b *Band) Domain() []string {
	return append([]string(nil), b.domain...)
}

// Range returns the current range.
func (b *Band) Range() Range { return b.rng }

// SetRange replaces the range. The domain is unchanged.
func (b *Band) SetRange(r Range) { b.rng = r }

// Step returns the distance between the starts of adjacent bands.
func (b *Band) Step() float64 {
	if len(b.domain) == 0 {
		return 0
	}
	return b.rng.Span() / float64(len(b.domain))
}

// Bandwidth returns the width of each band.
func (b *Band) Bandwidth() float64 {
	w := b.Step()
	if w < 0 {
		return -w
	}
	return w
}

// Position returns the start offset of v's band.
// ok is false when v is not in the domain.
func (b *Band) Position(v string) (float64, bool) {
	i, ok := b.index[v]
	if !ok {
		return 0, false
	}
	return b.rng.Start + float64(i)*b.Step(), true
}
