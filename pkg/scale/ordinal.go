package scale

// Palettes from ColorBrewer Set3.
var (
	// Set3Seven colours continents.
	Set3Seven = []string{"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462", "#b3de69"}

	// Set3Ten colours housing regions.
	Set3Ten = []string{"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd"}
)

// Ordinal assigns palette entries to categories in first-seen order,
// cycling through the palette when there are more categories than colours.
type Ordinal struct {
	domain  []string
	index   map[string]int
	palette []string
}

// NewOrdinal builds an ordinal scale. The domain is the distinct values of
// seen, in order of first appearance.
func NewOrdinal(seen []string, palette []string) *Ordinal {
	o := &Ordinal{index: make(map[string]int), palette: append([]string(nil), palette...)}
	for _, v := range seen {
		if _, dup := o.index[v]; dup {
			continue
		}
		o.index[v] = len(o.domain)
		o.domain = append(o.domain, v)
	}
	return o
}

// Domain returns a copy of the domain.
func (o *Ordinal) Domain() []string {
	return append([]string(nil), o.domain...)
}

// Map returns the colour for v. ok is false for values outside the domain
// or when the palette is empty.
func (o *Ordinal) Map(v string) (string, bool) {
	i, ok := o.index[v]
	if !ok || len(o.palette) == 0 {
		return "", false
	}
	return o.palette[i%len(o.palette)], true
}
