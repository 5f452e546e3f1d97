// Package lifeexp is the life expectancy bar chart: one bar per country,
// sorted from lowest to highest life expectancy, restyled by continent and
// GDP as the reader scrolls.
package lifeexp

import (
	"context"
	"slices"

	"github.com/matzehuels/scrolly/pkg/category"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/scale"
	"github.com/matzehuels/scrolly/pkg/scene"
)

// Name identifies the chart in URLs, configs and logs.
const Name = "lifeexp"

// Bar fills.
const (
	Neutral   = "lightgrey"
	Highlight = "#4cc1fc"
)

// LowGDP is the GDP per capita below which a country counts as low income.
const LowGDP = 3000

// MaxLifeExpectancy is the top of the y domain.
const MaxLifeExpectancy = 85

// Step ids.
const (
	StepReady     = "ready-chart-one"
	StepAsia      = "asia"
	StepAfrica    = "africa"
	StepNA        = "na"
	StepLowGDP    = "low-gdp"
	StepContinent = "continent"
	StepReset     = "reset"
)

var margin = scene.Margin{Top: 50, Right: 20, Bottom: 50, Left: 50}

var steps = []chart.StepInfo{
	{ID: StepReady, Description: "All countries, no highlight"},
	{ID: StepAsia, Description: "Highlight Asia"},
	{ID: StepAfrica, Description: "Highlight Africa"},
	{ID: StepNA, Description: "Highlight North America"},
	{ID: StepLowGDP, Description: "Highlight countries with GDP per capita under 3,000"},
	{ID: StepContinent, Description: "Colour every bar by continent"},
	{ID: StepReset, Description: "Back to no highlight"},
}

// Steps lists the chart's steps in narrative order.
func Steps() []chart.StepInfo { return slices.Clone(steps) }

// RowsFunc supplies the dataset.
type RowsFunc func(ctx context.Context) ([]dataset.Country, error)

// Definition returns the chart definition backed by rows.
func Definition(rows RowsFunc) chart.Definition {
	return chart.Definition{
		Name:  Name,
		Title: "Life expectancy by country",
		Steps: Steps(),
		Load: func(ctx context.Context) (chart.Drawing, error) {
			data, err := rows(ctx)
			if err != nil {
				return nil, err
			}
			return newDrawing(data), nil
		},
	}
}

// FromSource returns a definition that loads src on mount.
func FromSource(src dataset.Source, opts dataset.Options) chart.Definition {
	def := Definition(func(ctx context.Context) ([]dataset.Country, error) {
		rows, _, err := dataset.LoadCountries(ctx, src, opts)
		return rows, err
	})
	def.Source = src.String()
	return def
}

// Static returns a definition over rows already in memory.
func Static(rows []dataset.Country) chart.Definition {
	def := Definition(func(context.Context) ([]dataset.Country, error) { return rows, nil })
	def.Source = "memory"
	return def
}

type drawing struct {
	rows  []dataset.Country
	x     *scale.Band
	y     *scale.Linear
	color *scale.Ordinal
}

func newDrawing(rows []dataset.Country) *drawing {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b dataset.Country) int {
		switch {
		case a.LifeExpectancy < b.LifeExpectancy:
			return -1
		case a.LifeExpectancy > b.LifeExpectancy:
			return 1
		}
		return 0
	})

	countries := make([]string, len(sorted))
	continents := make([]string, len(sorted))
	for i, r := range sorted {
		countries[i] = r.Country
		continents[i] = r.Continent
	}
	return &drawing{
		rows:  sorted,
		x:     scale.NewBand(countries, scale.Range{}),
		y:     scale.NewLinear(0, MaxLifeExpectancy, scale.Range{}),
		color: scale.NewOrdinal(continents, scale.Set3Seven),
	}
}

func (d *drawing) Margin() scene.Margin { return margin }

var (
	bars     = scene.OfKind(scene.KindRect)
	noteHigh = scene.Class("gdp-note-high")
	noteLow  = scene.Class("gdp-note-low")
	yAxis    = scene.Class("y-axis")
)

func (d *drawing) Paint(s *scene.Scene, inner chart.Size) {
	plot := s.Plot()
	for _, r := range d.rows {
		key := category.Key(r.Continent)
		bar := plot.Append(scene.KindRect)
		bar.Key = key
		bar.Datum = r
		bar.SetClass(key).SetAttr("fill", Neutral)
	}

	note := func(class, text string) {
		t := plot.Append(scene.KindText)
		t.SetClass(class).
			SetAttr("text-anchor", "middle").
			SetAttr("font-size", "12")
		t.Text = text
	}
	note("gdp-note-high", "higher GDP ⟶")
	note("gdp-note-low", "⟵ lower GDP")

	plot.Append(scene.KindGroup).SetClass("axis", "y-axis").Lower()

	d.Layout(s, inner)
}

func (d *drawing) Layout(s *scene.Scene, inner chart.Size) {
	w, h := inner.Width, inner.Height
	d.x.SetRange(scale.Range{Start: 0, End: w})
	d.y.SetRange(scale.Range{Start: h, End: 0})

	bw := d.x.Bandwidth()
	s.SelectAll(bars).Each(func(e *scene.Element) {
		r := e.Datum.(dataset.Country)
		x, _ := d.x.Position(r.Country)
		y := d.y.Map(r.LifeExpectancy)
		e.SetNum("width", bw).
			SetNum("height", h-y).
			SetNum("x", x).
			SetNum("y", y)
	})

	s.SelectAll(noteHigh).Num("x", w*0.75).Num("y", h+15)
	s.SelectAll(noteLow).Num("x", w*0.25).Num("y", h+15)

	if g := s.Select(yAxis); g != nil {
		axis := chart.Axis{Ticks: 5, TickSize: -w, HideDomain: true, Format: yearsLabel}
		axis.Left(g, d.y)
	}
}

func yearsLabel(v, step float64) string {
	if v == 80 {
		return "80 years"
	}
	return scale.FormatTick(v, step)
}

func (d *drawing) Steps() []chart.Step {
	neutral := func(s *scene.Scene) { s.SelectAll(bars).Attr("fill", Neutral) }
	highlightKey := func(key string) func(*scene.Scene) {
		return func(s *scene.Scene) {
			s.SelectAll(bars).AttrFunc("fill", func(e *scene.Element) string {
				if e.Key == key {
					return Highlight
				}
				return Neutral
			})
		}
	}

	handlers := map[string]func(*scene.Scene){
		StepReady:  neutral,
		StepReset:  neutral,
		StepAsia:   highlightKey("asia"),
		StepAfrica: highlightKey("africa"),
		StepNA:     highlightKey("namerica"),
		StepLowGDP: func(s *scene.Scene) {
			s.SelectAll(bars).AttrFunc("fill", func(e *scene.Element) string {
				if e.Datum.(dataset.Country).GDPPerCapita < LowGDP {
					return Highlight
				}
				return Neutral
			})
		},
		StepContinent: func(s *scene.Scene) {
			s.SelectAll(bars).AttrFunc("fill", func(e *scene.Element) string {
				c, _ := d.color.Map(e.Datum.(dataset.Country).Continent)
				return c
			})
		},
	}

	out := make([]chart.Step, 0, len(steps))
	for _, info := range steps {
		out = append(out, chart.Step{StepInfo: info, Apply: handlers[info.ID]})
	}
	return out
}
