// Package housing is the regional housing price chart: one line per U.S.
// census region, with the national line and the winter dip singled out as
// the reader scrolls.
package housing

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/scrolly/pkg/category"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/scale"
	"github.com/matzehuels/scrolly/pkg/scene"
)

// Name identifies the chart in URLs, configs and logs.
const Name = "housing"

// Title is drawn above the plot.
const Title = "U.S. housing prices fall in winter"

// Colours used by the steps.
const (
	None      = "none"
	Muted     = "gray"
	National  = "red"
	Focus     = "turquoise"
	Label     = "black"
	WinterBar = "#C2DFFF"
)

// NationalKey is the key of the national series.
const NationalKey = "us"

// FocusKeys are the regions called out by the highlight steps.
var FocusKeys = []string{"mountain", "pacific", "westsouthcentral", "southatlantic"}

// The highlight bar covers the winter months.
var (
	WinterStart = time.Date(2016, time.November, 1, 0, 0, 0, 0, time.UTC)
	WinterEnd   = time.Date(2017, time.February, 1, 0, 0, 0, 0, time.UTC)
)

// Step ids.
const (
	StepReady         = "ready-chart-two"
	StepAllLines      = "all-line"
	StepNational      = "us-line"
	StepHighlightLine = "highlight-line"
	StepHighlightBar  = "highlight-bar"
)

var margin = scene.Margin{Top: 100, Right: 120, Bottom: 50, Left: 50}

var steps = []chart.StepInfo{
	{ID: StepReady, Description: "Hide every series"},
	{ID: StepAllLines, Description: "Every region in its own colour"},
	{ID: StepNational, Description: "The national average in red"},
	{ID: StepHighlightLine, Description: "Western and southern regions in turquoise"},
	{ID: StepHighlightBar, Description: "Shade November to February"},
}

// Steps lists the chart's steps in narrative order.
func Steps() []chart.StepInfo { return slices.Clone(steps) }

// RowsFunc supplies the dataset.
type RowsFunc func(ctx context.Context) ([]dataset.HousingPrice, error)

// Definition returns the chart definition backed by rows.
func Definition(rows RowsFunc) chart.Definition {
	return chart.Definition{
		Name:  Name,
		Title: Title,
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
	def := Definition(func(ctx context.Context) ([]dataset.HousingPrice, error) {
		rows, _, err := dataset.LoadHousing(ctx, src, opts)
		return rows, err
	})
	def.Source = src.String()
	return def
}

// Static returns a definition over rows already in memory.
func Static(rows []dataset.HousingPrice) chart.Definition {
	def := Definition(func(context.Context) ([]dataset.HousingPrice, error) { return rows, nil })
	def.Source = "memory"
	return def
}

// Series is one region's prices in file order.
type Series struct {
	Region string
	Key    string
	Points []dataset.HousingPrice
}

// GroupByRegion splits rows into series, ordered by first appearance.
func GroupByRegion(rows []dataset.HousingPrice) []Series {
	var out []Series
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Region]
		if !ok {
			i = len(out)
			index[r.Region] = i
			out = append(out, Series{Region: r.Region, Key: category.Key(r.Region)})
		}
		out[i].Points = append(out[i].Points, r)
	}
	return out
}

type drawing struct {
	series []Series
	x      *scale.Time
	y      *scale.Linear
	color  *scale.Ordinal
}

func newDrawing(rows []dataset.HousingPrice) *drawing {
	dates := make([]time.Time, len(rows))
	prices := make([]float64, len(rows))
	for i, r := range rows {
		dates[i], prices[i] = r.Date, r.Price
	}
	t0, t1, _ := scale.TimeExtent(dates)
	p0, p1, _ := scale.Extent(prices)

	series := GroupByRegion(rows)
	regions := make([]string, len(series))
	for i, s := range series {
		regions[i] = s.Region
	}
	return &drawing{
		series: series,
		x:      scale.NewTime(t0, t1, scale.Range{}),
		y:      scale.NewLinear(p0, p1, scale.Range{}),
		color:  scale.NewOrdinal(regions, scale.Set3Ten),
	}
}

func (d *drawing) Margin() scene.Margin { return margin }

var (
	lines      = scene.Class("price-line")
	labels     = scene.Class("label-text")
	markers    = scene.OfKind(scene.KindCircle)
	winterBar  = scene.Class("highlight-bar")
	title      = scene.Class("title")
	xAxisGroup = scene.Class("x-axis")
	yAxisGroup = scene.Class("y-axis")
)

func (d *drawing) colorOf(e *scene.Element) string {
	c, _ := d.color.Map(e.Datum.(*Series).Region)
	return c
}

func (d *drawing) Paint(s *scene.Scene, inner chart.Size) {
	plot := s.Plot()
	for i := range d.series {
		sr := &d.series[i]
		line := plot.Append(scene.KindPath)
		line.Key, line.Datum = sr.Key, sr
		line.SetClass("price-line", sr.Key).
			SetAttr("stroke", d.colorOf(line)).
			SetAttr("stroke-width", "2").
			SetAttr("fill", None)
	}
	for i := range d.series {
		sr := &d.series[i]
		dot := plot.Append(scene.KindCircle)
		dot.Key, dot.Datum = sr.Key, sr
		dot.SetClass(sr.Key).
			SetAttr("fill", d.colorOf(dot)).
			SetAttr("r", "4")
	}
	for i := range d.series {
		sr := &d.series[i]
		label := plot.Append(scene.KindText)
		label.Key, label.Datum = sr.Key, sr
		label.Text = sr.Region
		label.SetClass("label-text", sr.Key).
			SetAttr("dx", "6").
			SetAttr("dy", "4").
			SetAttr("font-size", "12")
	}

	heading := plot.Append(scene.KindText)
	heading.Text = Title
	heading.SetClass("title").
		SetAttr("font-size", "24").
		SetAttr("text-anchor", "middle").
		SetAttr("dx", "40")

	plot.Append(scene.KindRect).
		SetClass("highlight-bar").
		SetAttr("fill", WinterBar).
		Lower()

	plot.Append(scene.KindGroup).SetClass("axis", "x-axis")
	plot.Append(scene.KindGroup).SetClass("axis", "y-axis")

	d.Layout(s, inner)
}

func (d *drawing) Layout(s *scene.Scene, inner chart.Size) {
	w, h := inner.Width, inner.Height
	d.x.SetRange(scale.Range{Start: 0, End: w})
	d.y.SetRange(scale.Range{Start: h, End: 0})

	s.SelectAll(lines).AttrFunc("d", func(e *scene.Element) string {
		return d.path(e.Datum.(*Series).Points)
	})

	first := func(e *scene.Element) (float64, float64) {
		pts := e.Datum.(*Series).Points
		return d.x.Map(pts[0].Date), d.y.Map(pts[0].Price)
	}
	s.SelectAll(markers).Each(func(e *scene.Element) {
		cx, cy := first(e)
		e.SetNum("cx", cx).SetNum("cy", cy)
	})
	s.SelectAll(labels).Each(func(e *scene.Element) {
		x, y := first(e)
		e.SetNum("x", x).SetNum("y", y)
	})

	s.SelectAll(title).Num("x", w/2).Num("y", -40)

	x0, x1 := d.x.Map(WinterStart), d.x.Map(WinterEnd)
	s.SelectAll(winterBar).
		Num("x", x0).
		Num("y", 0).
		Num("width", x1-x0).
		Num("height", h)

	if g := s.Select(xAxisGroup); g != nil {
		g.SetAttr("transform", fmt.Sprintf("translate(0,%s)", scene.FormatNum(h)))
		chart.Axis{Ticks: 9}.BottomTime(g, d.x)
	}
	if g := s.Select(yAxisGroup); g != nil {
		chart.Axis{Ticks: 10}.Left(g, d.y)
	}
}

func (d *drawing) path(pts []dataset.HousingPrice) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(scene.FormatNum(d.x.Map(p.Date)))
		b.WriteByte(',')
		b.WriteString(scene.FormatNum(d.y.Map(p.Price)))
	}
	return b.String()
}

// emphasis maps series keys to the colour they stand out in. Every other
// series is muted.
type emphasis map[string]string

func (em emphasis) paint(s *scene.Scene, bar string) {
	colour := func(e *scene.Element) string {
		if c, ok := em[e.Key]; ok {
			return c
		}
		return Muted
	}
	s.SelectAll(lines).AttrFunc("stroke", colour).Attr("fill", None)
	s.SelectAll(markers).AttrFunc("fill", colour)
	s.SelectAll(labels).AttrFunc("fill", colour)
	s.SelectAll(winterBar).Attr("fill", bar)
}

func (d *drawing) Steps() []chart.Step {
	national := emphasis{NationalKey: National}
	focus := emphasis{NationalKey: National}
	for _, k := range FocusKeys {
		focus[k] = Focus
	}

	handlers := map[string]func(*scene.Scene){
		StepReady: func(s *scene.Scene) {
			s.SelectAll(lines).Attr("stroke", None).Attr("fill", None)
			s.SelectAll(markers).Attr("fill", None)
			s.SelectAll(labels).Attr("fill", None)
			s.SelectAll(winterBar).Attr("fill", None)
		},
		StepAllLines: func(s *scene.Scene) {
			s.SelectAll(lines).AttrFunc("stroke", d.colorOf).Attr("fill", None)
			s.SelectAll(markers).AttrFunc("fill", d.colorOf)
			s.SelectAll(labels).Attr("fill", Label)
			s.SelectAll(winterBar).Attr("fill", None)
		},
		StepNational:      func(s *scene.Scene) { national.paint(s, None) },
		StepHighlightLine: func(s *scene.Scene) { focus.paint(s, None) },
		StepHighlightBar:  func(s *scene.Scene) { focus.paint(s, WinterBar) },
	}

	out := make([]chart.Step, 0, len(steps))
	for _, info := range steps {
		out = append(out, chart.Step{StepInfo: info, Apply: handlers[info.ID]})
	}
	return out
}
