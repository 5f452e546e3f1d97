package chart

import (
	"fmt"

	"github.com/matzehuels/scrolly/pkg/scale"
	"github.com/matzehuels/scrolly/pkg/scene"
)

// Axis draws tick marks and labels into an axis group. Drawing clears the
// group first, so calling it again after a resize replaces the old ticks
// while the group keeps its place in the document.
type Axis struct {
	// Ticks is the approximate tick count.
	Ticks int
	// TickSize is the tick line length. A negative size extends the ticks
	// into the plot as grid lines.
	TickSize float64
	// HideDomain drops the axis baseline.
	HideDomain bool
	// Format labels a linear tick given the tick step. Nil uses
	// [scale.FormatTick].
	Format func(v, step float64) string
}

const tickPadding = 3

func (a Axis) tickSize() float64 {
	if a.TickSize == 0 {
		return 6
	}
	return a.TickSize
}

func styleAxisGroup(g *scene.Element, anchor string) {
	g.SetAttr("fill", "none").
		SetAttr("font-size", "10").
		SetAttr("font-family", "sans-serif").
		SetAttr("text-anchor", anchor)
}

// Left draws a vertical axis for y with labels on the left.
func (a Axis) Left(g *scene.Element, y *scale.Linear) {
	g.Clear()
	styleAxisGroup(g, "end")

	size := a.tickSize()
	r := y.Range()
	if !a.HideDomain {
		g.Append(scene.KindPath).SetClass("domain").
			SetAttr("stroke", "currentColor").
			SetAttr("d", fmt.Sprintf("M%s,%sH0.5V%sH%s",
				scene.FormatNum(-size), scene.FormatNum(r.Start), scene.FormatNum(r.End), scene.FormatNum(-size)))
	}

	format := a.Format
	if format == nil {
		format = scale.FormatTick
	}
	step := y.TickStep(a.Ticks)
	for _, v := range y.Ticks(a.Ticks) {
		tick := g.Append(scene.KindGroup).SetClass("tick").
			SetAttr("opacity", "1").
			SetAttr("transform", fmt.Sprintf("translate(0,%s)", scene.FormatNum(y.Map(v))))
		tick.Append(scene.KindLine).
			SetAttr("stroke", "currentColor").
			SetNum("x2", -size)
		label := tick.Append(scene.KindText).
			SetAttr("fill", "currentColor").
			SetNum("x", -(max(size, 0)+tickPadding)).
			SetAttr("dy", "0.32em")
		label.Text = format(v, step)
	}
}

// BottomTime draws a horizontal time axis with labels below, formatted
// with [scale.TickLayout].
func (a Axis) BottomTime(g *scene.Element, x *scale.Time) {
	g.Clear()
	styleAxisGroup(g, "middle")

	size := a.tickSize()
	r := x.Range()
	if !a.HideDomain {
		g.Append(scene.KindPath).SetClass("domain").
			SetAttr("stroke", "currentColor").
			SetAttr("d", fmt.Sprintf("M%s,%sV0H%sV%s",
				scene.FormatNum(r.Start), scene.FormatNum(size), scene.FormatNum(r.End), scene.FormatNum(size)))
	}

	for _, t := range x.Ticks(a.Ticks) {
		tick := g.Append(scene.KindGroup).SetClass("tick").
			SetAttr("opacity", "1").
			SetAttr("transform", fmt.Sprintf("translate(%s,0)", scene.FormatNum(x.Map(t))))
		tick.Append(scene.KindLine).
			SetAttr("stroke", "currentColor").
			SetNum("y2", size)
		label := tick.Append(scene.KindText).
			SetAttr("fill", "currentColor").
			SetNum("y", max(size, 0)+tickPadding).
			SetAttr("dy", "0.71em")
		label.Text = t.Format(scale.TickLayout)
	}
}
