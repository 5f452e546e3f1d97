// Package scene holds the in-memory visual tree of a chart and serializes
// it to SVG.
//
// A [Scene] is an <svg> root with a single plot group translated by the
// chart margins. Chart code binds data to elements once, then restyles and
// repositions those same elements through [Selection]s:
//
//	s := scene.New("chart-1", scene.Margin{Top: 50, Right: 20, Bottom: 50, Left: 50})
//	bar := s.Plot().Append(scene.KindRect)
//	bar.Key = "asia"
//	bar.SetClass("asia").SetAttr("fill", "lightgrey")
//
//	s.SelectAll(scene.Class("asia")).Attr("fill", "#4cc1fc")
//	svg := scene.RenderSVG(s)
package scene

import "fmt"

// Margin is the space between the SVG edge and the plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Scene is a chart's visual tree.
type Scene struct {
	root   *Element
	plot   *Element
	margin Margin
}

// New creates an empty scene whose root carries the given id and class.
func New(id string, m Margin) *Scene {
	root := NewElement(KindSVG)
	root.SetAttr("id", id)
	root.SetClass("chart", id)
	plot := root.Append(KindGroup)
	plot.SetClass("plot")
	plot.SetAttr("transform", fmt.Sprintf("translate(%s,%s)", FormatNum(m.Left), FormatNum(m.Top)))
	return &Scene{root: root, plot: plot, margin: m}
}

// Root returns the <svg> element.
func (s *Scene) Root() *Element { return s.root }

// Plot returns the margin-translated group that holds chart content.
func (s *Scene) Plot() *Element { return s.plot }

// Margin returns the scene margins.
func (s *Scene) Margin() Margin { return s.margin }

// SetSize sets the outer SVG size from the inner plot size.
func (s *Scene) SetSize(innerWidth, innerHeight float64) {
	w := innerWidth + s.margin.Left + s.margin.Right
	h := innerHeight + s.margin.Top + s.margin.Bottom
	s.root.SetNum("width", w)
	s.root.SetNum("height", h)
	s.root.SetAttr("viewBox", fmt.Sprintf("0 0 %s %s", FormatNum(w), FormatNum(h)))
}

// SelectAll returns the plot descendants matching m.
func (s *Scene) SelectAll(m Matcher) Selection {
	return SelectAll(s.plot, m)
}

// Select returns the first plot descendant matching m, or nil.
func (s *Scene) Select(m Matcher) *Element {
	return Select(s.plot, m)
}

// Len returns the number of elements below the plot group.
func (s *Scene) Len() int {
	return len(SelectAll(s.plot, func(*Element) bool { return true }))
}
