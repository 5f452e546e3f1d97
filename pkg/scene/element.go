package scene

import (
	"math"
	"slices"
	"strconv"
)

// Kind is the SVG tag of an element.
type Kind string

// Element kinds used by the charts.
const (
	KindSVG    Kind = "svg"
	KindGroup  Kind = "g"
	KindRect   Kind = "rect"
	KindPath   Kind = "path"
	KindCircle Kind = "circle"
	KindText   Kind = "text"
	KindLine   Kind = "line"
	KindStyle  Kind = "style"
)

type attr struct {
	name, value string
}

// Element is one node of the visual tree.
//
// Attributes keep their insertion order so serialization is deterministic.
// Key is the stable category key used to re-select the element after
// relayout; Datum is the record (or series) bound at paint time.
type Element struct {
	Kind  Kind
	Key   string
	Text  string
	Datum any

	classes  []string
	attrs    []attr
	children []*Element
	parent   *Element
}

// NewElement creates a detached element.
func NewElement(kind Kind) *Element {
	return &Element{Kind: kind}
}

// Append creates a child of the given kind at the end of e's children.
func (e *Element) Append(kind Kind) *Element {
	c := NewElement(kind)
	c.parent = e
	e.children = append(e.children, c)
	return c
}

// Children returns e's children in document order.
func (e *Element) Children() []*Element { return e.children }

// Parent returns the parent element, or nil for a root or removed element.
func (e *Element) Parent() *Element { return e.parent }

// Lower moves e to the front of its parent's children, so it is drawn
// behind its siblings.
func (e *Element) Lower() *Element {
	p := e.parent
	if p == nil {
		return e
	}
	i := slices.Index(p.children, e)
	if i <= 0 {
		return e
	}
	copy(p.children[1:i+1], p.children[:i])
	p.children[0] = e
	return e
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, e); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}

// Clear removes all children.
func (e *Element) Clear() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

// SetClass replaces the class list.
func (e *Element) SetClass(classes ...string) *Element {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	e.classes = out
	return e
}

// Classes returns the class list.
func (e *Element) Classes() []string { return e.classes }

// HasClass reports whether e carries class c.
func (e *Element) HasClass(c string) bool { return slices.Contains(e.classes, c) }

// Attr returns the value of an attribute, or "" when unset.
func (e *Element) Attr(name string) string {
	for _, a := range e.attrs {
		if a.name == name {
			return a.value
		}
	}
	return ""
}

// HasAttr reports whether the attribute is set.
func (e *Element) HasAttr(name string) bool {
	for _, a := range e.attrs {
		if a.name == name {
			return true
		}
	}
	return false
}

// SetAttr sets an attribute, keeping its original position if already set.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].name == name {
			e.attrs[i].value = value
			return e
		}
	}
	e.attrs = append(e.attrs, attr{name, value})
	return e
}

// SetNum sets a numeric attribute using the shortest exact representation.
// NaN is written as "NaN".
func (e *Element) SetNum(name string, v float64) *Element {
	return e.SetAttr(name, FormatNum(v))
}

// Num parses a numeric attribute. Missing or non-numeric values yield NaN.
func (e *Element) Num(name string) float64 {
	v, err := strconv.ParseFloat(e.Attr(name), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// FormatNum renders v the way SetNum stores it.
func FormatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Walk visits e and its descendants depth-first in document order.
// Returning false from fn skips the element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}
