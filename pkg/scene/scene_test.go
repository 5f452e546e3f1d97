package scene

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestElementAttrsKeepOrder(t *testing.T) {
	e := NewElement(KindRect)
	e.SetAttr("x", "1").SetAttr("y", "2").SetAttr("x", "3")

	var names []string
	for _, a := range e.attrs {
		names = append(names, a.name+"="+a.value)
	}
	if got := strings.Join(names, " "); got != "x=3 y=2" {
		t.Errorf("attrs = %q, want %q", got, "x=3 y=2")
	}
}

func TestElementNum(t *testing.T) {
	e := NewElement(KindRect)
	e.SetNum("width", 12.5)
	e.SetNum("height", math.NaN())

	if got := e.Attr("width"); got != "12.5" {
		t.Errorf("width attr = %q", got)
	}
	if got := e.Num("width"); got != 12.5 {
		t.Errorf("Num(width) = %v", got)
	}
	if got := e.Attr("height"); got != "NaN" {
		t.Errorf("height attr = %q, want NaN", got)
	}
	if got := e.Num("missing"); !math.IsNaN(got) {
		t.Errorf("Num(missing) = %v, want NaN", got)
	}
}

func TestSetClassDeduplicates(t *testing.T) {
	e := NewElement(KindPath)
	e.SetClass("price-line", "us", "", "us")
	if got := strings.Join(e.Classes(), " "); got != "price-line us" {
		t.Errorf("classes = %q", got)
	}
	if !e.HasClass("us") || e.HasClass("pacific") {
		t.Error("HasClass mismatch")
	}
}

func TestLower(t *testing.T) {
	p := NewElement(KindGroup)
	a := p.Append(KindRect)
	b := p.Append(KindRect)
	c := p.Append(KindRect)

	c.Lower()

	got := p.Children()
	if got[0] != c || got[1] != a || got[2] != b {
		t.Errorf("Lower did not move element to front")
	}
	if c.Parent() != p {
		t.Error("Lower changed parent")
	}
}

func TestRemoveAndClear(t *testing.T) {
	p := NewElement(KindGroup)
	a := p.Append(KindRect)
	b := p.Append(KindText)

	a.Remove()
	if len(p.Children()) != 1 || p.Children()[0] != b || a.Parent() != nil {
		t.Fatalf("Remove left %d children", len(p.Children()))
	}

	p.Clear()
	if len(p.Children()) != 0 || b.Parent() != nil {
		t.Error("Clear did not detach children")
	}
}

func TestSelection(t *testing.T) {
	s := New("chart-test", Margin{})
	for _, k := range []string{"asia", "africa", "asia"} {
		r := s.Plot().Append(KindRect)
		r.Key = k
		r.SetClass(k)
	}
	s.Plot().Append(KindText).SetClass("gdp-note-high")

	tests := []struct {
		name string
		m    Matcher
		want int
	}{
		{"kind", OfKind(KindRect), 3},
		{"class", Class("asia"), 2},
		{"key", Key("africa"), 1},
		{"all", All(OfKind(KindRect), Not(Key("asia"))), 1},
		{"any", Any(Class("gdp-note-high"), Key("africa")), 2},
		{"none", Class("europe"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.SelectAll(tt.m)); got != tt.want {
				t.Errorf("SelectAll() matched %d, want %d", got, tt.want)
			}
		})
	}

	s.SelectAll(OfKind(KindRect)).
		Attr("fill", "lightgrey").
		Filter(Key("asia")).
		Attr("fill", "#4cc1fc")

	if got := len(s.SelectAll(OfKind(KindRect)).Filter(func(e *Element) bool {
		return e.Attr("fill") == "#4cc1fc"
	})); got != 2 {
		t.Errorf("highlighted %d bars, want 2", got)
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
	if s.Select(Class("europe")) != nil {
		t.Error("Select should return nil when nothing matches")
	}
}

func TestSetSize(t *testing.T) {
	s := New("chart-1", Margin{Top: 50, Right: 20, Bottom: 50, Left: 50})
	s.SetSize(630, 400)

	root := s.Root()
	if root.Num("width") != 700 || root.Num("height") != 500 {
		t.Errorf("size = %s x %s", root.Attr("width"), root.Attr("height"))
	}
	if got := root.Attr("viewBox"); got != "0 0 700 500" {
		t.Errorf("viewBox = %q", got)
	}
	if got := s.Plot().Attr("transform"); got != "translate(50,50)" {
		t.Errorf("plot transform = %q", got)
	}
}

func TestRenderSVG(t *testing.T) {
	s := New("chart-1", Margin{Left: 10, Top: 5})
	s.SetSize(100, 50)
	txt := s.Plot().Append(KindText)
	txt.SetClass("gdp-note-high").SetAttr("x", "75")
	txt.Text = "higher GDP ⟶ & <more>"
	s.Plot().Append(KindRect).SetClass("asia").SetAttr("fill", `"q"`)

	out := string(RenderSVG(s))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" class="chart chart-1" id="chart-1"`,
		`<g class="plot" transform="translate(10,5)">`,
		`<text class="gdp-note-high" x="75">higher GDP ⟶ &amp; &lt;more&gt;</text>`,
		`<rect class="asia" fill="&#34;q&#34;"/>`,
		"</svg>\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "<style>") || strings.HasPrefix(out, "<?xml") {
		t.Error("default output should have no style block or prolog")
	}

	if again := string(RenderSVG(s)); again != out {
		t.Error("RenderSVG is not deterministic")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	s := New("chart-2", Margin{})
	out := string(RenderSVG(s,
		WithStandalone(),
		WithTransitions(500*time.Millisecond),
		WithCSS(".axis text { font-size: 10px; }"),
	))

	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("missing XML prolog")
	}
	if !strings.Contains(out, "transition: fill 500ms ease, stroke 500ms ease") {
		t.Errorf("missing transition rule:\n%s", out)
	}
	if !strings.Contains(out, ".axis text { font-size: 10px; }") {
		t.Error("missing custom CSS")
	}
}

func TestCSSTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{2 * time.Minute, "120000ms"},
		{500 * time.Microsecond, "0.5ms"},
		{1500 * time.Millisecond, "1500ms"},
	}
	for _, tt := range tests {
		if got := cssTime(tt.d); got != tt.want {
			t.Errorf("cssTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}

	out := string(RenderSVG(New("chart-3", Margin{}), WithTransitions(2*time.Minute)))
	if !strings.Contains(out, "transition: fill 120000ms ease") {
		t.Errorf("minute transition not in CSS time:\n%s", out)
	}
}
