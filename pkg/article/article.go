// Package article assembles the two charts into a scrolling page: an
// ordered narrative of text sections, each of which activates one chart
// step when the reader reaches it.
package article

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/chart/housing"
	"github.com/matzehuels/scrolly/pkg/chart/lifeexp"
	"github.com/matzehuels/scrolly/pkg/errors"
)

// Title is the page heading.
const Title = "Scrolling through the numbers"

// Section is one block of narrative text bound to a chart step.
type Section struct {
	Step  string `json:"step"`
	Chart string `json:"chart"`
	Text  string `json:"text"`
}

var narrative = []Section{
	{lifeexp.StepReady, lifeexp.Name, "Every bar is a country, sorted from the shortest life expectancy to the longest."},
	{lifeexp.StepAsia, lifeexp.Name, "Asian countries spread across the whole range."},
	{lifeexp.StepAfrica, lifeexp.Name, "African countries cluster at the low end."},
	{lifeexp.StepNA, lifeexp.Name, "North American countries sit near the top."},
	{lifeexp.StepLowGDP, lifeexp.Name, "Countries with a GDP per capita under $3,000 mostly fall on the left."},
	{lifeexp.StepContinent, lifeexp.Name, "Coloured by continent, the pattern is hard to miss."},
	{lifeexp.StepReset, lifeexp.Name, "Income is not the whole story, but it is a large part of it."},
	{housing.StepReady, housing.Name, "Now to housing. Ten regions, two years of median sale prices."},
	{housing.StepAllLines, housing.Name, "Each region follows its own level."},
	{housing.StepNational, housing.Name, "The national median, in red, rises steadily."},
	{housing.StepHighlightLine, housing.Name, "The western and southern regions swing the most."},
	{housing.StepHighlightBar, housing.Name, "Prices dip every winter, between November and February."},
}

// Narrative returns the default sections in reading order.
func Narrative() []Section {
	out := make([]Section, len(narrative))
	copy(out, narrative)
	return out
}

// Validate checks that every section names a known chart and one of its
// steps, and that no step appears twice.
func Validate(sections []Section, defs []chart.Definition) error {
	byName := make(map[string]chart.Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		def, ok := byName[s.Chart]
		if !ok {
			return errors.New(errors.ErrCodeUnknownChart, "section %q: unknown chart %q", s.Step, s.Chart)
		}
		if !def.HasStep(s.Step) {
			return errors.New(errors.ErrCodeUnknownStep, "chart %q has no step %q", s.Chart, s.Step)
		}
		if seen[s.Step] {
			return errors.New(errors.ErrCodeInvalidInput, "step %q appears twice", s.Step)
		}
		seen[s.Step] = true
	}
	return nil
}

// Page is one reader's view of the article: a live chart per definition
// plus the shared viewport size.
type Page struct {
	sections []Section
	charts   []*chart.Chart
	byName   map[string]*chart.Chart
	owner    map[string]*chart.Chart

	mu       sync.Mutex
	viewport chart.Size
	active   string
}

// NewPage creates charts for defs, all sized to the page viewport. opts
// apply to every chart.
func NewPage(sections []Section, defs []chart.Definition, viewport chart.Size, opts ...chart.Option) (*Page, error) {
	if err := Validate(sections, defs); err != nil {
		return nil, err
	}
	p := &Page{
		sections: sections,
		byName:   make(map[string]*chart.Chart, len(defs)),
		owner:    make(map[string]*chart.Chart, len(sections)),
		viewport: viewport,
	}
	for _, def := range defs {
		if _, dup := p.byName[def.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "chart %q defined twice", def.Name)
		}
		c := chart.New(def, p.Viewport, opts...)
		p.charts = append(p.charts, c)
		p.byName[def.Name] = c
	}
	for _, s := range sections {
		p.owner[s.Step] = p.byName[s.Chart]
	}
	return p, nil
}

// Mount loads and paints every chart concurrently. A chart that fails to
// load stays empty and does not affect the others.
func (p *Page) Mount(ctx context.Context) {
	var g errgroup.Group
	for _, c := range p.charts {
		g.Go(func() error {
			c.Mount(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

// Sections returns the narrative in reading order.
func (p *Page) Sections() []Section { return p.sections }

// Charts returns the charts in definition order.
func (p *Page) Charts() []*chart.Chart { return p.charts }

// Chart looks up a chart by name.
func (p *Page) Chart(name string) (*chart.Chart, error) {
	c, ok := p.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownChart, "unknown chart %q", name)
	}
	return c, nil
}

// Trigger routes step to the chart that owns it.
func (p *Page) Trigger(step string) error {
	c, ok := p.owner[step]
	if !ok {
		return errors.New(errors.ErrCodeUnknownStep, "unknown step %q", step)
	}
	if err := c.Trigger(step); err != nil {
		return err
	}
	p.mu.Lock()
	p.active = step
	p.mu.Unlock()
	return nil
}

// Active returns the last step triggered on the page, or "".
func (p *Page) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Viewport returns the current container size. It is the SizeFunc of every
// chart on the page.
func (p *Page) Viewport() chart.Size {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewport
}

// Resize records a new viewport and schedules a debounced relayout of
// every chart.
func (p *Page) Resize(size chart.Size) {
	p.mu.Lock()
	p.viewport = size
	p.mu.Unlock()
	p.NotifyResize()
}

// NotifyResize schedules a debounced relayout of every chart.
func (p *Page) NotifyResize() {
	for _, c := range p.charts {
		c.NotifyResize()
	}
}

// FlushResize runs pending relayouts now.
func (p *Page) FlushResize() {
	for _, c := range p.charts {
		c.FlushResize()
	}
}

// Close tears down every chart.
func (p *Page) Close() {
	for _, c := range p.charts {
		c.Close()
	}
}
