// Package chart drives a scroll-synchronized chart through its lifecycle.
//
// A [Definition] names a chart, lists its steps and knows how to load the
// chart's data. [New] wraps a definition in a [Chart], which owns all of
// the chart's state: the loaded [Drawing], the visual tree, the step
// [Controller] and the resize [Debouncer]. Nothing is shared between charts.
//
// Lifecycle:
//
//	c := chart.New(lifeexp.Definition(rows), func() chart.Size { return chart.Size{Width: 800, Height: 500} })
//	c.Mount(ctx)          // load, paint, lay out once
//	_ = c.Trigger("asia") // restyle
//	c.NotifyResize()      // debounced relayout
//	svg, ok := c.SVG()
//	c.Close()
//
// Every entry point takes the chart's mutex, so steps, relayouts and the
// completion of the initial load never interleave. A chart whose load fails
// stays empty; the failure is logged and reported by [Chart.Err] but never
// returned to the caller of Mount.
package chart

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrolly/pkg/errors"
	"github.com/matzehuels/scrolly/pkg/observability"
	"github.com/matzehuels/scrolly/pkg/scene"
)

// DefaultDebounce is the quiet period before a relayout runs.
const DefaultDebounce = time.Second

// Size is a container or plot size in pixels.
type Size struct {
	Width, Height float64
}

// SizeFunc reports the current container size.
type SizeFunc func() Size

// Fixed returns a SizeFunc that always reports s.
func Fixed(s Size) SizeFunc { return func() Size { return s } }

// StepInfo describes a step for listings and validation.
type StepInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Step is a step with its handler.
type Step struct {
	StepInfo
	Apply func(s *scene.Scene)
}

// Drawing is a chart with its data loaded.
type Drawing interface {
	// Margin is the space around the plot area.
	Margin() scene.Margin

	// Paint creates every element and binds data to it. It runs once.
	Paint(s *scene.Scene, inner Size)

	// Layout re-ranges the scales to inner and rewrites geometry on the
	// elements created by Paint. It never touches fill or stroke.
	Layout(s *scene.Scene, inner Size)

	// Steps returns the step handlers.
	Steps() []Step
}

// Definition describes a chart before its data is loaded.
type Definition struct {
	Name   string
	Title  string
	Source string
	Steps  []StepInfo
	Load   func(ctx context.Context) (Drawing, error)
}

// HasStep reports whether id is one of the definition's steps.
func (d Definition) HasStep(id string) bool {
	return slices.ContainsFunc(d.Steps, func(s StepInfo) bool { return s.ID == id })
}

// State is a chart lifecycle state.
type State int

const (
	StatePending State = iota
	StateRendered
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Option configures a Chart.
type Option func(*Chart)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *Chart) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDebounce sets the relayout quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Chart) { c.debounce = d }
}

// WithTransitions makes SVG output ease style changes over d.
func WithTransitions(d time.Duration) Option {
	return func(c *Chart) { c.transitions = d }
}

// Chart is one live chart.
type Chart struct {
	def         Definition
	size        SizeFunc
	logger      *log.Logger
	debounce    time.Duration
	transitions time.Duration

	mu      sync.Mutex
	state   State
	err     error
	drawing Drawing
	scene   *scene.Scene
	ctrl    *Controller
	resize  *Debouncer
}

// New creates a pending chart. size is consulted on every layout.
func New(def Definition, size SizeFunc, opts ...Option) *Chart {
	c := &Chart{
		def:      def,
		size:     size,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resize = NewDebouncer(c.debounce)
	return c
}

// Name returns the chart name.
func (c *Chart) Name() string { return c.def.Name }

// Definition returns the chart definition.
func (c *Chart) Definition() Definition { return c.def }

// Mount loads the data, paints the chart and lays it out once. It is a
// no-op unless the chart is pending. Failures are logged and kept for Err.
func (c *Chart) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.state != StatePending {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	hooks := observability.Chart()
	hooks.OnLoadStart(ctx, c.def.Name)
	start := time.Now()

	d, err := c.load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePending {
		return
	}
	if err == nil {
		err = c.renderLocked(d)
	}
	if err != nil {
		c.state, c.err = StateFailed, err
		c.logger.Error("chart load failed", "chart", c.def.Name, "source", c.def.Source, "err", err)
		hooks.OnLoadComplete(ctx, c.def.Name, 0, time.Since(start), err)
		return
	}

	n := c.scene.Len()
	c.logger.Debug("chart rendered", "chart", c.def.Name, "elements", n, "took", time.Since(start).Round(time.Millisecond))
	hooks.OnLoadComplete(ctx, c.def.Name, n, time.Since(start), nil)
}

func (c *Chart) load(ctx context.Context) (Drawing, error) {
	if c.def.Load == nil {
		return nil, errors.New(errors.ErrCodeLoadFailed, "chart %q has no loader", c.def.Name)
	}
	d, err := c.def.Load(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeLoadFailed, "chart %q loaded no data", c.def.Name)
	}
	return d, nil
}

func (c *Chart) renderLocked(d Drawing) error {
	s := scene.New("chart-"+c.def.Name, d.Margin())
	ctrl := NewController()
	for _, st := range d.Steps() {
		apply := st.Apply
		if err := ctrl.Bind(st.ID, func() { apply(s) }); err != nil {
			return err
		}
	}

	d.Paint(s, c.innerSize(d.Margin()))
	c.drawing, c.scene, c.ctrl = d, s, ctrl
	c.state = StateRendered
	c.relayoutLocked()
	return nil
}

// State returns the lifecycle state.
func (c *Chart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the load failure, or nil.
func (c *Chart) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Trigger applies step id. Unknown ids are rejected in every state; known
// ids are ignored until the chart has rendered.
func (c *Chart) Trigger(id string) error {
	if !c.def.HasStep(id) {
		return errors.New(errors.ErrCodeUnknownStep, "chart %q has no step %q", c.def.Name, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRendered {
		return nil
	}
	if err := c.ctrl.Trigger(id); err != nil {
		return err
	}
	c.logger.Debug("step", "chart", c.def.Name, "step", id)
	observability.Chart().OnStep(context.Background(), c.def.Name, id)
	return nil
}

// Active returns the last applied step id, or "".
func (c *Chart) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctrl == nil {
		return ""
	}
	return c.ctrl.Active()
}

// NotifyResize schedules a debounced relayout.
func (c *Chart) NotifyResize() {
	c.resize.Trigger(c.Relayout)
}

// FlushResize runs a pending debounced relayout immediately.
func (c *Chart) FlushResize() {
	c.resize.Flush()
}

// Relayout re-reads the container size and rewrites element geometry.
func (c *Chart) Relayout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRendered {
		return
	}
	c.relayoutLocked()
}

func (c *Chart) relayoutLocked() {
	start := time.Now()
	inner := c.innerSize(c.drawing.Margin())
	c.drawing.Layout(c.scene, inner)
	c.scene.SetSize(inner.Width, inner.Height)
	observability.Chart().OnRelayout(context.Background(), c.def.Name, inner.Width, inner.Height, time.Since(start))
}

func (c *Chart) innerSize(m scene.Margin) Size {
	var outer Size
	if c.size != nil {
		outer = c.size()
	}
	return Size{
		Width:  max(0, outer.Width-m.Left-m.Right),
		Height: max(0, outer.Height-m.Top-m.Bottom),
	}
}

// SVG serializes the current scene. It reports false until the chart has
// rendered.
func (c *Chart) SVG(opts ...scene.SVGOption) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRendered {
		return nil, false
	}
	if c.transitions > 0 {
		opts = append([]scene.SVGOption{scene.WithTransitions(c.transitions)}, opts...)
	}
	return scene.RenderSVG(c.scene, opts...), true
}

// Elements returns the number of visual elements; zero unless rendered.
func (c *Chart) Elements() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRendered {
		return 0
	}
	return c.scene.Len()
}

// View calls fn with the live scene while holding the chart lock. fn is not
// called unless the chart has rendered.
func (c *Chart) View(fn func(s *scene.Scene)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRendered {
		return false
	}
	fn(c.scene)
	return true
}

// Close stops pending relayouts and drops the scene. Later calls are no-ops.
func (c *Chart) Close() {
	c.resize.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateClosed
	c.drawing, c.scene = nil, nil
}
