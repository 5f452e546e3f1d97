// Package pipeline renders one-off chart snapshots.
//
// A snapshot is a chart loaded, painted at a fixed size and restyled to a
// single step. The same path serves `scrolly render` and the server's
// stateless SVG endpoint, so both produce identical bytes and share the
// artifact cache.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, lifeexp.FromSource(src, dataset.Options{}), pipeline.Options{
//	    Step:    "asia",
//	    Width:   800,
//	    Height:  500,
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrolly/pkg/cache"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/errors"
)

// Defaults shared by the CLI and the server.
const (
	DefaultWidth  = 960.0
	DefaultHeight = 600.0
	DefaultTTL    = 24 * time.Hour
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// Options configures a snapshot.
type Options struct {
	Step        string        `json:"step,omitempty"`
	Width       float64       `json:"width,omitempty"`
	Height      float64       `json:"height,omitempty"`
	Formats     []string      `json:"formats,omitempty"`
	Transitions time.Duration `json:"transitions,omitempty"`

	// Standalone prepends the XML declaration to SVG output.
	Standalone bool `json:"standalone,omitempty"`

	// DataHash identifies the loaded data. Snapshots are only cached when
	// it is set, since the chart name alone does not pin the data.
	DataHash string `json:"data_hash,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result is a rendered snapshot.
type Result struct {
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	Elements   int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo reports whether the artifacts came from the cache.
type CacheInfo struct {
	RenderHit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks opts against def and fills in defaults.
func (o *Options) Validate(def chart.Definition) error {
	if def.Load == nil {
		return errors.New(errors.ErrCodeUnknownChart, "chart %q has no loader", def.Name)
	}
	if o.Step != "" && !def.HasStep(o.Step) {
		return errors.New(errors.ErrCodeUnknownStep, "chart %q has no step %q", def.Name, o.Step)
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size must not be negative, got %vx%v", o.Width, o.Height)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// Size returns the container size.
func (o *Options) Size() chart.Size {
	return chart.Size{Width: o.Width, Height: o.Height}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Step:        o.Step,
		Width:       o.Width,
		Height:      o.Height,
		DataHash:    o.DataHash,
		Transitions: o.Transitions,
		Standalone:  o.Standalone,
	}
}

func (o *Options) String() string {
	step := o.Step
	if step == "" {
		step = "(none)"
	}
	return fmt.Sprintf("step=%s size=%vx%v", step, o.Width, o.Height)
}
