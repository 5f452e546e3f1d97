package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/errors"
	"github.com/matzehuels/scrolly/pkg/scene"
)

// Summary is the JSON snapshot: every data-bound element with its
// current colours, in document order.
type Summary struct {
	Chart    string  `json:"chart"`
	Step     string  `json:"step,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Elements int     `json:"elements"`
	Marks    []Mark  `json:"marks"`
}

// Mark is one data-bound element.
type Mark struct {
	Kind   string `json:"kind"`
	Key    string `json:"key"`
	Fill   string `json:"fill,omitempty"`
	Stroke string `json:"stroke,omitempty"`
}

// Render serializes a rendered chart in the requested formats.
func Render(c *chart.Chart, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			var svgOpts []scene.SVGOption
			if opts.Standalone {
				svgOpts = append(svgOpts, scene.WithStandalone())
			}
			var ok bool
			if data, ok = c.SVG(svgOpts...); !ok {
				err = errors.New(errors.ErrCodeNotRendered, "chart %q is %s", c.Name(), c.State())
			}
		case FormatJSON:
			data, err = renderSummary(c, opts)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderSummary(c *chart.Chart, opts Options) ([]byte, error) {
	sum := Summary{
		Chart:  c.Name(),
		Step:   opts.Step,
		Width:  opts.Width,
		Height: opts.Height,
		Marks:  []Mark{},
	}
	ok := c.View(func(s *scene.Scene) {
		sum.Elements = s.Len()
		s.Root().Walk(func(e *scene.Element) bool {
			if e.Key != "" {
				sum.Marks = append(sum.Marks, Mark{
					Kind:   string(e.Kind),
					Key:    e.Key,
					Fill:   e.Attr("fill"),
					Stroke: e.Attr("stroke"),
				})
			}
			return true
		})
	})
	if !ok {
		return nil, errors.New(errors.ErrCodeNotRendered, "chart %q is %s", c.Name(), c.State())
	}
	return json.MarshalIndent(sum, "", "  ")
}
