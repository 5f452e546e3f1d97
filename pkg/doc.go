// Package pkg provides the libraries behind the Scrolly article.
//
// # Overview
//
// Scrolly is a two-chart scrollytelling article: a bar chart of life
// expectancy by country and a line chart of regional housing prices. Each
// narrative section the reader scrolls past triggers a step that restyles
// one chart. The pkg directory is organized into four areas:
//
//  1. [scene], [scale], [category] - the retained element tree, scales and key normalization
//  2. [chart] - chart lifecycle, steps and debounced resize, with the lifeexp and housing charts
//  3. [dataset], [article] - CSV loading and the narrative that ties sections to charts
//  4. [pipeline], [session], [cache], [config] - snapshot rendering, reader sessions and infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	CSV file / URL / bundled data
//	         ↓
//	    [dataset] package (parse rows, apply the malformed-row policy)
//	         ↓
//	    [chart] package (load → paint → layout, steps restyle the scene)
//	         ↓
//	    [scene] package (element tree → SVG)
//	         ↓
//	    [article] page (HTML) / [pipeline] snapshot (SVG, JSON)
//
// # Quick Start
//
// Render a chart at one step:
//
//	src, _ := dataset.ParseSource("embed:" + data.Countries)
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, lifeexp.FromSource(src, dataset.Options{}), pipeline.Options{
//	    Step:    lifeexp.StepAsia,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// Drive a whole page:
//
//	page, _ := article.StaticDatasets(countries, prices).NewPage(chart.Size{Width: 960, Height: 600})
//	page.Mount(ctx)
//	_ = page.Trigger("highlight-bar")
//	svg, _ := page.Charts()[1].SVG()
package pkg
