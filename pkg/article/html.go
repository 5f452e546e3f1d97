package article

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/matzehuels/scrolly/pkg/buildinfo"
)

var (
	//go:embed assets/page.html.tmpl
	pageSource string

	//go:embed assets/scroll.js
	scrollScript string

	pageTemplate = template.Must(template.New("page").Parse(pageSource))
)

// PageData is the input to [RenderHTML].
type PageData struct {
	Title     string
	SessionID string
	Version   string
	Charts    []ChartView
	Script    template.JS
}

// ChartView is one chart with its narrative. SVG is empty when the chart
// failed to load.
type ChartView struct {
	Name     string
	Title    string
	State    string
	SVG      template.HTML
	Sections []Section
}

// Data snapshots the page for rendering. sessionID is embedded so the
// page script can report steps and viewport changes back; leave it empty
// for a static page.
func (p *Page) Data(sessionID string) PageData {
	d := PageData{
		Title:     Title,
		SessionID: sessionID,
		Version:   buildinfo.Version,
	}
	if sessionID != "" {
		d.Script = template.JS(scrollScript)
	}
	for _, c := range p.charts {
		v := ChartView{
			Name:  c.Name(),
			Title: c.Definition().Title,
			State: c.State().String(),
		}
		if svg, ok := c.SVG(); ok {
			v.SVG = template.HTML(svg)
		}
		for _, s := range p.sections {
			if s.Chart == c.Name() {
				v.Sections = append(v.Sections, s)
			}
		}
		d.Charts = append(d.Charts, v)
	}
	return d
}

// RenderHTML writes the article page.
func RenderHTML(w io.Writer, data PageData) error {
	return pageTemplate.Execute(w, data)
}
