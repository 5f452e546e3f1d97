package article

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/matzehuels/scrolly/data"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/chart/housing"
	"github.com/matzehuels/scrolly/pkg/chart/lifeexp"
	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/errors"
)

var viewport = chart.Size{Width: 800, Height: 500}

func bundled(t *testing.T) *Datasets {
	t.Helper()
	d := LoadDatasets(context.Background(),
		dataset.FSSource{FS: data.FS, Name: data.Countries},
		dataset.FSSource{FS: data.FS, Name: data.Housing},
		dataset.Options{})
	if err := d.Err(); err != nil {
		t.Fatal(err)
	}
	return d
}

func mountPage(t *testing.T, d *Datasets) *Page {
	t.Helper()
	p, err := d.NewPage(viewport, chart.WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	p.Mount(context.Background())
	t.Cleanup(p.Close)
	return p
}

func TestNarrativeIsValid(t *testing.T) {
	defs := StaticDatasets(nil, nil).Definitions()
	if err := Validate(Narrative(), defs); err != nil {
		t.Fatal(err)
	}

	steps := 0
	for _, d := range defs {
		steps += len(d.Steps)
	}
	if len(Narrative()) != steps {
		t.Errorf("narrative covers %d steps, charts define %d", len(Narrative()), steps)
	}
}

func TestValidate(t *testing.T) {
	defs := StaticDatasets(nil, nil).Definitions()
	tests := []struct {
		name     string
		sections []Section
		code     errors.Code
	}{
		{"unknown chart", []Section{{Step: "asia", Chart: "pie"}}, errors.ErrCodeUnknownChart},
		{"step of other chart", []Section{{Step: housing.StepAllLines, Chart: lifeexp.Name}}, errors.ErrCodeUnknownStep},
		{"duplicate", []Section{{Step: "asia", Chart: lifeexp.Name}, {Step: "asia", Chart: lifeexp.Name}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.sections, defs); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestTriggerRoutesToOwner(t *testing.T) {
	p := mountPage(t, bundled(t))

	if err := p.Trigger(lifeexp.StepAfrica); err != nil {
		t.Fatal(err)
	}
	if err := p.Trigger(housing.StepHighlightBar); err != nil {
		t.Fatal(err)
	}

	life, _ := p.Chart(lifeexp.Name)
	prices, _ := p.Chart(housing.Name)
	if life.Active() != lifeexp.StepAfrica || prices.Active() != housing.StepHighlightBar {
		t.Errorf("active = %q / %q", life.Active(), prices.Active())
	}
	if p.Active() != housing.StepHighlightBar {
		t.Errorf("page active = %q", p.Active())
	}

	if err := p.Trigger("nope"); !errors.Is(err, errors.ErrCodeUnknownStep) {
		t.Errorf("unknown step: err = %v", err)
	}
	if _, err := p.Chart("pie"); !errors.Is(err, errors.ErrCodeUnknownChart) {
		t.Errorf("unknown chart: err = %v", err)
	}
}

func TestResizeRelaysOutEveryChart(t *testing.T) {
	p := mountPage(t, bundled(t))
	p.Resize(chart.Size{Width: 1000, Height: 700})

	for _, c := range p.Charts() {
		svg, _ := c.SVG()
		if !strings.Contains(string(svg), `width="1000" height="700"`) {
			t.Errorf("%s not resized", c.Name())
		}
	}
}

func TestFailedChartDoesNotAffectOther(t *testing.T) {
	broken := dataset.FSSource{FS: fstest.MapFS{}, Name: "missing.csv"}
	d := LoadDatasets(context.Background(), broken, dataset.FSSource{FS: data.FS, Name: data.Housing}, dataset.Options{})
	if !errors.Is(d.Err(), errors.ErrCodeLoadFailed) {
		t.Fatalf("Err = %v", d.Err())
	}
	p := mountPage(t, d)

	life, _ := p.Chart(lifeexp.Name)
	prices, _ := p.Chart(housing.Name)
	if life.State() != chart.StateFailed || prices.State() != chart.StateRendered {
		t.Errorf("states = %v / %v", life.State(), prices.State())
	}
	if err := p.Trigger(lifeexp.StepAsia); err != nil {
		t.Errorf("step on failed chart: %v", err)
	}

	var buf bytes.Buffer
	if err := RenderHTML(&buf, p.Data("")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "is unavailable") {
		t.Error("failed chart not reported on the page")
	}
}

func TestRenderHTML(t *testing.T) {
	p := mountPage(t, bundled(t))

	var buf bytes.Buffer
	if err := RenderHTML(&buf, p.Data("abc-123")); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`data-session="abc-123"`,
		`id="figure-lifeexp"`,
		`id="figure-housing"`,
		`<div class="step" id="highlight-bar" data-step="highlight-bar" data-chart="housing">`,
		`class="price-line us"`,
		`IntersectionObserver`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}

	buf.Reset()
	_ = RenderHTML(&buf, p.Data(""))
	if strings.Contains(buf.String(), "IntersectionObserver") {
		t.Error("static page should not carry the session script")
	}
}
