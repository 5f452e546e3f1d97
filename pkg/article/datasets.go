package article

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/scrolly/pkg/cache"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/chart/housing"
	"github.com/matzehuels/scrolly/pkg/chart/lifeexp"
	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/errors"
)

func errNoSource(chartName string) error {
	return errors.New(errors.ErrCodeLoadFailed, "no data source for chart %q", chartName)
}

// Datasets holds both datasets, loaded once and shared read-only by every
// page built from it.
type Datasets struct {
	countriesSrc string
	countries    []dataset.Country
	countriesErr error

	housingSrc string
	housing    []dataset.HousingPrice
	housingErr error

	hashes map[string]string
}

// LoadDatasets loads both sources concurrently. A failed load is kept and
// surfaces when a page mounts the chart that needs it; it never stops the
// other load.
func LoadDatasets(ctx context.Context, countries, prices dataset.Source, opts dataset.Options) *Datasets {
	d := &Datasets{}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var g errgroup.Group
	g.Go(func() error {
		if countries == nil {
			d.countriesErr = errNoSource(lifeexp.Name)
			return nil
		}
		start := time.Now()
		d.countriesSrc = countries.String()
		rows, report, err := dataset.LoadCountries(ctx, countries, opts)
		d.countries, d.countriesErr = rows, err
		if err != nil {
			logger.Warn("dataset unavailable", "chart", lifeexp.Name, "source", d.countriesSrc, "err", err)
		} else {
			logger.Info("dataset loaded", "source", d.countriesSrc, "rows", report.Rows, "dropped", report.Dropped, "took", time.Since(start).Round(time.Millisecond))
		}
		return nil
	})
	g.Go(func() error {
		if prices == nil {
			d.housingErr = errNoSource(housing.Name)
			return nil
		}
		start := time.Now()
		d.housingSrc = prices.String()
		rows, report, err := dataset.LoadHousing(ctx, prices, opts)
		d.housing, d.housingErr = rows, err
		if err != nil {
			logger.Warn("dataset unavailable", "chart", housing.Name, "source", d.housingSrc, "err", err)
		} else {
			logger.Info("dataset loaded", "source", d.housingSrc, "rows", report.Rows, "dropped", report.Dropped, "took", time.Since(start).Round(time.Millisecond))
		}
		return nil
	})
	_ = g.Wait()
	d.hash()
	return d
}

func (d *Datasets) hash() {
	d.hashes = make(map[string]string, 2)
	if d.countriesErr == nil {
		d.hashes[lifeexp.Name] = cache.Hash(fmt.Appendf(nil, "%v", d.countries))
	}
	if d.housingErr == nil {
		d.hashes[housing.Name] = cache.Hash(fmt.Appendf(nil, "%v", d.housing))
	}
}

// Hash identifies the data behind chart, for cache keys. It is empty when
// the chart's dataset failed to load.
func (d *Datasets) Hash(chartName string) string { return d.hashes[chartName] }

// Definition returns the definition of one chart.
func (d *Datasets) Definition(name string) (chart.Definition, error) {
	for _, def := range d.Definitions() {
		if def.Name == name {
			return def, nil
		}
	}
	return chart.Definition{}, errors.New(errors.ErrCodeUnknownChart, "unknown chart %q", name)
}

// Err returns the first load failure, or nil.
func (d *Datasets) Err() error {
	if d.countriesErr != nil {
		return d.countriesErr
	}
	return d.housingErr
}

// Definitions returns the chart definitions in page order. A chart whose
// dataset failed to load fails on mount with the original error.
func (d *Datasets) Definitions() []chart.Definition {
	life := lifeexp.Definition(func(context.Context) ([]dataset.Country, error) {
		return d.countries, d.countriesErr
	})
	life.Source = d.countriesSrc

	prices := housing.Definition(func(context.Context) ([]dataset.HousingPrice, error) {
		return d.housing, d.housingErr
	})
	prices.Source = d.housingSrc

	return []chart.Definition{life, prices}
}

// NewPage builds a page over the default narrative.
func (d *Datasets) NewPage(viewport chart.Size, opts ...chart.Option) (*Page, error) {
	return NewPage(Narrative(), d.Definitions(), viewport, opts...)
}

// StaticDatasets wraps rows already in memory.
func StaticDatasets(countries []dataset.Country, prices []dataset.HousingPrice) *Datasets {
	d := &Datasets{
		countriesSrc: "memory",
		countries:    countries,
		housingSrc:   "memory",
		housing:      prices,
	}
	d.hash()
	return d
}
