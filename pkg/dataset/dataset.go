// Package dataset loads the chart datasets from CSV.
//
// Columns are located by header name, case-insensitively, so column order
// does not matter and extra columns are ignored. Records come back in file
// order. A load either returns every accepted record or fails with a
// LOAD_FAILED error; there is no partial result.
//
// Numeric and date fields that do not parse are handled according to
// [Options.Malformed]:
//
//   - [PolicyDrop] skips the row and counts it in [LoadReport.Dropped]
//   - [PolicyKeep] keeps the row with NaN (or the zero time) in the field
//   - [PolicyFail] fails the whole load
//
// Continent and region values with no letters are always malformed. They
// fail the load under [PolicyFail] and are dropped otherwise. Two distinct
// names that collapse to the same category key fail every load.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrolly/pkg/category"
	"github.com/matzehuels/scrolly/pkg/errors"
)

// MonthLayout parses the housing dataset's month column, e.g. "November-16".
const MonthLayout = "January-06"

// Country is one row of the life expectancy dataset.
type Country struct {
	Country        string  `json:"country"`
	Continent      string  `json:"continent"`
	LifeExpectancy float64 `json:"life_expectancy"`
	GDPPerCapita   float64 `json:"gdp_per_capita"`
}

// HousingPrice is one row of the housing dataset.
type HousingPrice struct {
	Region string    `json:"region"`
	Month  string    `json:"month"`
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
}

// Policy decides what happens to rows with unparseable fields.
type Policy string

const (
	PolicyDrop Policy = "drop"
	PolicyKeep Policy = "keep"
	PolicyFail Policy = "fail"
)

// ParsePolicy validates a policy name. The empty string means PolicyDrop.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyDrop, nil
	case PolicyDrop, PolicyKeep, PolicyFail:
		return p, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown malformed-row policy %q (want drop, keep or fail)", s)
}

// Options configures a load.
type Options struct {
	Malformed Policy
	Logger    *log.Logger
}

// LoadReport summarizes a load.
type LoadReport struct {
	Rows    int `json:"rows"`
	Dropped int `json:"dropped"`
}

// LoadCountries reads the life expectancy dataset
// (country, continent, life_expectancy, gdp_per_capita).
func LoadCountries(ctx context.Context, src Source, opts Options) ([]Country, LoadReport, error) {
	var out []Country
	report, err := load(ctx, src, opts, []string{"country", "continent", "life_expectancy", "gdp_per_capita"},
		func(r row) error {
			c := Country{Country: r.str("country")}
			var err error
			if c.Continent, err = r.category("continent"); err != nil {
				return err
			}
			if c.LifeExpectancy, err = r.num("life_expectancy"); err != nil {
				return err
			}
			if c.GDPPerCapita, err = r.num("gdp_per_capita"); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	if err != nil {
		return nil, LoadReport{}, err
	}

	continents := make([]string, len(out))
	for i, c := range out {
		continents[i] = c.Continent
	}
	if _, err := category.Keys(continents); err != nil {
		return nil, LoadReport{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "load %s", src)
	}
	return out, report, nil
}

// LoadHousing reads the housing dataset (region, month, price).
func LoadHousing(ctx context.Context, src Source, opts Options) ([]HousingPrice, LoadReport, error) {
	var out []HousingPrice
	report, err := load(ctx, src, opts, []string{"region", "month", "price"},
		func(r row) error {
			h := HousingPrice{Month: r.str("month")}
			var err error
			if h.Region, err = r.category("region"); err != nil {
				return err
			}
			if h.Date, err = r.month("month"); err != nil {
				return err
			}
			if h.Price, err = r.num("price"); err != nil {
				return err
			}
			out = append(out, h)
			return nil
		})
	if err != nil {
		return nil, LoadReport{}, err
	}

	regions := make([]string, len(out))
	for i, h := range out {
		regions[i] = h.Region
	}
	if _, err := category.Keys(regions); err != nil {
		return nil, LoadReport{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "load %s", src)
	}
	return out, report, nil
}

var errNoKey = errors.New(errors.ErrCodeInvalidInput, "no letters to derive a key from")

// fieldError marks a field that failed to parse.
type fieldError struct {
	column string
	value  string
	err    error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("column %s: cannot parse %q", e.column, e.value)
}

func (e *fieldError) Unwrap() error { return e.err }

type row struct {
	cols   map[string]int
	fields []string
	keep   bool
}

func (r row) str(col string) string {
	return strings.TrimSpace(r.fields[r.cols[col]])
}

// category returns a grouping field. A value with no letters cannot be
// keyed, so it is malformed under every policy but never kept.
func (r row) category(col string) (string, error) {
	s := r.str(col)
	if category.Key(s) == "" {
		return "", &fieldError{column: col, value: s, err: errNoKey}
	}
	return s, nil
}

func (r row) num(col string) (float64, error) {
	s := r.str(col)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if r.keep {
			return math.NaN(), nil
		}
		return 0, &fieldError{column: col, value: s, err: err}
	}
	return v, nil
}

func (r row) month(col string) (time.Time, error) {
	s := r.str(col)
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		if r.keep {
			return time.Time{}, nil
		}
		return time.Time{}, &fieldError{column: col, value: s, err: err}
	}
	return t, nil
}

func load(ctx context.Context, src Source, opts Options, required []string, accept func(row) error) (LoadReport, error) {
	policy := opts.Malformed
	if policy == "" {
		policy = PolicyDrop
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if src == nil {
		return LoadReport{}, errors.New(errors.ErrCodeLoadFailed, "no dataset source")
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return LoadReport{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "open %s", src)
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return LoadReport{}, errors.New(errors.ErrCodeLoadFailed, "%s: empty document", src)
	}
	if err != nil {
		return LoadReport{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "read header of %s", src)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return LoadReport{}, errors.New(errors.ErrCodeLoadFailed, "%s: missing column(s) %s", src, strings.Join(missing, ", "))
	}
	width := 0
	for _, c := range required {
		width = max(width, cols[c]+1)
	}

	var report LoadReport
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return LoadReport{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "load %s", src)
		}
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return LoadReport{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "read %s", src)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) < width {
			if policy == PolicyFail {
				return LoadReport{}, errors.New(errors.ErrCodeLoadFailed, "%s:%d: expected %d fields, got %d", src, line, width, len(fields))
			}
			report.Dropped++
			continue
		}

		if err := accept(row{cols: cols, fields: fields, keep: policy == PolicyKeep}); err != nil {
			if policy == PolicyFail {
				return LoadReport{}, errors.Wrap(errors.ErrCodeLoadFailed, err, "%s:%d", src, line)
			}
			report.Dropped++
			logger.Debug("dropped malformed row", "source", src.String(), "line", line, "err", err)
			continue
		}
		report.Rows++
	}

	if report.Dropped > 0 {
		logger.Warn("dropped malformed rows", "source", src.String(), "dropped", report.Dropped, "kept", report.Rows)
	}
	return report, nil
}
