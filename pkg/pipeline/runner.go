package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrolly/pkg/cache"
	"github.com/matzehuels/scrolly/pkg/chart"
)

// Runner renders snapshots with artifact caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Execute loads def, applies opts.Step and renders every requested format.
// A load failure is returned as the chart's LOAD_FAILED error.
func (r *Runner) Execute(ctx context.Context, def chart.Definition, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(def); err != nil {
		return nil, err
	}

	if artifacts, ok := r.cached(ctx, def.Name, opts); ok {
		opts.Logger.Debug("snapshot cache hit", "chart", def.Name, "opts", opts.String())
		return &Result{Artifacts: artifacts, CacheInfo: CacheInfo{RenderHit: true}}, nil
	}

	result := &Result{}

	loadStart := time.Now()
	c := chart.New(def, chart.Fixed(opts.Size()),
		chart.WithLogger(opts.Logger),
		chart.WithDebounce(0),
		chart.WithTransitions(opts.Transitions))
	defer c.Close()

	c.Mount(ctx)
	if err := c.Err(); err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)

	if opts.Step != "" {
		if err := c.Trigger(opts.Step); err != nil {
			return nil, err
		}
	}

	renderStart := time.Now()
	artifacts, err := Render(c, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.Elements = c.Elements()
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Debug("rendered snapshot",
		"chart", def.Name,
		"opts", opts.String(),
		"elements", result.Stats.Elements,
		"duration", result.Stats.LoadTime+result.Stats.RenderTime)

	if opts.DataHash != "" {
		for format, data := range artifacts {
			_ = r.Cache.Set(ctx, r.Keyer.ArtifactKey(def.Name, opts.ArtifactKeyOpts(format)), data, r.TTL)
		}
	}
	return result, nil
}

func (r *Runner) cached(ctx context.Context, name string, opts Options) (map[string][]byte, bool) {
	if opts.DataHash == "" {
		return nil, false
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(name, opts.ArtifactKeyOpts(format)))
		if err != nil || !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
