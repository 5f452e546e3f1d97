package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scrolly/pkg/article"
	"github.com/matzehuels/scrolly/pkg/buildinfo"
	"github.com/matzehuels/scrolly/pkg/cache"
	"github.com/matzehuels/scrolly/pkg/config"
	"github.com/matzehuels/scrolly/pkg/dataset"
	"github.com/matzehuels/scrolly/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "scrolly"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Scrolly renders a scroll-driven data article",
		Long:         `Scrolly renders a two-chart scrollytelling article: a life expectancy bar chart and a regional housing price chart whose highlights change as the reader scrolls.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			registerHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.stepsCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig reads --config, or returns the defaults when it is unset.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(c.configPath)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped by
// version so a new build never reads snapshots drawn by an older one.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, newKeyer(), c.Logger)
	if cfg.Cache.TTL > 0 {
		r.TTL = cfg.Cache.TTL.Std()
	}
	return r, nil
}

func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
}

// newCache opens the configured backend. A file cache whose directory
// cannot be resolved falls back to no caching.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, err
		}
		return cache.Observed(rc), nil
	case config.CacheFile:
		dir, err := cfg.CacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Observed(fc), nil
	default:
		return cache.NewNullCache(), nil
	}
}

// =============================================================================
// Datasets
// =============================================================================

// loadDatasets resolves the configured locations and loads both datasets.
// Remote sources go through store so repeated runs fetch them once.
func (c *CLI) loadDatasets(ctx context.Context, cfg *config.Config, store cache.Cache) (*article.Datasets, error) {
	countries, err := dataset.ParseSource(cfg.Data.Countries)
	if err != nil {
		return nil, err
	}
	prices, err := dataset.ParseSource(cfg.Data.Housing)
	if err != nil {
		return nil, err
	}
	keyer, ttl := newKeyer(), cfg.Cache.TTL.Std()
	countries = dataset.Cached(countries, store, keyer, ttl)
	prices = dataset.Cached(prices, store, keyer, ttl)

	prog := newProgress(c.Logger)
	data := article.LoadDatasets(ctx, countries, prices, dataset.Options{
		Malformed: cfg.Policy(),
		Logger:    c.Logger,
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	prog.done("Loaded datasets")
	return data, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
