package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/chart/housing"
	"github.com/matzehuels/scrolly/pkg/chart/lifeexp"
	"github.com/matzehuels/scrolly/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	step        string   // step applied before rendering; empty keeps the painted state
	allSteps    bool     // one snapshot per step
	output      string   // output file (single snapshot) or base path
	formats     []string // "svg", "json"
	width       float64  // container width in pixels; 0 uses the config
	height      float64  // container height in pixels; 0 uses the config
	transitions bool     // emit CSS transitions in SVG output
	noCache     bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <chart>",
		Short: "Render a chart snapshot to SVG or JSON",
		Long: `Render loads a chart's dataset, applies a step and writes the result.

Charts: lifeexp, housing. Run "scrolly steps" for the step ids.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"lifeexp", "housing"},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			if opts.allSteps && opts.step != "" {
				return fmt.Errorf("--step and --all-steps are mutually exclusive")
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.step, "step", "s", "", "step to apply before rendering")
	cmd.Flags().BoolVar(&opts.allSteps, "all-steps", false, "render one snapshot per step")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single snapshot) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "container width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "container height (default from config)")
	cmd.Flags().BoolVar(&opts.transitions, "transitions", false, "include CSS transitions in SVG output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	_ = cmd.RegisterFlagCompletionFunc("step", completeStep)

	return cmd
}

// completeStep offers the step ids of the chart named in args[0].
func completeStep(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var steps []chart.StepInfo
	switch args[0] {
	case lifeexp.Name:
		steps = lifeexp.Steps()
	case housing.Name:
		steps = housing.Steps()
	}
	var out []string
	for _, s := range steps {
		if strings.HasPrefix(s.ID, toComplete) {
			out = append(out, s.ID+"\t"+s.Description)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) runRender(ctx context.Context, name string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.width == 0 {
		opts.width = float64(cfg.Layout.Width)
	}
	if opts.height == 0 {
		opts.height = float64(cfg.Layout.Height)
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Loading datasets...")
	spin.Start()
	data, err := c.loadDatasets(ctx, cfg, runner.Cache)
	if err != nil {
		spin.StopWithError("Could not load datasets")
		return err
	}
	spin.Stop()

	def, err := data.Definition(name)
	if err != nil {
		return err
	}

	steps := []string{opts.step}
	if opts.allSteps {
		steps = steps[:0]
		for _, st := range def.Steps {
			steps = append(steps, st.ID)
		}
	}

	multi := len(steps)*len(opts.formats) > 1
	for _, step := range steps {
		popts := pipeline.Options{
			Step:       step,
			Width:      opts.width,
			Height:     opts.height,
			Formats:    opts.formats,
			Standalone: true,
			DataHash:   data.Hash(name),
		}
		if opts.transitions {
			popts.Transitions = cfg.Layout.Transitions.Std()
		}

		res, err := runner.Execute(ctx, def, popts)
		if err != nil {
			return err
		}
		logger.Debugf("Rendered %s %s in %s", name, popts.String(), res.Stats.LoadTime+res.Stats.RenderTime)

		for _, format := range opts.formats {
			path := outputPath(opts.output, name, step, format, multi)
			if err := writeArtifact(path, res.Artifacts[format]); err != nil {
				return err
			}
			printFile(path)
		}
		printStats(res.Stats.Elements, res.CacheInfo.RenderHit)
	}
	return nil
}

// outputPath names a snapshot file. A single snapshot is written to output
// as given; several share output (minus any format extension) as a base
// and append the step and format.
func outputPath(output, name, step, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}

	base := output
	if base == "" {
		base = name
	} else if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	if step != "" {
		base += "-" + step
	}
	return base + "." + format
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
