package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scrolly/internal/server"
	"github.com/matzehuels/scrolly/pkg/chart"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the article over HTTP",
		Long: `Serve loads both datasets once and serves the article. Every browser gets
its own session; steps and viewport changes are applied on the server and
the figures are redrawn from there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the snapshot cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, err := c.loadDatasets(ctx, cfg, runner.Cache)
	if err != nil {
		return err
	}
	if err := data.Err(); err != nil {
		printWarning("Serving with a missing dataset: %s", err)
	}

	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		SessionTTL:   cfg.Server.SessionTTL.Std(),
		ReapInterval: cfg.Server.ReapInterval.Std(),
		Viewport:     chart.Size{Width: float64(cfg.Layout.Width), Height: float64(cfg.Layout.Height)},
		Debounce:     cfg.Layout.Debounce.Std(),
		Transitions:  cfg.Layout.Transitions.Std(),
	}, data, runner, c.Logger)

	printKeyValue("Address", cfg.Server.Addr)
	printKeyValue("Cache", cfg.Cache.Backend)
	printKeyValue("Sessions", "expire after "+cfg.Server.SessionTTL.String()+" idle")
	printNextStep("Open the article", browseURL(cfg.Server.Addr))
	return srv.Run(ctx)
}

// browseURL turns a listen address into a URL a local browser can open.
func browseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}
