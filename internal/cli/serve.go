package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/respimg/internal/server"
	"github.com/matzehuels/respimg/pkg/cache"
	"github.com/matzehuels/respimg/pkg/observability"
	"github.com/matzehuels/respimg/pkg/observability/prom"
	"github.com/matzehuels/respimg/pkg/plugin"
)

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	sections  []string
	addr      string
	redisAddr string
	site      string
	noCache   bool
	noMetrics bool
	debug     bool
}

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which runs the HTTP preview service.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sections and sizes over HTTP",
		Long: `Run an HTTP service that computes sizes attributes for the given sections.

Routes:
  GET  /healthz          liveness probe
  GET  /version          build information
  GET  /sections         all registered sections
  GET  /sections/{id}    one section
  POST /sizes            {"section": "...", "sizes": "..., 1024px"} -> {"sizes": "..."}
  GET  /metrics          Prometheus metrics

Generated expressions are cached in the file cache, or in Redis with --redis
(default from ` + redisAddrEnv + `).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.sections, "sections", "s", nil, "section definition file (repeatable)")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", os.Getenv(redisAddrEnv), "Redis address for the sizes cache")
	cmd.Flags().StringVar(&opts.site, "site", "", "scope cache keys to a site when several share one Redis")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not cache generated expressions")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not expose /metrics")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "log section diagnostics")
	_ = cmd.MarkFlagRequired("sections")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	var metrics http.Handler
	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec := prom.New(reg)
		observability.SetSectionHooks(rec)
		observability.SetCacheHooks(rec)
		observability.SetHTTPHooks(rec)
		defer observability.Reset()
		metrics = prom.Handler(reg)
	}

	store, err := c.newCache(ctx, cacheOptions{noCache: opts.noCache, redisAddr: opts.redisAddr})
	if err != nil {
		return err
	}
	defer store.Close()

	popts := plugin.Options{Cache: store, Debug: opts.debug}
	if opts.site != "" {
		popts.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), "site:"+opts.site+":")
	}
	p, err := c.loadPlugin(ctx, opts.sections, popts)
	if err != nil {
		return err
	}
	if !p.Subscribed() {
		c.Logger.Warn("no valid sections registered, sizes pass through unchanged")
	}

	srv := server.New(server.Config{Addr: opts.addr, Plugin: p, Logger: c.Logger, Metrics: metrics})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
