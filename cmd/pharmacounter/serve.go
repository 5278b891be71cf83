package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pharmacounter/internal/adapters/httpapi"
	"pharmacounter/internal/core"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and rotate health reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			prom, err := core.NewPrometheusMetricsRecorder(reg)
			if err != nil {
				return err
			}
			metrics := core.MultiMetrics{prom, core.NewExpvarMetricsRecorder("pharmacounter")}
			catalog, err := a.open(cmd, core.WithMetrics(metrics))
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			srv := httpapi.NewServer(addr, httpapi.RouterConfig{Log: a.log, Catalog: catalog, Gatherer: reg})

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				a.log.Info("http server listening", "addr", addr)
				return srv.Run(ctx)
			})
			g.Go(func() error {
				catalog.Reminders.Run(ctx)
				return nil
			})
			err = g.Wait()
			a.log.Info("shutting down")
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http.addr from config)")
	return cmd
}
