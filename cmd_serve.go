package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/api"
	"github.com/insightdelivered/statement-ledger/internal/ingest"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			promReg := prometheus.NewRegistry()
			promReg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			rec := metrics.New(promReg)

			svc := ingest.NewService(c.registry, ingest.WithMetrics(rec))
			h := api.NewHandler(svc,
				api.WithMetrics(rec, promReg),
				api.WithLogger(c.log),
				api.WithVersion(version),
			)
			app := api.NewApp(h, c.cfg.Server.BodyLimitMB)

			errCh := make(chan error, 1)
			go func() {
				c.log.Info().Str("addr", c.cfg.Server.Addr).Str("profiles", c.registry.Version()).Msg("listening")
				errCh <- app.Listen(c.cfg.Server.Addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				c.log.Info().Msg("shutting down")
				return app.Shutdown()
			}
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Int("body-limit-mb", 32, "maximum upload size in megabytes")
	_ = c.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = c.v.BindPFlag("server.body_limit_mb", cmd.Flags().Lookup("body-limit-mb"))
	return cmd
}
