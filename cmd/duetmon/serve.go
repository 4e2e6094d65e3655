package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/duetmon/internal/app"
	clierrors "github.com/five82/duetmon/internal/errors"
)

func newServeCmd(c *cli) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll in the background and serve the status as JSON",
		Long: `Poll the printer every poll.interval and serve the latest status:

  GET /api/status   snapshot as JSON (503 until the first poll)
  GET /health       liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireConfig(); err != nil {
				return err
			}
			cfg := c.cfg
			if listen != "" {
				cfg.Listen = listen
			}
			c.out.Info("Serving %s on http://%s", cfg.DisplayName(), cfg.Listen)
			if err := app.Serve(cmd.Context(), app.Options{Config: cfg, Logger: c.logger, Version: version}); err != nil {
				return clierrors.Wrap(clierrors.ExitNetwork, "Server failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")
	return cmd
}
