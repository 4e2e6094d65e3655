package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/duetmon/internal/app"
)

func newPanelCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Open the status panel (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanel(cmd, c)
		},
	}
}

func runPanel(cmd *cobra.Command, c *cli) error {
	if err := c.requireConfig(); err != nil {
		return err
	}
	return app.Run(cmd.Context(), app.Options{
		Config:    c.cfg,
		PrefsPath: c.prefsPath,
		Logger:    c.logger,
		Version:   version,
	})
}
