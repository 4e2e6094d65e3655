package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/duetmon/internal/app"
	"github.com/five82/duetmon/internal/duet"
	clierrors "github.com/five82/duetmon/internal/errors"
	"github.com/five82/duetmon/internal/output"
	"github.com/five82/duetmon/internal/server"
	"github.com/five82/duetmon/internal/state"
)

func newStatusCmd(c *cli) *cobra.Command {
	var jsonOutput, yamlOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Poll the printer once and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireConfig(); err != nil {
				return err
			}

			spin := c.out.Spinner("Polling " + c.cfg.DisplayName())
			structured := jsonOutput || yamlOutput
			if !structured {
				spin.Start()
			}
			snap, err := app.Status(cmd.Context(), app.Options{Config: c.cfg, Logger: c.logger, Version: version})
			spin.Stop()

			resp := server.NewStatusResponse(c.cfg.DisplayName(), snap)
			switch {
			case jsonOutput:
				if printErr := c.out.PrintJSON(resp); printErr != nil {
					return printErr
				}
			case yamlOutput:
				if printErr := c.out.PrintYAML(resp); printErr != nil {
					return printErr
				}
			case err == nil:
				printStatus(c.out, snap)
			}

			if err != nil {
				return clierrors.FromPoll(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Print the snapshot as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

// printStatus writes a human-readable summary of a successful poll.
func printStatus(out *output.Writer, snap state.Snapshot) {
	p := snap.Printer

	tone := output.ToneError
	switch p.Classification() {
	case duet.Printing:
		tone = output.ToneInfo
	case duet.Operational:
		tone = output.ToneSuccess
	}

	out.Field("Printer", p.PrinterName, output.ToneNone)
	out.Field("State", p.StateLabel()+" ("+p.Code().String()+")", tone)
	if p.IsPrinting() {
		out.Field("Progress", p.Completion()+"%", output.ToneNone)
		out.Field("Time left", seconds(p.TimeLeft()), output.ToneNone)
		out.Field("File", p.FileName, output.ToneNone)
	}
	out.Field("Tool", temps(p.ToolTemp, p.ToolTargetTemp), output.ToneNone)
	out.Field("Bed", temps(p.BedTemp, p.BedTargetTemp), output.ToneNone)
	out.Field("Updated", snap.LastUpdated.Format(time.TimeOnly), output.ToneMuted)
}

func temps(actual, target string) string {
	s := duet.ValueRounded(actual) + "°C"
	if target != "" {
		s += " / " + duet.ValueRounded(target) + "°C"
	}
	return s
}

func seconds(raw string) string {
	d, err := time.ParseDuration(raw + "s")
	if err != nil {
		return raw
	}
	return d.Round(time.Second).String()
}
