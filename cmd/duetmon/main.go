// Package main is the entry point for the duetmon CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/duetmon/internal/config"
	clierrors "github.com/five82/duetmon/internal/errors"
	"github.com/five82/duetmon/internal/observability"
	"github.com/five82/duetmon/internal/output"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := output.Default()
	root := newRootCmd(out)
	if err := root.ExecuteContext(ctx); err != nil {
		return handleError(out, err)
	}
	return clierrors.ExitSuccess
}

// handleError prints err and returns the exit code for it.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.As(err, &cliErr) {
		out.Failure("%s", cliErr.Message)
		if cliErr.Hint != "" {
			out.Info("%s", cliErr.Hint)
		}
		return cliErr.Code
	}

	errStr := err.Error()
	if strings.HasPrefix(errStr, "unknown command") {
		out.Failure("%s", errStr)
		out.Info("Run 'duetmon --help' for usage")
		return clierrors.ExitUsage
	}

	out.Failure("%s", errStr)
	return clierrors.ExitGeneral
}

// cli carries what PersistentPreRunE resolved to the subcommands.
type cli struct {
	out    *output.Writer
	cfg    config.Config
	logger *slog.Logger

	configPath string
	envFile    string
	prefsPath  string
	logLevel   string
	logFormat  string
	logFile    string
	logStderr  bool
	noColor    bool
}

func newRootCmd(out *output.Writer) *cobra.Command {
	c := &cli{out: out, logger: slog.New(slog.DiscardHandler)}

	rootCmd := &cobra.Command{
		Use:   "duetmon",
		Short: "Monitor a Duet (RepRapFirmware) 3D printer",
		Long: `duetmon polls a Duet board over its HTTP status API and shows the
machine state, job progress and temperatures.

  duetmon               Open the status panel
  duetmon status        Poll once and print the result
  duetmon serve         Serve the latest status as JSON
  duetmon login         Store the board password in the OS keyring`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanel(cmd, c)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Config file (default ~/.config/duetmon/config.toml)")
	flags.StringVar(&c.envFile, "env-file", ".env", "Dotenv file with DUETMON_* overrides")
	flags.StringVar(&c.prefsPath, "prefs", "", "Preferences file (default ~/.config/duetmon/prefs.toml)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: error, warn, info, debug")
	flags.StringVar(&c.logFormat, "log-format", "", "Log format: json, text")
	flags.StringVar(&c.logFile, "log-file", "", "Structured log file path")
	flags.BoolVar(&c.logStderr, "log-stderr", false, "Also log to stderr (ignored by the status panel)")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&out.Quiet, "quiet", "q", false, "Minimal output")

	rootCmd.SuggestionsMinimumDistance = 2
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &clierrors.CLIError{
			Message: err.Error(),
			Hint:    fmt.Sprintf("Run '%s --help' for available flags", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	})

	rootCmd.AddCommand(newPanelCmd(c))
	rootCmd.AddCommand(newStatusCmd(c))
	rootCmd.AddCommand(newServeCmd(c))
	rootCmd.AddCommand(newLoginCmd(c))
	rootCmd.AddCommand(newLogoutCmd(c))

	return rootCmd
}

// setup loads configuration and builds the logger and tracer for cmd.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.noColor {
		c.out.SetNoColor()
	}

	if err := config.LoadEnvFile(c.envFile); err != nil {
		return clierrors.Wrap(clierrors.ExitConfig, "Cannot read env file", err)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return clierrors.Wrap(clierrors.ExitConfig, "Cannot load configuration", err).
			WithHint("Check the TOML syntax of " + displayPath(c.configPath))
	}
	c.cfg = cfg

	logCfg := observability.Config{
		Level:       pick(c.logLevel, cfg.Log.Level),
		Format:      pick(c.logFormat, cfg.Log.Format),
		LogFile:     pick(c.logFile, cfg.Log.File),
		Stderr:      c.logStderr && !isPanel(cmd),
		SessionID:   observability.NewSessionID(),
		CommandPath: cmd.CommandPath(),
		Version:     version,
	}
	logger, cleanup, err := observability.NewLogger(&logCfg)
	if err != nil {
		return &clierrors.CLIError{
			Message: fmt.Sprintf("Invalid logging configuration: %v", err),
			Hint:    "Use --log-level (error|warn|info|debug) and --log-format (json|text)",
			Code:    clierrors.ExitUsage,
		}
	}
	c.logger = logger
	c.cfg.Log = config.Log{Level: logCfg.Level, Format: logCfg.Format, File: logCfg.LogFile}
	slog.SetDefault(logger)

	ctx := observability.WithLogger(cmd.Context(), logger)
	ctx = c.out.WithContext(ctx)
	cmd.SetContext(ctx)

	shutdown, err := observability.SetupTelemetry(ctx, &observability.TelemetryConfig{
		Enabled:     observability.IsTelemetryEnabled(),
		Version:     version,
		PrinterHost: cfg.Printer.Host,
	})
	if err != nil {
		logger.Warn("telemetry initialization failed", slog.String("error", err.Error()))
	}

	cmd.PostRunE = chainPostRun(cmd.PostRunE, func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
		return cleanup()
	})
	return nil
}

// requireConfig validates the settings needed to talk to the printer.
func (c *cli) requireConfig() error {
	if err := c.cfg.Validate(); err != nil {
		return clierrors.ConfigInvalid(err)
	}
	return nil
}

func chainPostRun(postRun func(*cobra.Command, []string) error, cleanup func() error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if postRun != nil {
			if err := postRun(cmd, args); err != nil {
				_ = cleanup()
				return err
			}
		}
		if err := cleanup(); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		return nil
	}
}

func isPanel(cmd *cobra.Command) bool {
	return cmd.Name() == "panel" || !cmd.HasParent()
}

func pick(flagValue, configured string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return configured
}

func displayPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return config.DefaultPath()
	}
	return path
}
