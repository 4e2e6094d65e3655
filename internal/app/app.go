package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/five82/duetmon/internal/auth"
	"github.com/five82/duetmon/internal/config"
	"github.com/five82/duetmon/internal/duet"
	"github.com/five82/duetmon/internal/prefs"
	"github.com/five82/duetmon/internal/server"
	"github.com/five82/duetmon/internal/state"
	"github.com/five82/duetmon/internal/ui"
)

const shutdownTimeout = 5 * time.Second

// Options configure a duetmon run.
type Options struct {
	Config    config.Config
	PrefsPath string // empty uses default ~/.config/duetmon/prefs.toml
	Logger    *slog.Logger
	Version   string
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// NewClient builds a duet client from cfg, resolving the password through
// the environment, keyring and config file in that order.
func NewClient(cfg config.Config, logger *slog.Logger) *duet.Client {
	source, password := auth.ResolvePassword(cfg.Printer.Username, cfg.Printer.Host, cfg.Printer.Password)
	if logger != nil && cfg.Printer.Username != "" {
		logger.Debug("resolved printer credentials",
			slog.String("username", cfg.Printer.Username),
			slog.String("source", string(source)),
		)
	}

	opts := []duet.Option{}
	if logger != nil {
		opts = append(opts, duet.WithLogger(logger))
	}
	client := duet.NewClient(duet.Settings{
		APIKey:   cfg.Printer.APIKey,
		Host:     cfg.Printer.Host,
		Port:     cfg.Printer.Port,
		Username: cfg.Printer.Username,
		Password: password,
		PollPSU:  cfg.Printer.PollPSU,
	}, opts...)
	client.SetPrinterName(cfg.DisplayName())
	return client
}

// Run boots the status panel until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	logger := opts.logger()
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client := NewClient(opts.Config, logger)
	store := &state.Store{}
	poller := NewPoller(client, store, opts.Config.PollInterval, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Populate the store before the first frame.
	_ = poller.PollOnce(ctx)
	poller.StartAfter(ctx, calculateBackoff(store.Snapshot().ConsecutiveFailures, poller.interval))

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Refresh:   poller.Refresh,
		Host:      fmt.Sprintf("%s:%d", opts.Config.Printer.Host, opts.Config.Printer.Port),
		PollTick:  time.Second,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogFile:   opts.Config.Log.File,
	})
}

// Status polls the printer once and returns the resulting snapshot.
func Status(ctx context.Context, opts Options) (state.Snapshot, error) {
	client := NewClient(opts.Config, opts.logger())
	store := &state.Store{}
	err := NewPoller(client, store, opts.Config.PollInterval, opts.logger()).PollOnce(ctx)
	return store.Snapshot(), err
}

// Serve polls the printer in the background and serves the latest snapshot
// over HTTP until the context is cancelled.
func Serve(ctx context.Context, opts Options) error {
	logger := opts.logger()

	client := NewClient(opts.Config, logger)
	store := &state.Store{}
	poller := NewPoller(client, store, opts.Config.PollInterval, logger)
	poller.Start(ctx)

	srv := &http.Server{
		Addr:              opts.Config.Listen,
		Handler:           server.New(store, server.Options{Printer: opts.Config.DisplayName(), Version: opts.Version, Logger: logger}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving printer status", slog.String("listen", opts.Config.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", opts.Config.Listen, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
