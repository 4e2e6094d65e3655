package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/duetmon/internal/duet"
	"github.com/five82/duetmon/internal/state"
)

const (
	defaultPollInterval = 10 * time.Second
	maxBackoff          = 60 * time.Second
)

// Poller owns a duet.Client and refreshes the store at a fixed cadence.
// After failed cycles the next poll is delayed (see calculateBackoff); the
// failed request itself is never retried.
type Poller struct {
	client   *duet.Client
	store    *state.Store
	interval time.Duration
	logger   *slog.Logger
	refresh  chan struct{}
}

// NewPoller returns a poller for client. A non-positive interval uses the
// default of 10 seconds.
func NewPoller(client *duet.Client, store *state.Store, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{
		client:   client,
		store:    store,
		interval: interval,
		logger:   logger,
		refresh:  make(chan struct{}, 1),
	}
}

// Start launches the poll loop in a background goroutine. It returns
// immediately.
func (p *Poller) Start(ctx context.Context) {
	go p.Run(ctx)
}

// StartAfter is Start with the first cycle delayed, for callers that have
// already run PollOnce.
func (p *Poller) StartAfter(ctx context.Context, delay time.Duration) {
	go p.run(ctx, delay)
}

// Run polls until ctx is cancelled. The first cycle runs immediately.
func (p *Poller) Run(ctx context.Context) {
	p.run(ctx, 0)
}

func (p *Poller) run(ctx context.Context, first time.Duration) {
	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-p.refresh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		_ = p.PollOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		failures := p.store.Snapshot().ConsecutiveFailures
		wait := calculateBackoff(failures, p.interval)
		if failures > 0 {
			p.logger.Debug("delaying next poll", slog.Int("failures", failures), slog.Duration("wait", wait))
		}
		timer.Reset(wait)
	}
}

// Refresh asks the running loop to poll now. Extra requests made while one
// is pending are dropped.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// PollOnce runs a single poll cycle and records the outcome in the store.
// It must not be called concurrently with Run.
func (p *Poller) PollOnce(ctx context.Context) error {
	status, err := p.client.GetPrinterJobResults(ctx)
	if err == nil && p.client.PollsPSU() {
		p.client.GetPrinterPsuState(ctx)
		status = p.client.Status()
	}

	p.store.Update(&status, err)
	if err != nil {
		p.logger.Warn("printer poll failed",
			slog.String("printer", p.client.PrinterName()),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
