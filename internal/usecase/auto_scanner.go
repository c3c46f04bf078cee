package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	applogger "FinSignal/pkg/logger"
)

// Scanner is the part of SignalScanner driven by schedulers and jobs.
type Scanner interface {
	ScanAll(ctx context.Context, symbols []string) (*ScanResult, error)
}

// AutoScanner runs a scan every interval. The first scan happens one
// interval after Start.
type AutoScanner struct {
	scanner  Scanner
	interval time.Duration
	log      *applogger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAutoScanner(scanner Scanner, interval time.Duration, lgr *applogger.Logger) *AutoScanner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if lgr == nil {
		lgr = applogger.Nop()
	}
	return &AutoScanner{scanner: scanner, interval: interval, log: lgr}
}

// Start launches the scan loop. Calling Start twice is a no-op.
func (a *AutoScanner) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go a.loop(ctx)
	a.log.Info("auto scanner started", applogger.Duration("interval", a.interval))
}

// Stop cancels the loop and waits for an in-flight scan to return.
func (a *AutoScanner) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (a *AutoScanner) loop(ctx context.Context) {
	defer close(a.done)
	t := time.NewTicker(a.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.tick(ctx)
		}
	}
}

func (a *AutoScanner) tick(ctx context.Context) {
	_, err := a.scanner.ScanAll(ctx, nil)
	switch {
	case err == nil:
	case errors.Is(err, ErrScanInProgress):
		a.log.Info("scan skipped, previous scan still running")
	case ctx.Err() != nil:
	default:
		a.log.Error("auto scan failed", applogger.Error(err))
	}
}
