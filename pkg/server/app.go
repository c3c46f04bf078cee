package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FinSignal/internal/domain/repository"
	"FinSignal/internal/handler/ws"
	svcmetrics "FinSignal/internal/service/metrics"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	xhttp "FinSignal/pkg/http"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/queue"
)

const (
	initTimeout   = 10 * time.Second
	sweepInterval = time.Minute
)

// Components are the long-lived parts the App starts and stops. Optional
// parts (AutoScanner, Consumer, CandleHandler, ClickHouse) may be nil.
type Components struct {
	Config        *config.Config
	Logger        *applogger.Logger
	HTTP          *xhttp.Server
	Hub           *ws.Hub
	Queue         queue.Queue
	ScanJob       *usecase.ScanJob
	AutoScanner   *usecase.AutoScanner
	Consumer      *pkgkafka.Consumer
	CandleHandler *usecase.KafkaCandlesHandler
	Limiter       *ratelimit.Limiter
	SignalStore   repository.SignalStore
	Publisher     repository.SignalPublisher
	Cache         cache.Service
	ClickHouse    *pkgch.Client
}

// App encapsulates the entire application lifecycle.
type App struct {
	Components
	log    *applogger.Logger
	cancel context.CancelFunc
}

func New(c Components) *App {
	l := c.Logger
	if l == nil {
		l = applogger.Nop()
	}
	return &App{Components: c, log: l}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	a.log.Info("shutdown signal received")

	timeout := a.Config.Server.ShutdownTimeout
	if a.HTTP != nil {
		timeout = a.HTTP.ShutdownTimeout()
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()
	return a.Shutdown(shutdownCtx)
}

// Start prepares storage and launches every background component.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if a.SignalStore != nil {
		initCtx, cancel := context.WithTimeout(ctx, initTimeout)
		err := a.SignalStore.Init(initCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("init signal store: %w", err)
		}
	}

	if a.Config.Metrics.Enabled {
		svcmetrics.Register()
	}

	if a.Queue != nil && a.ScanJob != nil {
		a.Queue.RegisterJob(a.ScanJob)
		if err := a.Queue.Start(); err != nil {
			return fmt.Errorf("start queue: %w", err)
		}
		a.log.Info("job queue started", applogger.String("job", a.ScanJob.Name()))
	}

	if a.Consumer != nil && a.CandleHandler != nil {
		a.Consumer.RegisterHandler(a.CandleHandler)
		if err := a.Consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.CandleHandler.Topic()))
	}

	if a.HTTP != nil {
		if err := a.HTTP.Start(); err != nil {
			return fmt.Errorf("start http server: %w", err)
		}
	}

	if a.AutoScanner != nil {
		a.AutoScanner.Start(ctx)
	}

	if a.Limiter != nil {
		go a.sweep(ctx)
	}

	a.log.Info("app started",
		applogger.Strings("symbols", a.Config.Scanner.Symbols),
		applogger.String("source", a.Config.Source.Type),
	)
	return nil
}

func (a *App) sweep(ctx context.Context) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := a.Limiter.Sweep()
			a.log.Debug("rate limiter swept", applogger.Int("buckets", n))
		}
	}
}

// Shutdown stops producers of work first, then closes infrastructure clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")
	if a.cancel != nil {
		a.cancel()
	}

	if a.AutoScanner != nil {
		a.AutoScanner.Stop()
	}

	if a.HTTP != nil {
		if err := a.HTTP.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.Hub != nil {
		a.Hub.Close()
	}

	if a.Consumer != nil {
		if err := a.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.Queue != nil {
		if err := a.Queue.Stop(ctx); err != nil {
			a.log.Warn("queue stop error", applogger.Error(err))
		}
	}

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.SignalStore != nil {
		if err := a.SignalStore.Close(); err != nil {
			a.log.Warn("signal store close error", applogger.Error(err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.ClickHouse != nil {
		if err := a.ClickHouse.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return a.log.Close()
}
