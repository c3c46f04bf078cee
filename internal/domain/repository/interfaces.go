package repository

import (
	"context"
	"errors"
	"time"

	"FinSignal/internal/domain/models"
)

// ErrNoSignals is returned when no scan result has been stored yet.
var ErrNoSignals = errors.New("no signals stored")

// CandleSource supplies oldest-first candle series.
type CandleSource interface {
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}

// CandleStore is a CandleSource that can also accept new candles.
type CandleStore interface {
	CandleSource
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	StoreCandles(ctx context.Context, tf Timeframe, candles []models.Candle) error
}

// SignalStore keeps the history of emitted signals and their snapshots.
type SignalStore interface {
	Init(ctx context.Context) error
	StoreSignal(ctx context.Context, s *models.Signal) error
	StoreSnapshots(ctx context.Context, snaps []models.Snapshot) error
	QuerySignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher pushes signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	PublishBatch(ctx context.Context, signals []*models.Signal) error
	Close() error
}

// LatestSignals holds the result of the most recent scan.
type LatestSignals interface {
	Save(ctx context.Context, signals []models.Signal) error
	Load(ctx context.Context) ([]models.Signal, error)
}

// Broadcaster fans a signal out to live subscribers.
type Broadcaster interface {
	Broadcast(s models.Signal)
}

type Metrics interface {
	RecordScan(status string)
	RecordOutcome(symbol string, reason models.NoSignalReason)
	RecordSignal(symbol string, side models.Side, score, entry float64)
	RecordSizingFallback(symbol string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
