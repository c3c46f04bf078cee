package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pkgch "FinSignal/pkg/clickhouse"
)

// CHSignalStore persists signals to trading_signals and snapshots to
// technical_indicators.
type CHSignalStore struct {
	ch       *pkgch.Client
	db       *sql.DB
	database string
	schema   []string
}

// NewCHSignalStore creates the store; schema is run by Init.
func NewCHSignalStore(ch *pkgch.Client, database string, timeframes []string) *CHSignalStore {
	return &CHSignalStore{
		ch:       ch,
		db:       ch.DB(),
		database: database,
		schema:   pkgch.Schema(database, timeframes),
	}
}

var _ domrepo.SignalStore = (*CHSignalStore)(nil)

func (s *CHSignalStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, s.schema)
}

func (s *CHSignalStore) StoreSignal(ctx context.Context, sig *models.Signal) error {
	if sig == nil {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s.trading_signals
        (symbol, side, entry, take_profit, stop_loss, trailing_stop, liquidation, quantity, margin, trend, bb_direction, score, sizing_fallback, ts)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.database)
	_, err := s.db.ExecContext(ctx, q, signalArgs(sig)...)
	if err != nil {
		return fmt.Errorf("insert signal %s: %w", sig.Symbol, err)
	}
	return nil
}

func (s *CHSignalStore) StoreSnapshots(ctx context.Context, snaps []models.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	values := make([]string, 0, len(snaps))
	args := make([]interface{}, 0, len(snaps)*15)
	for _, sn := range snaps {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, snapshotArgs(sn)...)
	}
	q := fmt.Sprintf(`INSERT INTO %s.technical_indicators
        (symbol, timeframe, ts, candles, close, volume, ema_fast, ema_slow, sma_mid, rsi, macd, bb_upper, bb_mid, bb_lower, atr)
        VALUES %s`, s.database, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert snapshots: %w", err)
	}
	return nil
}

// QuerySignals returns the newest signals first. An empty symbol matches all.
func (s *CHSignalStore) QuerySignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	where, args := "", []interface{}{}
	if symbol != "" {
		where = "WHERE symbol = ?"
		args = append(args, symbol)
	}
	args = append(args, limit)
	q := fmt.Sprintf(`
        SELECT symbol, side, entry, take_profit, stop_loss, trailing_stop, liquidation, quantity, margin, trend, bb_direction, score, sizing_fallback, ts
        FROM %s.trading_signals
        %s
        ORDER BY ts DESC
        LIMIT ?
    `, s.database, where)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.Signal, 0, limit)
	for rows.Next() {
		var (
			sig      models.Signal
			side     string
			fallback uint8
		)
		if err := rows.Scan(&sig.Symbol, &side, &sig.Entry, &sig.TakeProfit, &sig.StopLoss, &sig.TrailingStop,
			&sig.Liquidation, &sig.Quantity, &sig.Margin, &sig.Trend, &sig.BBDirection, &sig.Score, &fallback, &sig.Timestamp); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Side = models.Side(side)
		sig.SizingFallback = fallback == 1
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *CHSignalStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close is a no-op; the connection pool is owned by pkg/clickhouse.
func (s *CHSignalStore) Close() error { return nil }

func signalArgs(sig *models.Signal) []interface{} {
	var fallback uint8
	if sig.SizingFallback {
		fallback = 1
	}
	return []interface{}{
		sig.Symbol, string(sig.Side), sig.Entry, sig.TakeProfit, sig.StopLoss, sig.TrailingStop,
		sig.Liquidation, sig.Quantity, sig.Margin, sig.Trend, sig.BBDirection, sig.Score, fallback, sig.Timestamp.UTC(),
	}
}

func snapshotArgs(sn models.Snapshot) []interface{} {
	return []interface{}{
		sn.Symbol, sn.Timeframe, sn.Timestamp.UTC(), uint32(sn.Candles), sn.Close, sn.Volume,
		sn.EMAFast, sn.EMASlow, sn.SMAMid, sn.RSI, sn.MACD, sn.BBUpper, sn.BBMid, sn.BBLower, sn.ATR,
	}
}
