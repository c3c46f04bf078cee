package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/features"
	pkgch "FinSignal/pkg/clickhouse"
	applogger "FinSignal/pkg/logger"
)

// candleChunk bounds the rows per multi-row INSERT.
const candleChunk = 2000

// CHCandleStore implements CandleStore backed by per-timeframe ClickHouse tables.
type CHCandleStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client, database string) *CHCandleStore {
	return &CHCandleStore{db: ch.DB(), database: database, l: applogger.Nop()}
}

var _ domrepo.CandleStore = (*CHCandleStore)(nil)

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHCandleStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	table, err := s.table(tf)
	if err != nil {
		return nil, err
	}
	from, to = features.AlignFromTo(from, to, tf)
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, volume
        FROM %s
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `, table)
	return s.query(ctx, "get_candles", table, tf, false, q, symbol, from, to)
}

// GetLatestNCandles returns the newest n candles, oldest first.
func (s *CHCandleStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	table, err := s.table(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, table)
	return s.query(ctx, "latest_candles", table, tf, true, q, symbol, n)
}

func (s *CHCandleStore) query(ctx context.Context, op, table string, tf domrepo.Timeframe, reverse bool, q string, args ...interface{}) ([]models.Candle, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse "+op+" query error", applogger.String("table", table), applogger.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 256)
	for rows.Next() {
		c := models.Candle{Timeframe: tf.String()}
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.l.Error("clickhouse "+op+" scan error", applogger.String("table", table), applogger.Error(err))
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if reverse {
		reverseCandles(out)
	}
	s.l.Debug("clickhouse "+op+" ok",
		applogger.String("table", table),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// StoreCandles inserts candles in chunks. Re-sent buckets are collapsed by
// the ReplacingMergeTree engine.
func (s *CHCandleStore) StoreCandles(ctx context.Context, tf domrepo.Timeframe, candles []models.Candle) error {
	table, err := s.table(tf)
	if err != nil {
		return err
	}
	for start := 0; start < len(candles); start += candleChunk {
		end := start + candleChunk
		if end > len(candles) {
			end = len(candles)
		}
		q, args := candleInsert(table, candles[start:end])
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert candles into %s: %w", table, err)
		}
	}
	return nil
}

func (s *CHCandleStore) table(tf domrepo.Timeframe) (string, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
	return s.database + "." + pkgch.CandleTable(tf.String()), nil
}

// candleInsert builds a multi-row INSERT, skipping rows without a symbol or time.
func candleInsert(table string, candles []models.Candle) (string, []interface{}) {
	values := make([]string, 0, len(candles))
	args := make([]interface{}, 0, len(candles)*7)
	for _, c := range candles {
		if c.Symbol == "" || c.Bucket.IsZero() {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, c.Symbol, c.Bucket.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, bucket, open, high, low, close, volume) VALUES %s", table, strings.Join(values, ","))
	return q, args
}

func reverseCandles(c []models.Candle) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}
