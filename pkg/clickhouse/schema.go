package clickhouse

import "fmt"

// CandleTable returns the table holding candles of one timeframe.
func CandleTable(tf string) string {
	return "candles_" + tf
}

// Schema returns idempotent DDL for the candle, signal and indicator tables.
func Schema(database string, timeframes []string) []string {
	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)}
	for _, tf := range timeframes {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	symbol LowCardinality(String),
	bucket DateTime64(3, 'UTC'),
	open Float64,
	high Float64,
	low Float64,
	close Float64,
	volume Float64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, bucket)`, database, CandleTable(tf)))
	}
	stmts = append(stmts,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.trading_signals (
	symbol LowCardinality(String),
	side LowCardinality(String),
	entry Float64,
	take_profit Float64,
	stop_loss Float64,
	trailing_stop Float64,
	liquidation Float64,
	quantity Float64,
	margin Float64,
	trend LowCardinality(String),
	bb_direction LowCardinality(String),
	score Float64,
	sizing_fallback UInt8,
	ts DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (symbol, ts)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.technical_indicators (
	symbol LowCardinality(String),
	timeframe LowCardinality(String),
	ts DateTime64(3, 'UTC'),
	candles UInt32,
	close Float64,
	volume Float64,
	ema_fast Nullable(Float64),
	ema_slow Nullable(Float64),
	sma_mid Nullable(Float64),
	rsi Nullable(Float64),
	macd Nullable(Float64),
	bb_upper Nullable(Float64),
	bb_mid Nullable(Float64),
	bb_lower Nullable(Float64),
	atr Nullable(Float64)
) ENGINE = MergeTree
ORDER BY (symbol, timeframe, ts)`, database),
	)
	return stmts
}
