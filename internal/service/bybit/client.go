// Package bybit fetches klines from the Bybit v5 public REST API.
package bybit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"FinSignal/internal/domain/models"
	drepo "FinSignal/internal/domain/repository"
	svcmetrics "FinSignal/internal/service/metrics"
	apphttp "FinSignal/pkg/http"
	"FinSignal/pkg/util"
)

// maxLimit is the largest page the kline endpoint serves.
const maxLimit = 1000

const sourceName = "bybit"

// Config holds client settings.
type Config struct {
	BaseURL  string
	Category string
	Timeout  time.Duration
	Rate     float64
	Burst    int

	// Retries is how many times a 429/5xx or transport failure is repeated.
	Retries      int
	RetryBackoff time.Duration
}

// Client implements CandleSource against /v5/market/kline.
type Client struct {
	cfg     Config
	http    *apphttp.Client
	limiter *rate.Limiter
}

// New creates a Bybit kline client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.bybit.com"
	}
	if cfg.Category == "" {
		cfg.Category = "linear"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}
	return &Client{
		cfg:     cfg,
		http: apphttp.NewClient(
			apphttp.WithTimeout(cfg.Timeout),
			apphttp.WithRetry(cfg.Retries, cfg.RetryBackoff),
		),
		limiter: lim,
	}
}

var _ drepo.CandleSource = (*Client)(nil)

type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	} `json:"result"`
}

// GetLatestNCandles returns up to n most recent candles, oldest first.
func (c *Client) GetLatestNCandles(ctx context.Context, symbol string, n int, tf drepo.Timeframe) ([]models.Candle, error) {
	if !drepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("unsupported timeframe %q", tf)
	}
	if n <= 0 {
		return []models.Candle{}, nil
	}
	if n > maxLimit {
		n = maxLimit
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("bybit rate limit: %w", err)
	}

	start := time.Now()
	var resp klineResponse
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    strings.TrimRight(c.cfg.BaseURL, "/") + "/v5/market/kline",
		QueryParams: map[string][]string{
			"category": {c.cfg.Category},
			"symbol":   {symbol},
			"interval": {tf.BybitInterval()},
			"limit":    {strconv.Itoa(n)},
		},
	}, &resp)
	svcmetrics.SourceLatency.WithLabelValues(sourceName, tf.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		svcmetrics.SourceErrors.WithLabelValues(sourceName).Inc()
		return nil, fmt.Errorf("bybit kline %s %s: %w", symbol, tf, err)
	}
	if resp.RetCode != 0 {
		svcmetrics.SourceErrors.WithLabelValues(sourceName).Inc()
		return nil, fmt.Errorf("bybit kline %s %s: retCode=%d %s", symbol, tf, resp.RetCode, resp.RetMsg)
	}

	candles, err := parseKlines(symbol, tf, resp.Result.List)
	if err != nil {
		svcmetrics.SourceErrors.WithLabelValues(sourceName).Inc()
		return nil, fmt.Errorf("bybit kline %s %s: %w", symbol, tf, err)
	}
	return candles, nil
}

// parseKlines converts the newest-first kline rows into an oldest-first
// series. Each row is [startMs, open, high, low, close, volume, turnover].
func parseKlines(symbol string, tf drepo.Timeframe, rows [][]string) ([]models.Candle, error) {
	out := make([]models.Candle, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("row %d: expected at least 6 fields, got %d", i, len(row))
		}
		bucket, err := util.ParseUnixMillis(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		var vals [5]float64
		for j, name := range []string{"open", "high", "low", "close", "volume"} {
			if vals[j], err = util.ParseFloat(name, row[j+1]); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		out[len(rows)-1-i] = models.Candle{
			Bucket:    bucket,
			Symbol:    symbol,
			Timeframe: tf.String(),
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		}
	}
	return out, nil
}
