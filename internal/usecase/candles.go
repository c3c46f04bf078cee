package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

const (
	defaultCandleLimit = 200
	maxCandleLimit     = 1000
)

// ErrSymbolRequired is returned when a candle query names no instrument.
var ErrSymbolRequired = errors.New("symbol required")

// CandlesUseCase serves raw candles from the configured source.
type CandlesUseCase struct {
	source domrepo.CandleSource
}

func NewCandlesUseCase(source domrepo.CandleSource) *CandlesUseCase {
	return &CandlesUseCase{source: source}
}

// GetCandlesParams selects the most recent Limit candles. An empty or
// unknown Timeframe reads as 1h and Limit is clamped to [1, 1000].
type GetCandlesParams struct {
	Symbol    string
	Timeframe domrepo.Timeframe
	Limit     int
}

type GetCandlesResult struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	Count     int             `json:"count"`
	From      *time.Time      `json:"from,omitempty"`
	To        *time.Time      `json:"to,omitempty"`
	Candles   []models.Candle `json:"candles"`
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	tf := domrepo.NormalizeTimeframe(string(p.Timeframe))
	limit := p.Limit
	switch {
	case limit <= 0:
		limit = defaultCandleLimit
	case limit > maxCandleLimit:
		limit = maxCandleLimit
	}

	candles, err := uc.source.GetLatestNCandles(ctx, symbol, limit, tf)
	if err != nil {
		return nil, fmt.Errorf("get candles %s %s: %w", symbol, tf, err)
	}
	res := &GetCandlesResult{
		Symbol:    symbol,
		Timeframe: tf.String(),
		Count:     len(candles),
		Candles:   candles,
	}
	if len(candles) == 0 {
		res.Candles = []models.Candle{}
		return res, nil
	}
	from, to := candles[0].Bucket, candles[len(candles)-1].Bucket
	res.From, res.To = &from, &to
	return res, nil
}
