package repository

import (
	"context"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/cache"
)

// CachedCandleSource memoizes GetLatestNCandles for a short TTL. Cache
// failures fall through to the wrapped source.
type CachedCandleSource struct {
	next domrepo.CandleSource
	c    cache.Service
	ttl  time.Duration
}

func NewCachedCandleSource(next domrepo.CandleSource, c cache.Service, ttl time.Duration) *CachedCandleSource {
	return &CachedCandleSource{next: next, c: c, ttl: ttl}
}

var _ domrepo.CandleSource = (*CachedCandleSource)(nil)

func (s *CachedCandleSource) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	if s.ttl <= 0 {
		return s.next.GetLatestNCandles(ctx, symbol, n, tf)
	}
	key := cache.GenerateKeyWithParams("candles", symbol, tf, n)
	var cached []models.Candle
	if err := s.c.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	candles, err := s.next.GetLatestNCandles(ctx, symbol, n, tf)
	if err != nil {
		return nil, err
	}
	_ = s.c.Set(ctx, key, candles, s.ttl)
	return candles, nil
}
