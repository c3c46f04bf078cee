package repository

import (
	"context"
	"errors"
	"fmt"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/cache"
)

// LatestSignalsKey is the cache key holding the last scan result.
const LatestSignalsKey = "signals:latest"

// CacheLatestStore keeps the last scan result in a cache.Service without expiry.
type CacheLatestStore struct {
	c cache.Service
}

func NewCacheLatestStore(c cache.Service) *CacheLatestStore {
	return &CacheLatestStore{c: c}
}

var _ domrepo.LatestSignals = (*CacheLatestStore)(nil)

// Save replaces the stored list. A nil slice is stored as an empty list.
func (s *CacheLatestStore) Save(ctx context.Context, signals []models.Signal) error {
	if signals == nil {
		signals = []models.Signal{}
	}
	if err := s.c.Set(ctx, LatestSignalsKey, signals, 0); err != nil {
		return fmt.Errorf("save latest signals: %w", err)
	}
	return nil
}

// Load returns ErrNoSignals until the first Save.
func (s *CacheLatestStore) Load(ctx context.Context) ([]models.Signal, error) {
	var out []models.Signal
	if err := s.c.Get(ctx, LatestSignalsKey, &out); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, domrepo.ErrNoSignals
		}
		return nil, fmt.Errorf("load latest signals: %w", err)
	}
	if out == nil {
		out = []models.Signal{}
	}
	return out, nil
}
