package repository

import (
	"context"
	"sync"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

// MemorySignalStore keeps a bounded signal history in process. It is used
// when ClickHouse is disabled.
type MemorySignalStore struct {
	mu      sync.RWMutex
	max     int
	signals []models.Signal
	snaps   []models.Snapshot
}

func NewMemorySignalStore(max int) *MemorySignalStore {
	if max <= 0 {
		max = 1000
	}
	return &MemorySignalStore{max: max}
}

var _ domrepo.SignalStore = (*MemorySignalStore)(nil)

func (s *MemorySignalStore) Init(context.Context) error { return nil }

func (s *MemorySignalStore) StoreSignal(_ context.Context, sig *models.Signal) error {
	if sig == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, *sig)
	if over := len(s.signals) - s.max; over > 0 {
		s.signals = append([]models.Signal(nil), s.signals[over:]...)
	}
	return nil
}

func (s *MemorySignalStore) StoreSnapshots(_ context.Context, snaps []models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snaps...)
	if over := len(s.snaps) - s.max; over > 0 {
		s.snaps = append([]models.Snapshot(nil), s.snaps[over:]...)
	}
	return nil
}

// QuerySignals returns the newest signals first. An empty symbol matches all.
func (s *MemorySignalStore) QuerySignals(_ context.Context, symbol string, limit int) ([]models.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Signal, 0, limit)
	for i := len(s.signals) - 1; i >= 0 && len(out) < limit; i-- {
		if symbol == "" || s.signals[i].Symbol == symbol {
			out = append(out, s.signals[i])
		}
	}
	return out, nil
}

func (s *MemorySignalStore) Health(context.Context) error { return nil }

func (s *MemorySignalStore) Close() error { return nil }
