package di

import (
	"errors"

	"FinSignal/internal/domain/repository"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
)

// Scanner is the dependency set of the one-shot scan command.
type Scanner struct {
	Scanner    *usecase.SignalScanner
	Store      repository.SignalStore
	Publisher  repository.SignalPublisher
	Cache      cache.Service
	ClickHouse *pkgch.Client
}

// Close releases every client opened by InitializeScanner.
func (s *Scanner) Close() error {
	var errs []error
	if s.Publisher != nil {
		errs = append(errs, s.Publisher.Close())
	}
	if s.Store != nil {
		errs = append(errs, s.Store.Close())
	}
	if s.Cache != nil {
		errs = append(errs, s.Cache.Close())
	}
	if s.ClickHouse != nil {
		errs = append(errs, s.ClickHouse.Close())
	}
	return errors.Join(errs...)
}
