package usecase

import (
	"context"
	"encoding/json"
	"errors"

	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/queue"
)

// ScanJobType is the queue message type for on-demand scans.
const ScanJobType = "scan_symbols"

// ScanPayload is the queued request. Empty Symbols scans the configured set.
type ScanPayload struct {
	Symbols []string `json:"symbols"`
}

// ScanJob runs queued scan requests.
type ScanJob struct {
	scanner Scanner
	log     *applogger.Logger
}

func NewScanJob(scanner Scanner, lgr *applogger.Logger) *ScanJob {
	if lgr == nil {
		lgr = applogger.Nop()
	}
	return &ScanJob{scanner: scanner, log: lgr}
}

var _ queue.Job = (*ScanJob)(nil)

func (j *ScanJob) Name() string { return "signal-scan" }

func (j *ScanJob) Type() string { return ScanJobType }

// Handle runs the scan. A scan already in progress is not retried.
func (j *ScanJob) Handle(ctx context.Context, payload json.RawMessage) error {
	p, err := queue.ParsePayload[ScanPayload](payload)
	if err != nil {
		return err
	}
	res, err := j.scanner.ScanAll(ctx, p.Symbols)
	if errors.Is(err, ErrScanInProgress) {
		j.log.Info("queued scan dropped, scan in progress")
		return nil
	}
	if err != nil {
		return err
	}
	j.log.Info("queued scan done", applogger.Int("signals", len(res.Signals)))
	return nil
}
