package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"FinSignal/pkg/logger"
)

type scanPayload struct {
	Symbols []string `json:"symbols"`
}

type recordingJob struct {
	fails int32
	calls atomic.Int32
	got   chan *scanPayload
}

func (j *recordingJob) Name() string { return "recording" }
func (j *recordingJob) Type() string { return "scan" }

func (j *recordingJob) Handle(_ context.Context, payload json.RawMessage) error {
	n := j.calls.Add(1)
	if n <= j.fails {
		return errors.New("transient")
	}
	p, err := ParsePayload[scanPayload](payload)
	if err != nil {
		return err
	}
	j.got <- p
	return nil
}

func TestMemoryQueueDeliversAndRetries(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), QueueConfig{Workers: 2, RetryLimit: 2, RetryDelay: 10 * time.Millisecond})
	job := &recordingJob{fails: 1, got: make(chan *scanPayload, 1)}
	q.RegisterJob(job)
	if err := q.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer q.Stop(context.Background())

	if err := q.Enqueue(context.Background(), "scan", scanPayload{Symbols: []string{"XAUUSDT"}}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case p := <-job.got:
		if len(p.Symbols) != 1 || p.Symbols[0] != "XAUUSDT" {
			t.Fatalf("unexpected payload %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("job was not delivered")
	}
	if job.calls.Load() != 2 {
		t.Fatalf("expected one failure and one success, got %d calls", job.calls.Load())
	}
}

func TestMemoryQueueRejectsUnknownType(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), QueueConfig{})
	if err := q.Enqueue(context.Background(), "scan", nil); err == nil {
		t.Fatalf("expected error before start")
	}
	_ = q.Start()
	defer q.Stop(context.Background())
	if err := q.Enqueue(context.Background(), "other", nil); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestParsePayloadEmpty(t *testing.T) {
	p, err := ParsePayload[scanPayload](nil)
	if err != nil || p == nil || len(p.Symbols) != 0 {
		t.Fatalf("expected empty payload, got %+v %v", p, err)
	}
	if _, err := ParsePayload[scanPayload](json.RawMessage(`{"symbols":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRetryAfterDoubles(t *testing.T) {
	c := QueueConfig{RetryDelay: time.Second}
	cases := map[int]time.Duration{0: time.Second, 1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second, 9: 32 * time.Second}
	for attempts, want := range cases {
		if got := c.retryAfter(attempts); got != want {
			t.Fatalf("retryAfter(%d) = %v, want %v", attempts, got, want)
		}
	}
}
