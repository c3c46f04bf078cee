package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FinSignal/pkg/logger"
)

// ErrQueueFull is returned when the in-memory buffer has no room.
var ErrQueueFull = errors.New("queue full")

// MemoryQueue runs jobs in-process from a buffered channel. Retries are
// re-sent after a doubling RetryDelay; messages past RetryLimit are
// dropped with a log.
type MemoryQueue struct {
	logger    *logger.Logger
	config    QueueConfig
	jobs      registry
	mu        sync.RWMutex
	ch        chan Message
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
}

func NewMemoryQueue(lgr *logger.Logger, config QueueConfig) *MemoryQueue {
	config.normalize()
	return &MemoryQueue{
		logger: lgr,
		config: config,
		jobs:   make(registry),
		ch:     make(chan Message, config.QueueSize),
	}
}

func (q *MemoryQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.jobs.add(job) {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
	}
}

func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isRunning {
		return fmt.Errorf("queue already running")
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.isRunning = true
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return nil
}

func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	q.cancel()
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	running := q.isRunning
	_, known := q.jobs[msgType]
	q.mu.RUnlock()
	if !running {
		return fmt.Errorf("queue not running")
	}
	if !known {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}
	msg, err := newMessage(msgType, payload)
	if err != nil {
		return err
	}
	return q.offer(msg)
}

func (q *MemoryQueue) offer(msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case msg := <-q.ch:
			q.process(msg)
		}
	}
}

func (q *MemoryQueue) process(msg Message) {
	q.mu.RLock()
	job := q.jobs[msg.Type]
	q.mu.RUnlock()

	err := job.Handle(q.ctx, msg.Payload)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	q.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))
	if msg.Attempts >= q.config.RetryLimit {
		q.logger.Error("max retries reached", logger.String("id", msg.ID))
		return
	}
	msg.Attempts++
	time.AfterFunc(q.config.retryAfter(msg.Attempts), func() {
		if q.ctx.Err() != nil {
			return
		}
		if err := q.offer(msg); err != nil {
			q.logger.Warn("retry dropped", logger.String("id", msg.ID), logger.Error(err))
		}
	})
}
