package usecase

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	domrepo "FinSignal/internal/domain/repository"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
)

type handleStartKey struct{}

// NewConsumerHook times every handled message, counts handler failures
// and logs each failed attempt with its partition and offset.
func NewConsumerHook(m domrepo.Metrics, lgr *applogger.Logger) pkgkafka.HookFuncs {
	return pkgkafka.HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			return context.WithValue(ctx, handleStartKey{}, time.Now()), km, data, nil
		},
		After: func(ctx context.Context, _ string, _ kafka.Message, _ []byte, err error) {
			if start, ok := ctx.Value(handleStartKey{}).(time.Time); ok {
				m.RecordLatency("kafka_handle_seconds", time.Since(start).Seconds())
			}
			if err != nil {
				m.RecordError("consumer_handle")
			}
		},
		Err: func(_ context.Context, topic string, km kafka.Message, _ []byte, err error) {
			lgr.Warn("candle message failed, retrying",
				applogger.String("topic", topic),
				applogger.Int("partition", km.Partition),
				applogger.Int64("offset", km.Offset),
				applogger.Error(err))
		},
	}
}
