package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pkgkafka "FinSignal/pkg/kafka"
	"FinSignal/pkg/util"
)

// KafkaCandlesHandler consumes closed candles from Kafka and writes them
// to the candle store.
type KafkaCandlesHandler struct {
	topic   string
	store   domrepo.CandleStore
	metrics domrepo.Metrics
}

func NewKafkaCandlesHandler(topic string, store domrepo.CandleStore, metrics domrepo.Metrics) *KafkaCandlesHandler {
	return &KafkaCandlesHandler{topic: topic, store: store, metrics: metrics}
}

var _ pkgkafka.MessageHandler = (*KafkaCandlesHandler)(nil)

func (h *KafkaCandlesHandler) Topic() string { return h.topic }

// candleMessage is one closed bar; t is epoch seconds, epoch milliseconds
// or an RFC3339 string.
type candleMessage struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	T         json.RawMessage `json:"t"`
	O         float64         `json:"o"`
	H         float64         `json:"h"`
	L         float64         `json:"l"`
	C         float64         `json:"c"`
	V         float64         `json:"v"`
}

// Handle accepts a single candle object or an array of them. All candles in
// one message are validated before anything is stored.
func (h *KafkaCandlesHandler) Handle(ctx context.Context, b []byte) error {
	var msgs []candleMessage
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &msgs); err != nil {
			h.metrics.RecordError("consumer_unmarshal")
			return fmt.Errorf("decode candles: %w", err)
		}
	} else {
		var m candleMessage
		if err := json.Unmarshal(b, &m); err != nil {
			h.metrics.RecordError("consumer_unmarshal")
			return fmt.Errorf("decode candle: %w", err)
		}
		msgs = append(msgs, m)
	}

	byTF := make(map[domrepo.Timeframe][]models.Candle, 1)
	for i, m := range msgs {
		c, tf, err := m.candle()
		if err != nil {
			h.metrics.RecordError("consumer_invalid")
			return fmt.Errorf("candle %d: %w", i, err)
		}
		byTF[tf] = append(byTF[tf], c)
	}

	for tf, candles := range byTF {
		start := time.Now()
		err := h.store.StoreCandles(ctx, tf, candles)
		h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
		if err != nil {
			h.metrics.RecordError("consumer_store")
			return err
		}
	}
	return nil
}

func (m candleMessage) candle() (models.Candle, domrepo.Timeframe, error) {
	tf, ok := domrepo.ParseTimeframe(m.Timeframe)
	if !ok {
		return models.Candle{}, "", fmt.Errorf("unknown timeframe %q", m.Timeframe)
	}
	if m.Symbol == "" {
		return models.Candle{}, "", fmt.Errorf("symbol required")
	}
	ts, ok := util.ParseTime(strings.Trim(string(m.T), `"`))
	if !ok {
		return models.Candle{}, "", fmt.Errorf("time required")
	}
	return models.Candle{
		Bucket:    ts.UTC(),
		Symbol:    m.Symbol,
		Timeframe: tf.String(),
		Open:      m.O,
		High:      m.H,
		Low:       m.L,
		Close:     m.C,
		Volume:    m.V,
	}, tf, nil
}
