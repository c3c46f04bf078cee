package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SourceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finsignal",
			Subsystem: "source",
			Name:      "fetch_seconds",
			Help:      "Latency of candle fetches by source and timeframe",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source", "timeframe"},
	)

	SourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "source",
			Name:      "errors_total",
			Help:      "Candle fetch errors by source",
		},
		[]string{"source"},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "finsignal",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected websocket clients",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SourceLatency, SourceErrors, WSClients)
	})
}
