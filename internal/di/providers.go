package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"FinSignal/internal/domain/repository"
	"FinSignal/internal/handler/api"
	"FinSignal/internal/handler/ws"
	internalrepo "FinSignal/internal/repository"
	"FinSignal/internal/service/bybit"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/internal/services/analysis"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	xhttp "FinSignal/pkg/http"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/metrics"
	"FinSignal/pkg/queue"
	"FinSignal/pkg/server"
)

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideAnalysisConfig maps the YAML analysis section onto the engine
// config. Unset values are defaulted by analysis.NewEngine.
func ProvideAnalysisConfig(cfg *config.Config) analysis.Config {
	a := cfg.Analysis
	out := analysis.Config{
		MaxBars:    a.MaxBars,
		MinHistory: a.MinHistory,
		Periods: analysis.Periods{
			EMAFast:  a.Periods.EMAFast,
			EMASlow:  a.Periods.EMASlow,
			SMAMid:   a.Periods.SMAMid,
			RSI:      a.Periods.RSI,
			BB:       a.Periods.BB,
			BBK:      a.Periods.BBK,
			ATR:      a.Periods.ATR,
			MACDFast: a.Periods.MACDFast,
			MACDSlow: a.Periods.MACDSlow,
		},
		Gates: analysis.Gates{
			MinVolume: a.Gates.MinVolume,
			MinATRPct: a.Gates.MinATRPct,
			RSILow:    a.Gates.RSILow,
			RSIHigh:   a.Gates.RSIHigh,
		},
		Trade: analysis.Trade{
			TargetPct:      a.Trade.TargetPct,
			StopPct:        a.Trade.StopPct,
			EntryBufferPct: a.Trade.EntryBufferPct,
			Leverage:       a.Trade.Leverage,
			Balance:        a.Trade.Balance,
			RiskPct:        a.Trade.RiskPct,
		},
	}
	for _, s := range a.Timeframes {
		// unknown names are kept so Validate reports them
		tf, _ := repository.ParseTimeframe(s)
		out.Timeframes = append(out.Timeframes, tf)
	}
	if a.Anchor != "" {
		out.Anchor, _ = repository.ParseTimeframe(a.Anchor)
	}
	return out
}

// ProvideEngine validates the analysis config and builds the engine.
func ProvideEngine(ac analysis.Config) (*analysis.Engine, error) {
	e, err := analysis.NewEngine(ac)
	if err != nil {
		return nil, fmt.Errorf("analysis engine: %w", err)
	}
	return e, nil
}

// ProvideClickHouseClient connects to ClickHouse. Returns nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRedisCache connects to Redis. Returns nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache layers a local LRU over Redis, or falls back to memory only.
func ProvideCache(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(rc)
}

// ProvideQueue picks the Redis-backed job queue when Redis is available.
func ProvideQueue(cfg *config.Config, lgr *applogger.Logger, rc *cache.RedisCache) queue.Queue {
	qc := queue.QueueConfig{
		Workers:    cfg.Scanner.Queue.Workers,
		QueueSize:  cfg.Scanner.Queue.QueueSize,
		RetryLimit: cfg.Scanner.Queue.RetryLimit,
		RetryDelay: cfg.Scanner.Queue.RetryDelay,
	}
	if rc == nil {
		return queue.NewMemoryQueue(lgr, qc)
	}
	return queue.NewRedisQueue(lgr, qc, rc.Client(), queue.WithKeyPrefix(cfg.Redis.Prefix+":jobs"))
}

// ProvideCandleStore returns the ClickHouse candle tables, or nil without ClickHouse.
func ProvideCandleStore(cfg *config.Config, ch *pkgch.Client, lgr *applogger.Logger) *internalrepo.CHCandleStore {
	if ch == nil {
		return nil
	}
	s := internalrepo.NewCHCandleStore(ch, cfg.ClickHouse.Database)
	s.SetLogger(lgr)
	return s
}

// ProvideCandleSource selects where the engine reads candles from.
func ProvideCandleSource(cfg *config.Config, store *internalrepo.CHCandleStore) (repository.CandleSource, error) {
	switch cfg.Source.Type {
	case "clickhouse":
		if store == nil {
			return nil, fmt.Errorf("candle source clickhouse: client not configured")
		}
		return store, nil
	default:
		return bybit.New(bybit.Config{
			BaseURL:      cfg.Bybit.BaseURL,
			Category:     cfg.Bybit.Category,
			Timeout:      cfg.Bybit.Timeout,
			Rate:         cfg.Bybit.Rate,
			Burst:        cfg.Bybit.Burst,
			Retries:      cfg.Bybit.Retries,
			RetryBackoff: cfg.Bybit.RetryBackoff,
		}), nil
	}
}

// ProvideSignalStore keeps history in ClickHouse, or in memory without it.
func ProvideSignalStore(cfg *config.Config, ch *pkgch.Client) repository.SignalStore {
	if ch == nil {
		return internalrepo.NewMemorySignalStore(0)
	}
	tfs := make([]string, 0, len(repository.AllTimeframes()))
	for _, tf := range repository.AllTimeframes() {
		tfs = append(tfs, tf.String())
	}
	return internalrepo.NewCHSignalStore(ch, cfg.ClickHouse.Database, tfs)
}

// ProvideKafkaProducer creates a Kafka producer. Returns nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher publishes to Kafka when a producer exists.
func ProvideSignalPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.SignalPublisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalTopic)
}

func ProvideLatestStore(c cache.Service) repository.LatestSignals {
	return internalrepo.NewCacheLatestStore(c)
}

func ProvideHub(latest repository.LatestSignals, lgr *applogger.Logger) *ws.Hub {
	return ws.NewHub(latest, lgr.With(applogger.String("component", "ws")))
}

// ProvideSignalScanner assembles the scan pipeline.
func ProvideSignalScanner(
	cfg *config.Config,
	engine *analysis.Engine,
	source repository.CandleSource,
	store repository.SignalStore,
	pub repository.SignalPublisher,
	latest repository.LatestSignals,
	hub *ws.Hub,
	m repository.Metrics,
	c cache.Service,
	lgr *applogger.Logger,
) *usecase.SignalScanner {
	return usecase.NewSignalScanner(usecase.ScannerDeps{
		Engine:      engine,
		Source:      source,
		Store:       store,
		Publisher:   pub,
		Latest:      latest,
		Broadcaster: hub,
		Metrics:     m,
		Locker:      c,
		Logger:      lgr.With(applogger.String("component", "scanner")),
	}, usecase.ScannerConfig{
		Symbols:     cfg.Scanner.Symbols,
		LockTTL:     cfg.Scanner.LockTTL,
		Concurrency: cfg.Scanner.Concurrency,
	})
}

// ProvideAutoScanner returns nil when periodic scans are off.
func ProvideAutoScanner(cfg *config.Config, scanner *usecase.SignalScanner, lgr *applogger.Logger) *usecase.AutoScanner {
	if !cfg.Scanner.AutoScan {
		return nil
	}
	return usecase.NewAutoScanner(scanner, cfg.Scanner.Interval, lgr)
}

func ProvideScanJob(scanner *usecase.SignalScanner, lgr *applogger.Logger) *usecase.ScanJob {
	return usecase.NewScanJob(scanner, lgr)
}

// ProvideCandlesUseCase serves the candles endpoint through a short-lived cache.
func ProvideCandlesUseCase(cfg *config.Config, source repository.CandleSource, c cache.Service) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(internalrepo.NewCachedCandleSource(source, c, cfg.Source.CacheTTL))
}

// ProvideKafkaConsumer creates the candle ingest consumer. Returns nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, lgr *applogger.Logger, m repository.Metrics) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(lgr.With(applogger.String("component", "kafka-consumer"))),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(usecase.NewConsumerHook(m, lgr.With(applogger.String("component", "candle-ingest"))))
	return consumer, nil
}

// ProvideKafkaCandlesHandler returns nil without a candle store.
func ProvideKafkaCandlesHandler(cfg *config.Config, store *internalrepo.CHCandleStore, m repository.Metrics) *usecase.KafkaCandlesHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandleTopic, store, m)
}

func ProvideSignalsHandler(
	lgr *applogger.Logger,
	scanner *usecase.SignalScanner,
	latest repository.LatestSignals,
	store repository.SignalStore,
	candles *usecase.CandlesUseCase,
	q queue.Queue,
) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(lgr, scanner, latest, store, candles, q)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.Rate, cfg.Server.RateLimit.Burst)
}

// ProvideHTTPServer mounts the REST API and the websocket hub on Echo.
func ProvideHTTPServer(
	cfg *config.Config,
	lgr *applogger.Logger,
	signals *api.SignalsEchoHandler,
	hub *ws.Hub,
	limiter *ratelimit.Limiter,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(lgr.With(applogger.String("component", "http"))),
		xhttp.WithRateLimit(limiter),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path))
	}
	return xhttp.NewServer(xhttp.Handlers{signals, hub}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	httpServer *xhttp.Server,
	hub *ws.Hub,
	q queue.Queue,
	job *usecase.ScanJob,
	auto *usecase.AutoScanner,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	limiter *ratelimit.Limiter,
	store repository.SignalStore,
	pub repository.SignalPublisher,
	c cache.Service,
	chClient *pkgch.Client,
) *server.App {
	return server.New(server.Components{
		Config:        cfg,
		Logger:        lgr,
		HTTP:          httpServer,
		Hub:           hub,
		Queue:         q,
		ScanJob:       job,
		AutoScanner:   auto,
		Consumer:      consumer,
		CandleHandler: kh,
		Limiter:       limiter,
		SignalStore:   store,
		Publisher:     pub,
		Cache:         c,
		ClickHouse:    chClient,
	})
}
