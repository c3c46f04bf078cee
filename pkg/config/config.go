package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		RateLimit       struct {
			Rate  float64 `yaml:"rate" default:"10"`
			Burst int     `yaml:"burst" default:"20"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"console"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logging"`
	Source struct {
		Type     string        `yaml:"type" default:"bybit"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"30s"`
	} `yaml:"source"`
	Bybit struct {
		BaseURL      string        `yaml:"base_url" default:"https://api.bybit.com"`
		Category     string        `yaml:"category" default:"linear"`
		Timeout      time.Duration `yaml:"timeout" default:"10s"`
		Rate         float64       `yaml:"rate" default:"5"`
		Burst        int           `yaml:"burst" default:"5"`
		Retries      int           `yaml:"retries" default:"2"`
		RetryBackoff time.Duration `yaml:"retry_backoff" default:"250ms"`
	} `yaml:"bybit"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		SignalTopic  string   `yaml:"signal_topic" default:"trading.signals"`
		CandleTopic  string   `yaml:"candle_topic" default:"market.candles"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"finsignal-candles"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"1000"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finsignal"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled      bool          `yaml:"enabled"`
		Addr         string        `yaml:"addr" default:"localhost:6379"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		Prefix       string        `yaml:"prefix" default:"finsignal"`
		PoolSize     int           `yaml:"pool_size" default:"10"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
		PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
	} `yaml:"redis"`
	Scanner struct {
		Symbols     []string      `yaml:"symbols"`
		Interval    time.Duration `yaml:"interval" default:"15m"`
		AutoScan    bool          `yaml:"auto_scan"`
		LockTTL     time.Duration `yaml:"lock_ttl" default:"5m"`
		Concurrency int           `yaml:"concurrency" default:"4"`
		Queue       struct {
			Workers    int           `yaml:"workers" default:"1"`
			QueueSize  int           `yaml:"queue_size" default:"100"`
			RetryLimit int           `yaml:"retry_limit" default:"2"`
			RetryDelay time.Duration `yaml:"retry_delay" default:"30s"`
		} `yaml:"queue"`
	} `yaml:"scanner"`
	Analysis struct {
		Timeframes []string `yaml:"timeframes"`
		Anchor     string   `yaml:"anchor"`
		MaxBars    int      `yaml:"max_bars"`
		MinHistory int      `yaml:"min_history"`
		Periods    struct {
			EMAFast  int     `yaml:"ema_fast"`
			EMASlow  int     `yaml:"ema_slow"`
			SMAMid   int     `yaml:"sma_mid"`
			RSI      int     `yaml:"rsi"`
			BB       int     `yaml:"bb"`
			BBK      float64 `yaml:"bb_k"`
			ATR      int     `yaml:"atr"`
			MACDFast int     `yaml:"macd_fast"`
			MACDSlow int     `yaml:"macd_slow"`
		} `yaml:"periods"`
		Gates struct {
			MinVolume float64 `yaml:"min_volume"`
			MinATRPct float64 `yaml:"min_atr_pct"`
			RSILow    float64 `yaml:"rsi_low"`
			RSIHigh   float64 `yaml:"rsi_high"`
		} `yaml:"gates"`
		Trade struct {
			TargetPct      float64 `yaml:"target_pct"`
			StopPct        float64 `yaml:"stop_pct"`
			EntryBufferPct float64 `yaml:"entry_buffer_pct"`
			Leverage       float64 `yaml:"leverage"`
			Balance        float64 `yaml:"account_balance"`
			RiskPct        float64 `yaml:"risk_pct"`
		} `yaml:"trade"`
	} `yaml:"analysis"`
}

// Load reads and parses a YAML configuration file. Unset fields take their
// struct defaults; unset analysis fields are filled by the engine.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes into a validated Config.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Scanner.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SOURCE_TYPE"); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv("BYBIT_BASE_URL"); v != "" {
		c.Bybit.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Source.Type != "bybit" && c.Source.Type != "clickhouse" {
		return fmt.Errorf("source.type must be 'bybit' or 'clickhouse', got '%s'", c.Source.Type)
	}
	if c.Source.Type == "clickhouse" && !c.ClickHouse.Enabled {
		return fmt.Errorf("source.type 'clickhouse' requires clickhouse.enabled")
	}
	if len(c.Scanner.Symbols) == 0 {
		return fmt.Errorf("scanner.symbols cannot be empty")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Consumer.Enabled && !c.ClickHouse.Enabled {
		return fmt.Errorf("kafka.consumer requires clickhouse.enabled to store candles")
	}
	if c.Scanner.Interval <= 0 {
		return fmt.Errorf("scanner.interval must be positive")
	}
	return nil
}
