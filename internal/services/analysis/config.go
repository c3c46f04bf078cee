package analysis

import (
	"errors"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"FinSignal/internal/domain/repository"
)

var ErrInvalidConfig = errors.New("invalid analysis config")

var validate = validator.New()

// Periods are the indicator lookbacks used for every timeframe snapshot.
type Periods struct {
	EMAFast  int     `yaml:"ema_fast" default:"9" validate:"gt=0"`
	EMASlow  int     `yaml:"ema_slow" default:"21" validate:"gt=0"`
	SMAMid   int     `yaml:"sma_mid" default:"20" validate:"gt=0"`
	RSI      int     `yaml:"rsi" default:"14" validate:"gt=0"`
	BB       int     `yaml:"bb" default:"20" validate:"gt=0"`
	BBK      float64 `yaml:"bb_k" default:"2" validate:"gte=0"`
	ATR      int     `yaml:"atr" default:"14" validate:"gt=0"`
	MACDFast int     `yaml:"macd_fast" default:"12" validate:"gt=0"`
	MACDSlow int     `yaml:"macd_slow" default:"26" validate:"gtfield=MACDFast"`
}

// Gates are the preconditions checked on the anchor snapshot.
type Gates struct {
	MinVolume float64 `yaml:"min_volume" default:"1000" validate:"gte=0"`
	MinATRPct float64 `yaml:"min_atr_pct" default:"0.001" validate:"gte=0"`
	RSILow    float64 `yaml:"rsi_low" default:"20" validate:"gte=0,lt=100"`
	RSIHigh   float64 `yaml:"rsi_high" default:"80" validate:"gtfield=RSILow,lte=100"`
}

// Trade holds the constants used to turn an entry into risk levels.
type Trade struct {
	TargetPct      float64 `yaml:"target_pct" default:"0.015" validate:"gt=0,lt=1"`
	StopPct        float64 `yaml:"stop_pct" default:"0.015" validate:"gt=0,lt=1"`
	EntryBufferPct float64 `yaml:"entry_buffer_pct" default:"0.002" validate:"gte=0,lt=1"`
	Leverage       float64 `yaml:"leverage" default:"20" validate:"gt=0"`
	Balance        float64 `yaml:"account_balance" default:"100" validate:"gt=0"`
	RiskPct        float64 `yaml:"risk_pct" default:"0.015" validate:"gt=0,lte=1"`
}

// Config is the engine configuration. It is copied into the Engine at
// construction and never mutated afterwards. Zero-valued fields are filled
// with defaults by DefaultConfig and NewEngine.
type Config struct {
	Timeframes []repository.Timeframe `yaml:"timeframes" default:"[\"15m\",\"1h\",\"4h\"]" validate:"min=1,unique"`
	Anchor     repository.Timeframe   `yaml:"anchor" default:"1h" validate:"required"`
	MaxBars    int                    `yaml:"max_bars" default:"500" validate:"gtefield=MinHistory"`
	MinHistory int                    `yaml:"min_history" default:"30" validate:"gt=0"`
	Periods    Periods                `yaml:"periods"`
	Gates      Gates                  `yaml:"gates"`
	Trade      Trade                  `yaml:"trade"`
}

// DefaultConfig returns the stock configuration: 15m/1h/4h with the hourly
// series as anchor.
func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

// Validate checks field ranges and that the anchor is one of the timeframes.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	anchored := false
	for _, tf := range c.Timeframes {
		if !repository.IsValidTimeframe(tf) {
			return fmt.Errorf("%w: unknown timeframe %q", ErrInvalidConfig, tf)
		}
		if tf == c.Anchor {
			anchored = true
		}
	}
	if !anchored {
		return fmt.Errorf("%w: anchor %q is not a configured timeframe", ErrInvalidConfig, c.Anchor)
	}
	return nil
}

func (c Config) clone() Config {
	c.Timeframes = append([]repository.Timeframe(nil), c.Timeframes...)
	return c
}
