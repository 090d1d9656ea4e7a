// Package config loads harness configuration for running the simulator —
// which symbols and time range to replay, wallet and fee parameters, and
// the latency model's tuning knobs. It mirrors the teacher's config.Config
// / StrategyConfig / RiskConfig split: one YAML file, a struct per concern.
// The engine's own constructor stays a typed struct literal; this package
// exists for CLI/example harnesses built on top of it, the same way the
// teacher's config.Load underlies its cmd/bot/main.go.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"replaysim/internal/engine"
	"replaysim/internal/latency"
	"replaysim/pkg/types"
)

// EngineConfig is the top-level harness configuration. Maps directly to the
// YAML file structure.
type EngineConfig struct {
	Symbols        []string      `mapstructure:"symbols"`
	StartTime      string        `mapstructure:"start_time"`
	EndTime        string        `mapstructure:"end_time"`
	InitialBalance float64       `mapstructure:"initial_balance"`
	MakerFee       float64       `mapstructure:"maker_fee"`
	TakerFee       float64       `mapstructure:"taker_fee"`
	Market         string        `mapstructure:"market"`
	Seed           int64         `mapstructure:"seed"`
	Latency        LatencyConfig `mapstructure:"latency"`
}

// LatencyConfig mirrors internal/latency.Config field for field so it can
// be loaded from YAML, then converted with ToModelConfig.
type LatencyConfig struct {
	OrderLatencyMs            float64 `mapstructure:"order_latency_ms"`
	OrderLatencyStdMs         float64 `mapstructure:"order_latency_std_ms"`
	DataLatencyMs             float64 `mapstructure:"data_latency_ms"`
	DataLatencyStdMs          float64 `mapstructure:"data_latency_std_ms"`
	MarketOrderSlippageBps    float64 `mapstructure:"market_order_slippage_bps"`
	LimitOrderFillProbability float64 `mapstructure:"limit_order_fill_probability"`
	TimeMode                  string  `mapstructure:"time_mode"`
	TimeAcceleration          float64 `mapstructure:"time_acceleration"`
}

// ToModelConfig converts the loaded YAML shape into latency.Config.
func (c LatencyConfig) ToModelConfig() latency.Config {
	return latency.Config{
		OrderLatencyMs:            c.OrderLatencyMs,
		OrderLatencyStdMs:         c.OrderLatencyStdMs,
		DataLatencyMs:             c.DataLatencyMs,
		DataLatencyStdMs:          c.DataLatencyStdMs,
		MarketOrderSlippageBps:    c.MarketOrderSlippageBps,
		LimitOrderFillProbability: c.LimitOrderFillProbability,
		TimeMode:                  c.TimeMode,
		TimeAcceleration:          c.TimeAcceleration,
	}
}

// defaultLatency mirrors latency.DefaultConfig in the YAML-shaped struct,
// used when a harness config omits the latency block entirely.
func defaultLatency() LatencyConfig {
	d := latency.DefaultConfig()
	return LatencyConfig{
		OrderLatencyMs:            d.OrderLatencyMs,
		OrderLatencyStdMs:         d.OrderLatencyStdMs,
		DataLatencyMs:             d.DataLatencyMs,
		DataLatencyStdMs:          d.DataLatencyStdMs,
		MarketOrderSlippageBps:    d.MarketOrderSlippageBps,
		LimitOrderFillProbability: d.LimitOrderFillProbability,
		TimeMode:                  d.TimeMode,
		TimeAcceleration:          d.TimeAcceleration,
	}
}

// Load reads an EngineConfig from a YAML file, filling in fee and latency
// defaults for any of those fields the file does not set. A field set
// explicitly to zero in the file stays zero.
func Load(path string) (*EngineConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := EngineConfig{
		MakerFee: 0.0001,
		TakerFee: 0.0006,
		Latency:  defaultLatency(),
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the required fields and value ranges a harness must set
// before constructing the engine.
func (c *EngineConfig) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must list at least one symbol")
	}
	if c.StartTime == "" || c.EndTime == "" {
		return fmt.Errorf("start_time and end_time are required (format YYMMDD.HHMMSS)")
	}
	if _, err := ParseSimTime(c.StartTime); err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	if _, err := ParseSimTime(c.EndTime); err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial_balance must be > 0")
	}
	return nil
}

// ToEngineParams resolves the parsed start/end time strings and converts c
// into the typed engine.Params struct literal the engine's own constructor
// expects. Depth is the feed query's per-side level cap; 0 means no limit.
func (c *EngineConfig) ToEngineParams(depth int) (engine.Params, error) {
	start, err := ParseSimTime(c.StartTime)
	if err != nil {
		return engine.Params{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := ParseSimTime(c.EndTime)
	if err != nil {
		return engine.Params{}, fmt.Errorf("end_time: %w", err)
	}

	return engine.Params{
		Symbols:        c.Symbols,
		StartTime:      start,
		EndTime:        end,
		InitialBalance: c.InitialBalance,
		MakerFee:       c.MakerFee,
		TakerFee:       c.TakerFee,
		Market:         c.Market,
		Latency:        c.Latency.ToModelConfig(),
		Seed:           c.Seed,
		Depth:          depth,
	}, nil
}

// simTimeLayout is the YYMMDD.HHMMSS format used by the `times` construction
// parameter, e.g. "250120.000000".
const simTimeLayout = "060102.150405"

// ParseSimTime parses the YYMMDD.HHMMSS time string format into a
// Timestamp (nanoseconds since epoch, UTC).
func ParseSimTime(s string) (types.Timestamp, error) {
	t, err := time.Parse(simTimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse sim time %q: %w", s, err)
	}
	return types.Timestamp(t.UnixNano()), nil
}
