package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var candleIntervals = map[string]bool{
	"1m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true,
	"12h": true, "1d": true,
}

type Config struct {
	WSURL          string `yaml:"ws_url"`
	BaseAsset      string `yaml:"base_asset"`
	QuoteAsset     string `yaml:"quote_asset"`
	CandleInterval string `yaml:"candle_interval"`
	StatusPort     int    `yaml:"status_port"`
	MetricsPort    int    `yaml:"metrics_port"`
	LogLevel       string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		WSURL:          "wss://ws.bitvavo.com/v2/",
		BaseAsset:      "BTC",
		QuoteAsset:     "EUR",
		CandleInterval: "1h",
		StatusPort:     8086,
		MetricsPort:    9108,
		LogLevel:       "info",
	}
}

func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	// Validation & normalization
	cfg.BaseAsset = strings.ToUpper(strings.TrimSpace(cfg.BaseAsset))
	cfg.QuoteAsset = strings.ToUpper(strings.TrimSpace(cfg.QuoteAsset))
	if cfg.BaseAsset == "" || cfg.QuoteAsset == "" {
		return cfg, errors.New("base_asset and quote_asset must not be empty")
	}
	if cfg.BaseAsset == cfg.QuoteAsset {
		return cfg, errors.New("base_asset and quote_asset must be different")
	}
	if !strings.HasPrefix(cfg.WSURL, "ws://") && !strings.HasPrefix(cfg.WSURL, "wss://") {
		return cfg, errors.New("ws_url must be a ws:// or wss:// URL")
	}
	if !candleIntervals[cfg.CandleInterval] {
		return cfg, fmt.Errorf("unsupported candle_interval %q", cfg.CandleInterval)
	}
	if cfg.StatusPort <= 0 || cfg.StatusPort > 65535 {
		return cfg, errors.New("invalid status_port")
	}
	if cfg.MetricsPort <= 0 || cfg.MetricsPort > 65535 {
		return cfg, errors.New("invalid metrics_port")
	}
	return cfg, nil
}

// Market renders the configured pair as a Bitvavo market string, e.g.
// "BTC-EUR".
func (c Config) Market() string {
	return fmt.Sprintf("%s-%s", c.BaseAsset, c.QuoteAsset)
}

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
