// Package config
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

/*
YAML config example:

bithumb_access_key: "..."
bithumb_secret_key: "..."
market: "KRW-BTC"
take_profit_pct: 1.0
base_order_krw: 5000
fee_rate: 0.0004
sizing_mode: "scaled"
interval: 1h
order_wait: 5m
metrics_addr: ":9090"
log_file: "bithumb-trader.log"
telegram_token: ""
telegram_chat_id: ""
*/

type Config struct {
	AccessKey      string        `yaml:"bithumb_access_key"`
	SecretKey      string        `yaml:"bithumb_secret_key"`
	Market         string        `yaml:"market"`
	TakeProfitPct  float64       `yaml:"take_profit_pct"`
	BaseOrderKRW   float64       `yaml:"base_order_krw"`
	FeeRate        float64       `yaml:"fee_rate"`
	SizingMode     string        `yaml:"sizing_mode"`
	Interval       time.Duration `yaml:"interval"`
	OrderWait      time.Duration `yaml:"order_wait"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	LogFile        string        `yaml:"log_file"`
	TelegramToken  string        `yaml:"telegram_token"`
	TelegramChatID string        `yaml:"telegram_chat_id"`
}

// Defaults returns the built-in policy: hourly rounds, 1% take-profit,
// 5000 KRW base orders, drawdown-scaled sizing.
func Defaults() Config {
	return Config{
		Market:        "KRW-BTC",
		TakeProfitPct: 1.0,
		BaseOrderKRW:  5000,
		FeeRate:       0.0004,
		SizingMode:    "scaled",
		Interval:      time.Hour,
		OrderWait:     5 * time.Minute,
		LogFile:       "bithumb-trader.log",
	}
}

// UnmarshalYAML decodes the config file. Durations are written as strings
// ("1h", "5m"), which yaml.v3 cannot decode into time.Duration directly;
// keys absent from the file keep their current (default) values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		AccessKey      string   `yaml:"bithumb_access_key"`
		SecretKey      string   `yaml:"bithumb_secret_key"`
		Market         string   `yaml:"market"`
		TakeProfitPct  *float64 `yaml:"take_profit_pct"`
		BaseOrderKRW   *float64 `yaml:"base_order_krw"`
		FeeRate        *float64 `yaml:"fee_rate"`
		SizingMode     string   `yaml:"sizing_mode"`
		Interval       string   `yaml:"interval"`
		OrderWait      string   `yaml:"order_wait"`
		MetricsAddr    string   `yaml:"metrics_addr"`
		LogFile        string   `yaml:"log_file"`
		TelegramToken  string   `yaml:"telegram_token"`
		TelegramChatID string   `yaml:"telegram_chat_id"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&c.AccessKey, raw.AccessKey)
	setString(&c.SecretKey, raw.SecretKey)
	setString(&c.Market, raw.Market)
	setString(&c.SizingMode, raw.SizingMode)
	setString(&c.MetricsAddr, raw.MetricsAddr)
	setString(&c.LogFile, raw.LogFile)
	setString(&c.TelegramToken, raw.TelegramToken)
	setString(&c.TelegramChatID, raw.TelegramChatID)
	if raw.TakeProfitPct != nil {
		c.TakeProfitPct = *raw.TakeProfitPct
	}
	if raw.BaseOrderKRW != nil {
		c.BaseOrderKRW = *raw.BaseOrderKRW
	}
	if raw.FeeRate != nil {
		c.FeeRate = *raw.FeeRate
	}
	if raw.Interval != "" {
		d, err := time.ParseDuration(raw.Interval)
		if err != nil {
			return fmt.Errorf("parsing interval: %w", err)
		}
		c.Interval = d
	}
	if raw.OrderWait != "" {
		d, err := time.ParseDuration(raw.OrderWait)
		if err != nil {
			return fmt.Errorf("parsing order_wait: %w", err)
		}
		c.OrderWait = d
	}
	return nil
}

// Load builds the config: defaults, then the optional YAML file, then
// environment overrides (a .env file is loaded first when present, matching
// how the bot is deployed).
func Load(configFile string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AccessKey = getEnv("BITHUMB_ACCESS_KEY", c.AccessKey)
	c.SecretKey = getEnv("BITHUMB_SECRET_KEY", c.SecretKey)
	c.Market = getEnv("TICKER", c.Market)
	c.TakeProfitPct = getEnvFloat("TAKE_PROFIT_PCT", c.TakeProfitPct)
	c.BaseOrderKRW = getEnvFloat("BASE_ORDER_KRW", c.BaseOrderKRW)
	c.FeeRate = getEnvFloat("FEE_RATE", c.FeeRate)
	c.SizingMode = getEnv("SIZING_MODE", c.SizingMode)
	c.Interval = getEnvDuration("INTERVAL", c.Interval)
	c.OrderWait = getEnvDuration("ORDER_WAIT", c.OrderWait)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.TelegramToken = getEnv("TELEGRAM_TOKEN", c.TelegramToken)
	c.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", c.TelegramChatID)
}

// Validate rejects configurations the bot must not start with.
func (c Config) Validate() error {
	var errs []error
	if c.AccessKey == "" {
		errs = append(errs, errors.New("BITHUMB_ACCESS_KEY is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("BITHUMB_SECRET_KEY is required"))
	}
	if c.Market == "" {
		errs = append(errs, errors.New("market is required"))
	}
	if c.TakeProfitPct <= 0 {
		errs = append(errs, fmt.Errorf("take_profit_pct must be positive, got %v", c.TakeProfitPct))
	}
	if c.BaseOrderKRW <= 0 {
		errs = append(errs, fmt.Errorf("base_order_krw must be positive, got %v", c.BaseOrderKRW))
	}
	if c.FeeRate < 0 {
		errs = append(errs, fmt.Errorf("fee_rate must not be negative, got %v", c.FeeRate))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %v", c.Interval))
	}
	if mode := c.SizingMode; mode != "fixed" && mode != "scaled" {
		errs = append(errs, fmt.Errorf("sizing_mode must be fixed or scaled, got %q", mode))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
