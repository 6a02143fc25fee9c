package config

import (
	"fmt"
	"time"

	"github.com/Alias1177/Pricer/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PRICER"

// Config holds all application configuration
type Config struct {
	APIKey          string        `envconfig:"API_KEY"`
	BaseURL         string        `envconfig:"BASE_URL" default:"https://api.torn.com/v2" validate:"required,url"`
	MaxWorkers      int           `envconfig:"MAX_WORKERS" default:"5" validate:"gte=1,lte=64"`
	RateLimitPerMin float64       `envconfig:"RATE_LIMIT_PER_MIN" default:"90" validate:"gt=0"`
	RateCapacity    int           `envconfig:"RATE_CAPACITY" default:"0" validate:"gte=0"` // 0 means capacity = rate per minute
	Retries         int           `envconfig:"RETRIES" default:"3" validate:"gte=1"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s" validate:"gt=0"`
	MarketFee       float64       `envconfig:"MARKET_FEE" default:"0.05" validate:"gte=0,lt=1"`
	FuzzyThreshold  int           `envconfig:"FUZZY_THRESHOLD" default:"80" validate:"gte=0,lte=100"`
	DictPath        string        `envconfig:"DICT_PATH" default:"data/torn_item_dictionary.csv"`
	SlotCount       int           `envconfig:"SLOT_COUNT" default:"100" validate:"gte=1"`
	AnalysisWorkers int           `envconfig:"ANALYSIS_WORKERS" default:"8" validate:"gte=1"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	TelegramToken   string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	MetricsAddr     string        `envconfig:"METRICS_ADDR"`

	// Heuristic cutoffs, read as PRICER_Z_THRESHOLD and so on.
	model.Thresholds
}

// Load initializes configuration from the .env file and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// BucketCapacity resolves the token bucket ceiling.
func (c *Config) BucketCapacity() int {
	if c.RateCapacity > 0 {
		return c.RateCapacity
	}
	capacity := int(c.RateLimitPerMin)
	if capacity < 1 {
		capacity = 1
	}
	return capacity
}
