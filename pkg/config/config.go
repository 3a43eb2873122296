package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CountrySwipe/pkg/logger"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"required"`
	Log         logger.Config `yaml:"log"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lt=65536"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"service_name" default:"countryswipe"`
	} `yaml:"tracing"`

	News struct {
		BaseURL         string        `yaml:"base_url"`
		Timeout         time.Duration `yaml:"timeout" default:"10s"`
		RefreshInterval time.Duration `yaml:"refresh_interval" default:"60s"`
	} `yaml:"news"`

	Chain struct {
		RPCURL          string        `yaml:"rpc_url" default:"https://sepolia.base.org"`
		ChainID         int64         `yaml:"chain_id" default:"84532" validate:"gt=0"`
		TradingAddress  string        `yaml:"trading_address" default:"0x57Df258deA444B94a82669DF1E6fbFD35BED8cF0" validate:"required,eth_addr"`
		TokenAddress    string        `yaml:"token_address" validate:"omitempty,eth_addr"`
		RegistryAddress string        `yaml:"registry_address" validate:"omitempty,eth_addr"`
		PrivateKey      string        `yaml:"-"`
		ReceiptPoll     time.Duration `yaml:"receipt_poll" default:"2s"`
	} `yaml:"chain"`

	Trade struct {
		Amounts            []string      `yaml:"amounts" default:"[\"1\",\"5\",\"10\"]" validate:"min=1,dive,numeric"`
		DefaultAmountIndex int           `yaml:"default_amount_index" default:"1" validate:"gte=0"`
		SignTimeout        time.Duration `yaml:"sign_timeout" default:"2m"`
		ConfirmTimeout     time.Duration `yaml:"confirm_timeout" default:"3m"`
		PrevalidateBalance bool          `yaml:"prevalidate_balance"`
		SnapshotMaxAge     time.Duration `yaml:"snapshot_max_age" default:"15s"`
	} `yaml:"trade"`

	Gesture struct {
		ThresholdX      float64       `yaml:"threshold_x" default:"100" validate:"gt=0"`
		ThresholdY      float64       `yaml:"threshold_y" default:"100" validate:"gt=0"`
		Sensitivity     float64       `yaml:"sensitivity" default:"150" validate:"gt=0"`
		RotationDivisor float64       `yaml:"rotation_divisor" default:"20" validate:"gt=0"`
		ExitDuration    time.Duration `yaml:"exit_duration" default:"400ms"`
		SamplesPerSec   float64       `yaml:"samples_per_sec" default:"120"`
	} `yaml:"gesture"`

	Polling struct {
		Stats     time.Duration `yaml:"stats" default:"5s"`
		Positions time.Duration `yaml:"positions" default:"5s"`
		Markets   time.Duration `yaml:"markets" default:"30s"`
	} `yaml:"polling"`

	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"10m"` // how long the last news fetch serves as fallback
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic" default:"countryswipe.events"`
		LogsTopic    string   `yaml:"logs_topic" default:"countryswipe.logs"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
}

// Load reads a YAML file, applies struct defaults and validates the result.
// A missing file yields a config built from defaults only.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if any), then the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("NEWS_BASE_URL"); v != "" {
		c.News.BaseURL = v
	}
	if v := os.Getenv("RPC_URL"); v != "" {
		c.Chain.RPCURL = v
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Chain.ChainID = id
		}
	}
	if v := os.Getenv("COUNTRY_TRADING_ADDRESS"); v != "" {
		c.Chain.TradingAddress = v
	}
	if v := os.Getenv("COLLATERAL_TOKEN_ADDRESS"); v != "" {
		c.Chain.TokenAddress = v
	}
	if v := os.Getenv("COUNTRY_REGISTRY_ADDRESS"); v != "" {
		c.Chain.RegistryAddress = v
	}
	if v := os.Getenv("WALLET_PRIVATE_KEY"); v != "" {
		c.Chain.PrivateKey = strings.TrimPrefix(v, "0x")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

var validate = validator.New()

// Validate checks struct tags plus cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Trade.DefaultAmountIndex >= len(c.Trade.Amounts) {
		return fmt.Errorf("trade.default_amount_index %d out of range for %d amounts",
			c.Trade.DefaultAmountIndex, len(c.Trade.Amounts))
	}
	if c.Environment == "production" && c.News.BaseURL == "" {
		return fmt.Errorf("news.base_url is required in production")
	}
	return nil
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
