package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/VanessaDre/masterblog-api/logging"
	"github.com/spf13/viper"
)

// Keys double as environment variable names once upper-cased.
const (
	KeyServerHost      = "server_host"
	KeyServerPort      = "server_port"
	KeyLogLevel        = "log_level"
	KeyRedisURL        = "redis_url"
	KeyCacheTTL        = "cache_ttl"
	KeyRateLimit       = "rate_limit"
	KeyRateLimitBurst  = "rate_limit_burst"
	KeyReadTimeout     = "read_timeout"
	KeyWriteTimeout    = "write_timeout"
	KeyShutdownTimeout = "shutdown_timeout"
)

type Config struct {
	Host string
	Port int

	LogLevel string

	// RedisURL enables the response cache when set, e.g. redis://localhost:6379/0.
	RedisURL string
	CacheTTL time.Duration

	RateLimit      float64
	RateLimitBurst int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServerHost, "0.0.0.0")
	v.SetDefault(KeyServerPort, 5002)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRedisURL, "")
	v.SetDefault(KeyCacheTTL, time.Hour)
	v.SetDefault(KeyRateLimit, 100)
	v.SetDefault(KeyRateLimitBurst, 200)
	v.SetDefault(KeyReadTimeout, 15*time.Second)
	v.SetDefault(KeyWriteTimeout, 15*time.Second)
	v.SetDefault(KeyShutdownTimeout, 30*time.Second)
	return v
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Host:            v.GetString(KeyServerHost),
		Port:            v.GetInt(KeyServerPort),
		LogLevel:        v.GetString(KeyLogLevel),
		RedisURL:        v.GetString(KeyRedisURL),
		CacheTTL:        v.GetDuration(KeyCacheTTL),
		RateLimit:       v.GetFloat64(KeyRateLimit),
		RateLimitBurst:  v.GetInt(KeyRateLimitBurst),
		ReadTimeout:     v.GetDuration(KeyReadTimeout),
		WriteTimeout:    v.GetDuration(KeyWriteTimeout),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if _, ok := logging.LookupLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q: must be debug, info, warn or error", c.LogLevel)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("invalid rate limit %v: must be positive", c.RateLimit)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}
