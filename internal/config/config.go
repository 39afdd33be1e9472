// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ListenPort is the fixed port of the public HTTP listener.
const ListenPort = 8888

// Cache backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the public HTTP listener. Its port is fixed at ListenPort.
type ServerConfig struct {
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// AdminConfig controls the health and metrics listener. Port 0 disables it.
type AdminConfig struct {
	Port int `mapstructure:"port"`
}

// RedisConfig addresses the cache server. Host and port are also read from
// REDIS_HOST and REDIS_PORT.
type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	IOTimeout   time.Duration `mapstructure:"io_timeout"`
	PoolSize    int           `mapstructure:"pool_size"`
}

// CacheConfig selects the cache backend and entry layout.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// FetchConfig configures outbound page fetches. MaxBodySize 0 reads whole
// bodies.
type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	MaxBodySize int           `mapstructure:"max_body_size"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from defaults, an optional file and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGEINFO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("redis.host", "REDIS_HOST"); err != nil {
		return Config{}, fmt.Errorf("bind REDIS_HOST: %w", err)
	}
	if err := v.BindEnv("redis.port", "REDIS_PORT"); err != nil {
		return Config{}, fmt.Errorf("bind REDIS_PORT: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("admin.port", 9090)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 2*time.Second)
	v.SetDefault("redis.io_timeout", time.Second)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("cache.backend", BackendRedis)
	v.SetDefault("cache.prefix", "scrape-url")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.user_agent", "pageinfo/1.0")
	v.SetDefault("fetch.max_body_size", 0)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("admin.port must be between 0 and 65535")
	}
	if c.Admin.Port == ListenPort {
		return fmt.Errorf("admin.port must differ from the listen port %d", ListenPort)
	}
	switch c.Cache.Backend {
	case BackendRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("redis.host must be set for the redis cache backend")
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			return fmt.Errorf("redis.port must be between 1 and 65535")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", BackendRedis, BackendMemory, c.Cache.Backend)
	}
	if c.Cache.Prefix == "" {
		return fmt.Errorf("cache.prefix must be set")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must be >= 0")
	}
	if c.Fetch.MaxBodySize < 0 {
		return fmt.Errorf("fetch.max_body_size must be >= 0")
	}
	return nil
}

// ListenAddr is the address of the public HTTP listener.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", ListenPort)
}

// AdminAddr is the address of the admin listener, empty when disabled.
func (c Config) AdminAddr() string {
	if c.Admin.Port == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.Admin.Port)
}
