package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the browser and the reference catalog server
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// CatalogConfig describes how to reach the remote catalog service
type CatalogConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"` // seconds, transport level
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
}

// BrowserConfig tunes the query scheduler
type BrowserConfig struct {
	DebounceMs   int `mapstructure:"debounce_ms"`
	QueryTimeout int `mapstructure:"query_timeout"` // seconds, 0 disables
}

// ServerConfig holds the catalog server listen address
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Password    string `mapstructure:"password"`
	Database    int    `mapstructure:"database"`
	CategoryTTL int    `mapstructure:"category_ttl"` // seconds
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`

	level log.Level // parsed from Level by Load
}

// LogrusLevel returns the level validated by Load.
func (c LogConfig) LogrusLevel() log.Level {
	return c.level
}

func (c BrowserConfig) QuietPeriod() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c BrowserConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(c.QueryTimeout) * time.Second
}

func (c RedisConfig) CategoryTTLDuration() time.Duration {
	return time.Duration(c.CategoryTTL) * time.Second
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// Load reads config.yaml from the given directories (current directory when none are given)
// with environment variable overrides. A missing file is not an error: defaults apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("config.yaml not found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must not be empty")
	}
	if c.Browser.DebounceMs <= 0 {
		return fmt.Errorf("browser.debounce_ms must be positive, got %d", c.Browser.DebounceMs)
	}
	if c.Browser.QueryTimeout < 0 {
		return fmt.Errorf("browser.query_timeout must not be negative, got %d", c.Browser.QueryTimeout)
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	c.Log.level = level
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", "http://localhost:8080")
	v.SetDefault("catalog.timeout", 30)
	v.SetDefault("catalog.max_requests_per_second", 20)
	v.SetDefault("catalog.proxies", []string{})

	v.SetDefault("browser.debounce_ms", 500)
	v.SetDefault("browser.query_timeout", 15)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "catalog")
	v.SetDefault("database.user", "catalog_user")
	v.SetDefault("database.password", "catalog_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.category_ttl", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "catalog-browser.log")
}
