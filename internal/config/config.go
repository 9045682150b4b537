package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime parameter of the pizza service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	JWT       JWTConfig       `yaml:"jwt"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Factory   FactoryConfig   `yaml:"factory"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type HTTPConfig struct {
	Port            int           `yaml:"port" env:"PIZZA_HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"PIZZA_HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"PIZZA_HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PIZZA_HTTP_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"PIZZA_HTTP_MAX_BODY_BYTES"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"PIZZA_JWT_SECRET"`
	// TTL of zero issues tokens that live until logout.
	TTL time.Duration `yaml:"ttl" env:"PIZZA_JWT_TTL"`
}

type AuthConfig struct {
	TokenStore string `yaml:"token_store" env:"PIZZA_AUTH_TOKEN_STORE"` // postgres | redis
	BcryptCost int    `yaml:"bcrypt_cost" env:"PIZZA_AUTH_BCRYPT_COST"`
}

type DatabaseConfig struct {
	Host        string `yaml:"host" env:"PIZZA_DB_HOST"`
	Port        int    `yaml:"port" env:"PIZZA_DB_PORT"`
	User        string `yaml:"user" env:"PIZZA_DB_USER"`
	Password    string `yaml:"password" env:"PIZZA_DB_PASSWORD"`
	Database    string `yaml:"database" env:"PIZZA_DB_NAME"`
	SSLMode     string `yaml:"sslmode" env:"PIZZA_DB_SSLMODE"`
	MaxConns    int32  `yaml:"max_conns" env:"PIZZA_DB_MAX_CONNS"`
	ListPerPage int    `yaml:"list_per_page" env:"PIZZA_DB_LIST_PER_PAGE"`
}

// Enabled reports whether a Postgres connection is configured.
// Without one the service runs on the in-memory store.
func (d DatabaseConfig) Enabled() bool { return strings.TrimSpace(d.Host) != "" }

// DSN renders a pgx connection string.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"PIZZA_REDIS_ADDR"`
	Password string `yaml:"password" env:"PIZZA_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"PIZZA_REDIS_DB"`
	Prefix   string `yaml:"prefix" env:"PIZZA_REDIS_PREFIX"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host" env:"PIZZA_RABBITMQ_HOST"`
	Port     int    `yaml:"port" env:"PIZZA_RABBITMQ_PORT"`
	User     string `yaml:"user" env:"PIZZA_RABBITMQ_USER"`
	Password string `yaml:"password" env:"PIZZA_RABBITMQ_PASSWORD"`
	VHost    string `yaml:"vhost" env:"PIZZA_RABBITMQ_VHOST"`
	UseTLS   bool   `yaml:"use_tls" env:"PIZZA_RABBITMQ_TLS"`
	Exchange string `yaml:"exchange" env:"PIZZA_RABBITMQ_EXCHANGE"`
	Queue    string `yaml:"queue" env:"PIZZA_RABBITMQ_QUEUE"`
}

// Enabled reports whether order events should be published.
func (r RabbitMQConfig) Enabled() bool { return strings.TrimSpace(r.Host) != "" }

type FactoryConfig struct {
	URL             string        `yaml:"url" env:"PIZZA_FACTORY_URL"`
	APIKey          string        `yaml:"api_key" env:"PIZZA_FACTORY_API_KEY"`
	Timeout         time.Duration `yaml:"timeout" env:"PIZZA_FACTORY_TIMEOUT"`
	RetryMax        int           `yaml:"retry_max" env:"PIZZA_FACTORY_RETRY_MAX"`
	BreakerFailures int           `yaml:"breaker_failures" env:"PIZZA_FACTORY_BREAKER_FAILURES"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" env:"PIZZA_FACTORY_BREAKER_TIMEOUT"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"PIZZA_LOG_LEVEL"`
	// File enables rotated file output in addition to stdout.
	File       string `yaml:"file" env:"PIZZA_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"PIZZA_LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"PIZZA_LOG_MAX_BACKUPS"`
}

type AdminConfig struct {
	Name     string `yaml:"name" env:"PIZZA_ADMIN_NAME"`
	Email    string `yaml:"email" env:"PIZZA_ADMIN_EMAIL"`
	Password string `yaml:"password" env:"PIZZA_ADMIN_PASSWORD"`
}

type RateLimitConfig struct {
	AuthRPS   float64 `yaml:"auth_rps" env:"PIZZA_RATE_LIMIT_AUTH_RPS"`
	AuthBurst int     `yaml:"auth_burst" env:"PIZZA_RATE_LIMIT_AUTH_BURST"`
}

// Default returns the configuration used when a key is absent from both
// the YAML file and the environment.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            3000,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Auth:     AuthConfig{TokenStore: "postgres", BcryptCost: 10},
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable", MaxConns: 10, ListPerPage: 10},
		RabbitMQ: RabbitMQConfig{
			Port:     5672,
			VHost:    "/",
			Exchange: "pizza_orders",
			Queue:    "pizza_notifications",
		},
		Factory: FactoryConfig{
			URL:             "https://pizza-factory.cs329.click",
			Timeout:         10 * time.Second,
			RetryMax:        2,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Redis:     RedisConfig{Prefix: "pizza:auth:"},
		Log:       LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 3},
		Admin:     AdminConfig{Name: "常用名字", Email: "a@jwt.com", Password: "admin"},
		RateLimit: RateLimitConfig{AuthRPS: 5, AuthBurst: 20},
	}
}

// LoadConfig reads the YAML file at path (optional when empty) on top of the
// defaults and then applies PIZZA_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("couldn't open the configuration file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("invalid config: jwt.secret is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid config: http.port %d out of range", c.HTTP.Port)
	}
	if c.Database.ListPerPage <= 0 {
		return errors.New("invalid config: database.list_per_page must be positive")
	}
	switch c.Auth.TokenStore {
	case "postgres":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("invalid config: redis.addr is required for the redis token store")
		}
	default:
		return fmt.Errorf("invalid config: unknown auth.token_store %q", c.Auth.TokenStore)
	}
	if c.Database.Enabled() && (c.Database.User == "" || c.Database.Database == "") {
		return errors.New("invalid config: database config incomplete")
	}
	return nil
}

// FindConfig returns the first config file present in the working directory.
// The example under deploy/ is never picked up.
func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "config.yml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
