package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	File        string `yaml:"file" envconfig:"LOG_FILE"`
	// Profile is "debug", "dev" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update kinds that bypass limiting:
// "callback", "message" and "inline_query".
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// DatabaseConfig holds Postgres settings for panel statistics.
type DatabaseConfig struct {
	Enabled        bool   `yaml:"enabled" envconfig:"DB_ENABLED"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

// RedisConfig describes the Redis connection used by the redis dedupe backend.
type RedisConfig struct {
	Addr                  string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Username              string `yaml:"username" envconfig:"REDIS_USERNAME"`
	Password              string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB                    int    `yaml:"db" envconfig:"REDIS_DB"`
	Prefix                string `yaml:"prefix" envconfig:"REDIS_PREFIX"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds" envconfig:"REDIS_CONNECT_TIMEOUT_SECONDS"`
}

// DedupeConfig selects where handled update IDs are remembered.
type DedupeConfig struct {
	Backend    string      `yaml:"backend" envconfig:"DEDUPE_BACKEND"`
	TTLSeconds int         `yaml:"ttl_seconds" envconfig:"DEDUPE_TTL_SECONDS"`
	Path       string      `yaml:"path" envconfig:"DEDUPE_PATH"`
	Redis      RedisConfig `yaml:"redis"`
}

// HealthConfig enables the HTTP health server when Listen is set.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

const (
	DedupeNone   = "none"
	DedupeMemory = "memory"
	DedupeBolt   = "bolt"
	DedupeRedis  = "redis"

	defaultDedupeTTLSeconds = 600
	defaultDedupePath       = "data/updates.db"
	defaultRedisPrefix      = "folio:update:"
	defaultMigrationsDir    = "migrations"
)

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  DatabaseConfig  `yaml:"database"`
	Dedupe    DedupeConfig    `yaml:"dedupe"`
	Health    HealthConfig    `yaml:"health"`
}

// Load reads a core-only configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := LoadInto(path, &cfg, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto decodes the YAML file at path into dst, overlays environment
// variables onto core and normalizes it. core usually points inside dst.
func LoadInto(path string, dst any, core *Config) error {
	if core == nil {
		return fmt.Errorf("nil core config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", core); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}
	return Normalize(core)
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if err := normalizeDatabase(&cfg.Database); err != nil {
		return err
	}
	if err := normalizeDedupe(&cfg.Dedupe); err != nil {
		return err
	}
	cfg.Health.Listen = strings.TrimSpace(cfg.Health.Listen)
	return nil
}

func normalizeDatabase(db *DatabaseConfig) error {
	if !db.Enabled {
		return nil
	}
	if strings.TrimSpace(db.Host) == "" || strings.TrimSpace(db.Name) == "" || strings.TrimSpace(db.User) == "" {
		return fmt.Errorf("database.host, database.name and database.user are required when database.enabled is true")
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.MaxConnections <= 0 {
		db.MaxConnections = 4
	}
	if db.MigrationsDir == "" {
		db.MigrationsDir = defaultMigrationsDir
	}
	return nil
}

func normalizeDedupe(d *DedupeConfig) error {
	backend := strings.ToLower(strings.TrimSpace(d.Backend))
	if backend == "" {
		backend = DedupeNone
	}
	switch backend {
	case DedupeNone, DedupeMemory:
	case DedupeBolt:
		if strings.TrimSpace(d.Path) == "" {
			d.Path = defaultDedupePath
		}
	case DedupeRedis:
		if strings.TrimSpace(d.Redis.Addr) == "" {
			return fmt.Errorf("dedupe.redis.addr is required when dedupe.backend is 'redis'")
		}
		if d.Redis.Prefix == "" {
			d.Redis.Prefix = defaultRedisPrefix
		}
		if d.Redis.ConnectTimeoutSeconds <= 0 {
			d.Redis.ConnectTimeoutSeconds = 30
		}
	default:
		return fmt.Errorf("invalid dedupe.backend %q; allowed: none, memory, bolt, redis", d.Backend)
	}
	d.Backend = backend
	if d.TTLSeconds < 0 {
		return fmt.Errorf("dedupe.ttl_seconds must be >= 0")
	}
	if d.TTLSeconds == 0 {
		d.TTLSeconds = defaultDedupeTTLSeconds
	}
	return nil
}
