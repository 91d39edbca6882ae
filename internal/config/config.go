package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Поддерживаемые хранилища токенов
const (
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	APIBaseURL    string `mapstructure:"API_BASE_URL"`
	ChatWSURL     string `mapstructure:"CHAT_WS_URL"`
	Environment   string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	SessionBackend string `mapstructure:"SESSION_BACKEND"`
	DBDSN          string `mapstructure:"DB_DSN"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`

	HTTPAddr   string        `mapstructure:"HTTP_ADDR"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`

	ReminderSchedule string        `mapstructure:"REMINDER_SCHEDULE"`
	ReminderWindow   time.Duration `mapstructure:"REMINDER_WINDOW"`
}

var keys = []string{
	"TELEGRAM_TOKEN", "API_BASE_URL", "CHAT_WS_URL", "ENV", "LOG_LEVEL",
	"SESSION_BACKEND", "DB_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"HTTP_ADDR", "API_TIMEOUT", "REMINDER_SCHEDULE", "REMINDER_WINDOW",
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  No %s file found, using environment variables", envFile)
	} else {
		log.Printf("✅ Loaded configuration from %s", envFile)
	}

	v := viper.New()
	setDefaults(v)
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.ChatWSURL == "" && cfg.APIBaseURL != "" {
		wsURL, err := DeriveWSURL(cfg.APIBaseURL)
		if err != nil {
			return nil, err
		}
		cfg.ChatWSURL = wsURL
	}
	cfg.ChatWSURL = strings.TrimRight(cfg.ChatWSURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_BACKEND", SessionBackendPostgres)
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HTTP_ADDR", ":8081")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("REMINDER_SCHEDULE", "0 */5 * * * *")
	v.SetDefault("REMINDER_WINDOW", "30m")
}

// Проверяем обязательные поля
func (c *Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required but not set")
	}
	switch c.SessionBackend {
	case SessionBackendPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for %s session backend", SessionBackendPostgres)
		}
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for %s session backend", SessionBackendRedis)
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}

// DeriveWSURL строит адрес WebSocket из базового адреса API (http -> ws, https -> wss)
func DeriveWSURL(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("parse API_BASE_URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported API_BASE_URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
