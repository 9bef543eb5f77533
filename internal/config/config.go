package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	DatabaseDebug  bool

	HTTPAddr    string
	JWTSecret   string
	CORSOrigins []string

	TelegramToken string
	AppBaseURL    string

	SMTPHost     string
	SMTPPort     int64
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	FileStorageDir     string
	FeatureFileStorage bool

	NotifyWorkers   int64
	NotifyQueueSize int64
	ResolveWorkers  int64

	LogLevel string
}

var instance *Config
var once sync.Once

// Get возвращает конфигурацию приложения, при ошибке завершает процесс
func Get() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Debugf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", "calendar.db"),
		DatabaseDebug:  getEnvAsBool("DATABASE_DEBUG", false),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		AppBaseURL:    strings.TrimRight(getEnv("APP_BASE_URL", ""), "/"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 25),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		FileStorageDir:     getEnv("FILE_STORAGE_DIR", "storage"),
		FeatureFileStorage: getEnvAsBool("FEATURE_FILE_STORAGE", false),

		NotifyWorkers:   getEnvAsInt("NOTIFY_WORKERS", 2),
		NotifyQueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 100),
		ResolveWorkers:  getEnvAsInt("RESOLVE_WORKERS", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("could not get db url")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("could not get jwt secret")
	}
	if cfg.SMTPHost != "" && cfg.MailFrom == "" {
		return nil, errors.New("MAIL_FROM is required when SMTP_HOST is set")
	}
	if cfg.NotifyWorkers < 1 {
		cfg.NotifyWorkers = 1
	}
	if cfg.NotifyQueueSize < 1 {
		cfg.NotifyQueueSize = 1
	}

	return cfg, nil
}

// MailEnabled почта отключена, если не задан SMTP сервер
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// TelegramEnabled без токена не работают ни бот, ни пуши
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Level уровень логирования, при ошибке разбора Info
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return int64(val)
	}

	return defaultVal
}

func getEnvAsList(name string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}

	var items []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultVal
	}

	return items
}
