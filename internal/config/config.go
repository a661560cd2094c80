package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	URL      string // DATABASE_URL, если задан, перекрывает остальные поля
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

type Config struct {
	HTTPPort       string
	GRPCPort       string // пустой - gRPC health выключен
	LogLevel       string
	LogFormat      string
	RabbitMQURL    string // пустой - аудит не публикуется
	AuditQueue     string
	PageSize       int
	MigrateOnStart bool
	Location       *time.Location
	DB             DatabaseConfig
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		GRPCPort:    os.Getenv("GRPC_PORT"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		AuditQueue:  getEnv("AUDIT_QUEUE", "entity_audit_logs"),
		DB: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "roster"),
			Password: getEnv("DB_PASSWORD", "roster"),
			DBName:   getEnv("DB_NAME", "roster"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	var err error
	if cfg.PageSize, err = getInt("PAGE_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	maxConns, err := getInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, err
	}
	cfg.DB.MaxConns = int32(maxConns)

	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", true); err != nil {
		return nil, err
	}

	tz := getEnv("APP_TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", tz, err)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// DSN - строка подключения для pgx и golang-migrate
func (db *DatabaseConfig) DSN() string {
	if db.URL != "" {
		return db.URL
	}
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(db.User, db.Password),
		Host:     db.Host + ":" + db.Port,
		Path:     "/" + db.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(db.SSLMode),
	}
	return u.String()
}
