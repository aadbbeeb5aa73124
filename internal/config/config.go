package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Quotes   QuotesConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
	TransactionTopic  string
	ConsumerGroupID   string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// QuotesConfig holds quote provider configuration
type QuotesConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// JobsConfig holds background job intervals
type JobsConfig struct {
	AlertEvalInterval      time.Duration
	ObligationSyncInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "financetracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:           []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "notification-events"),
			TransactionTopic:  getEnv("KAFKA_TRANSACTION_TOPIC", "transaction-events"),
			ConsumerGroupID:   getEnv("KAFKA_CONSUMER_GROUP", "finance-tracker"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Quotes: QuotesConfig{
			BaseURL:        getEnv("QUOTES_BASE_URL", "http://localhost:9090"),
			RequestTimeout: getEnvDuration("QUOTES_REQUEST_TIMEOUT", 10*time.Second),
			CacheTTL:       getEnvDuration("QUOTES_CACHE_TTL", time.Minute),
		},
		Jobs: JobsConfig{
			AlertEvalInterval:      getEnvDuration("ALERT_EVAL_INTERVAL", time.Minute),
			ObligationSyncInterval: getEnvDuration("OBLIGATION_SYNC_INTERVAL", time.Hour),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
