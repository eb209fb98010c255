package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the tracking service needs at boot.
type Config struct {
	Database DBConfig
	RabbitMQ MQConfig
	HTTP     HTTPConfig
	JWT      JWTConfig
	Logging  LoggingConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type MQConfig struct {
	// Enabled is false when no broker host is configured; the location
	// relay is skipped entirely in that case.
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.VHost)
}

type HTTPConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	Secret        string
	ExpiryMinutes int
}

type LoggingConfig struct {
	Level    string
	FilePath string // empty disables the rotating file sink
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Database: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getIntEnv("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "bus_pass_system"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RabbitMQ: MQConfig{
			Enabled:  getEnv("RABBITMQ_HOST", "") != "",
			Host:     getEnv("RABBITMQ_HOST", ""),
			Port:     getIntEnv("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		HTTP: HTTPConfig{
			Port:            getIntEnv("HTTP_PORT", 5000),
			ReadTimeout:     getDurationEnv("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("HTTP_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
			ExpiryMinutes: getIntEnv("JWT_EXPIRY_MINUTES", 60*24),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
