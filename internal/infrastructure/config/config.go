package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type Config struct {
	HTTPPort     int
	StoreBackend string
	DataFile     string
	DB           DatabaseConfig
	Kafka        KafkaConfig
	LogLevel     string
	LogFormat    string
	ServiceName  string
}

func Load() Config {
	return Config{
		HTTPPort:     getEnvInt("HTTP_PORT", 8080),
		StoreBackend: getEnv("STORE_BACKEND", StoreFile),
		DataFile:     getEnv("DATA_FILE", "lms-data.json"),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "lms"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "lms"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "lms-events"),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		ServiceName: "lms",
	}
}

// Validate panics on configuration that cannot work at all.
func (c Config) Validate() {
	if c.StoreBackend != StoreFile && c.StoreBackend != StorePostgres {
		panic(fmt.Sprintf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.StoreBackend == StorePostgres && c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required for the postgres backend")
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
