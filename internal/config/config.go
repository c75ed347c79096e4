package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	LogJSON        bool
	AllowedOrigins []string

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string
	RedisPassword string
	SnapshotTTL   time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret       string
	ControlTokenTTL time.Duration

	DefaultRows     int
	DefaultCols     int
	IdleGameTTL     time.Duration
	CleanupInterval time.Duration
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig reads the configuration from the environment. Backing services
// with an empty URL are disabled.
func LoadConfig() *Config {
	// Append simple_protocol for PgBouncer compatibility (pgx driver)
	dbURL := GetEnv("DATABASE_URL", "")
	if dbURL != "" {
		if u, err := url.Parse(dbURL); err == nil {
			q := u.Query()
			if q.Get("default_query_exec_mode") == "" {
				q.Set("default_query_exec_mode", "simple_protocol")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	return &Config{
		Port:           GetEnv("PORT", "8080"),
		Environment:    GetEnv("ENVIRONMENT", "development"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogJSON:        GetEnvAsBool("LOG_JSON", true),
		AllowedOrigins: GetEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisURL:      GetEnv("REDIS_URL", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		SnapshotTTL:   GetEnvAsMinutes("SNAPSHOT_TTL_MINUTES", 24*60),

		KafkaBrokers: GetEnvAsList("KAFKA_BROKERS", nil),
		KafkaTopic:   GetEnv("KAFKA_TOPIC", "connectfour-events"),

		JWTSecret:       GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		ControlTokenTTL: GetEnvAsMinutes("CONTROL_TOKEN_TTL_MINUTES", 24*60),

		DefaultRows:     GetEnvAsInt("DEFAULT_ROWS", 6),
		DefaultCols:     GetEnvAsInt("DEFAULT_COLS", 7),
		IdleGameTTL:     GetEnvAsMinutes("IDLE_GAME_TTL_MINUTES", 120),
		CleanupInterval: GetEnvAsMinutes("CLEANUP_INTERVAL_MINUTES", 10),
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvAsMinutes reads a whole number of minutes.
func GetEnvAsMinutes(key string, defaultMinutes int) time.Duration {
	return time.Duration(GetEnvAsInt(key, defaultMinutes)) * time.Minute
}

// GetEnvAsList splits a comma separated value, dropping blanks.
func GetEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
