package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database (optional, runtime setting overrides)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (optional, event mirror and operator notices)
	RedisURL string

	// Server
	Port        string
	FrontendURL string
	StaticDir   string

	// Game
	GameConfigPath   string
	TickIntervalMs   int
	SendBufferSize   int
	MirrorBufferSize int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "3000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		StaticDir:   getEnv("STATIC_DIR", ""),

		// Game
		GameConfigPath:   getEnv("GAME_CONFIG_PATH", "config.json"),
		TickIntervalMs:   getEnvInt("TICK_INTERVAL_MS", 50),
		SendBufferSize:   getEnvInt("WS_SEND_BUFFER", 64),
		MirrorBufferSize: getEnvInt("REDIS_MIRROR_BUFFER", 1024),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
