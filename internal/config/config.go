package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (empty disables persistence)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (empty disables caching, the event bus and the idle worker)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Pitch geometry used when a create request carries none
	ScreenWidth            float64
	ScreenHeight           float64
	PitchVerticalPadding   float64
	PitchHorizontalPadding float64

	// Simulation
	TickIntervalMs int
	GoalPauseMs    int

	// Session lifecycle
	SessionExpiryMinutes  int
	IdleTimeoutSeconds    int
	IdleWorkerPollSeconds int

	// Security
	JWTSecret             string
	PlayerTokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Pitch
		ScreenWidth:            getEnvFloat("PITCH_SCREEN_WIDTH_PX", 1080),
		ScreenHeight:           getEnvFloat("PITCH_SCREEN_HEIGHT_PX", 1920),
		PitchVerticalPadding:   getEnvFloat("PITCH_VERTICAL_PADDING_PX", 50),
		PitchHorizontalPadding: getEnvFloat("PITCH_HORIZONTAL_PADDING_PX", 28),

		// Simulation
		TickIntervalMs: getEnvInt("TICK_INTERVAL_MS", 16),
		GoalPauseMs:    getEnvInt("GOAL_PAUSE_MS", 3000),

		// Session lifecycle
		SessionExpiryMinutes:  getEnvInt("SESSION_EXPIRY_MINUTES", 30),
		IdleTimeoutSeconds:    getEnvInt("IDLE_TIMEOUT_SECONDS", 300),
		IdleWorkerPollSeconds: getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		PlayerTokenTTLMinutes: getEnvInt("PLAYER_TOKEN_TTL_MINUTES", 120),
	}
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
