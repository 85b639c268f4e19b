package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration for both the sync client and the
// reference backend.
type Config struct {
	Env      string
	LogLevel string

	// Remote backend, as seen by the client
	RemoteURL       string
	AnonKey         string
	RequestTimeout  time.Duration
	RemoteRateLimit float64

	// Local cache
	CachePath string

	// Connectivity
	ProbeInterval time.Duration

	// Metrics listener for the client's watch mode; empty disables it
	MetricsAddr string

	// Server
	Port      string
	PublicURL string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret            string
	JWTExpirationDur     time.Duration
	RefreshExpirationDur time.Duration

	// One-time sign-up codes
	OTPTTL time.Duration

	// Per-IP rate limiting on the backend
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		RemoteURL:       strings.TrimRight(getEnv("FINTRACK_REMOTE_URL", "http://localhost:8080"), "/"),
		AnonKey:         getEnv("FINTRACK_ANON_KEY", "fintrack-dev-anon-key"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 15*time.Second),
		RemoteRateLimit: getFloat("REMOTE_RATE_LIMIT", 10),

		CachePath: getEnv("FINTRACK_CACHE_PATH", "fintrack.db"),

		ProbeInterval: getDuration("CONNECTIVITY_PROBE_INTERVAL", 10*time.Second),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		Port:      getEnv("PORT", "8080"),
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fintrack"),
		DBPassword: getEnv("DB_PASSWORD", "fintrack"),
		DBName:     getEnv("DB_NAME", "fintrack"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "fintrack-backend.db"),

		JWTSecret:            getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTExpirationDur:     getDuration("JWT_EXPIRES_IN", time.Hour),
		RefreshExpirationDur: getDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),

		OTPTTL: getDuration("OTP_TTL", 10*time.Minute),

		RateLimitPerSecond: getFloat("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 40),
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getFloat(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return f
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
