package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// SessionTTL is how long a QR session stays scannable after creation.
func SessionTTL() time.Duration {
	return GetDurationEnv("SESSION_TTL", 15*time.Minute)
}

// CliqRequestTTL is how long a single bank-transfer request stays valid.
// Always shorter than the parent session TTL.
func CliqRequestTTL() time.Duration {
	return GetDurationEnv("CLIQ_REQUEST_TTL", 5*time.Minute)
}

// GatewayTimeout bounds every external settlement call.
func GatewayTimeout() time.Duration {
	return GetDurationEnv("GATEWAY_TIMEOUT", 30*time.Second)
}

// DefaultCurrency is the settlement currency for new sessions.
func DefaultCurrency() string {
	return GetEnv("DEFAULT_CURRENCY", "JOD")
}
