package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the loaded configuration
type Config struct {
	Addr              string
	Env               string
	BackendURL        string
	RequestTimeout    time.Duration
	RedisURL          string
	JWTSecret         string
	ShippingCostCents int64
}

// Load loads configuration from the .env file and environment variables
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	return Config{
		Addr:              getEnv("CLIENT_ADDR", ":8090"),
		Env:               getEnv("APP_ENV", "development"),
		BackendURL:        getEnv("BACKEND_URL", "http://localhost:8080"),
		RequestTimeout:    timeout,
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		ShippingCostCents: getEnvInt64("SHIPPING_COST_CENTS", 1500),
	}
}

// Helper to get an environment variable or return a default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		log.Printf("invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}
