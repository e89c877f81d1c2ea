package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds service-level configuration. Database settings live in the
// db package; everything else is read here from environment variables.
type Config struct {
	ServerPort string

	// BalanceServiceURL is the base URL of the brokerage-balance gateway.
	BalanceServiceURL string
	// BalanceTimeout bounds a single balance fetch.
	BalanceTimeout time.Duration

	// FXAPIKey selects the paid tier of the exchange-rate API when set.
	FXAPIKey string

	// FlatStorePath is the directory of the flat credential store.
	FlatStorePath string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		BalanceServiceURL: getEnv("BALANCE_SERVICE_URL", "http://localhost:5000"),
		BalanceTimeout:    getDurationEnv("BALANCE_TIMEOUT_SECONDS", 15*time.Second),
		FXAPIKey:          getEnv("FX_API_KEY", ""),
		FlatStorePath:     getEnv("FLAT_STORE_PATH", "data/flatstore"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
