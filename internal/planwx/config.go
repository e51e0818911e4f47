package planwx

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TomorrowApiKey  string
	TomorrowBaseUrl string
	OpenMeteoUrl    string
	RedisAddress    string

	CacheTTL    time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
	HTTPTimeout time.Duration
}

// ConfigFromEnv reads the configuration surface from the environment,
// loading a .env file first when one exists.
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	return Config{
		TomorrowApiKey:  os.Getenv("tomorrowio_apikey"),
		TomorrowBaseUrl: os.Getenv("tomorrowio_baseurl"),
		OpenMeteoUrl:    os.Getenv("openmeteo_baseurl"),
		RedisAddress:    os.Getenv("redis_address"),
		CacheTTL:        getenvDuration("cache_ttl", 10*time.Minute),
		MaxRetries:      getenvInt("max_retries", 3),
		BaseBackoff:     getenvDuration("base_backoff", 500*time.Millisecond),
		HTTPTimeout:     getenvDuration("http_timeout", 10*time.Second),
	}
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
