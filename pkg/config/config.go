package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// BackendBaseURL is the commerce REST API this gateway fronts.
	BackendBaseURL string
	RequestTimeout time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	// SuccessReturnURL / FailReturnURL are handed to the payment provider
	// together with the external order key.
	SuccessReturnURL string
	FailReturnURL    string

	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		AppEnv:           getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		BackendBaseURL:   getEnv("BACKEND_BASE_URL", "http://localhost:9000"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		KafkaBrokers:     getEnvList("KAFKA_BROKERS", nil),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "checkout-events"),
		SuccessReturnURL: getEnv("PAYMENT_SUCCESS_URL", "http://localhost:3000/order/success"),
		FailReturnURL:    getEnv("PAYMENT_FAIL_URL", "http://localhost:3000/order/fail"),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
