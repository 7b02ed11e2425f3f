package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Env  string
	Port int

	StoreDriver string
	MongoURI    string
	MongoDB     string

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	MaxUploadBytes     int64

	SignupRateLimit  int
	SignupRateWindow time.Duration

	// empty disables tracing
	OTLPEndpoint string

	// values that fell back to defaults, logged once the logger exists
	Warnings []string
}

func Load() Config {
	// a missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	var warnings []string
	envInt := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			warnings = append(warnings, err.Error())
		}
		return v
	}

	return Config{
		Env:                getEnv("APP_ENV", "dev"),
		Port:               envInt("PORT", 5000),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:           mongoURI(),
		MongoDB:            getEnv("MONGO_DB", "socialapp"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RequestTimeout:     time.Duration(envInt("REQUEST_TIMEOUT_MS", 5000)) * time.Millisecond,
		MaxUploadBytes:     int64(envInt("MAX_UPLOAD_BYTES", 10<<20)),
		SignupRateLimit:    envInt("SIGNUP_RATE_LIMIT", 20),
		SignupRateWindow:   time.Duration(envInt("SIGNUP_RATE_WINDOW_SEC", 60)) * time.Second,
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Warnings:           warnings,
	}
}

// NEXT_PUBLIC_MONGO_URI is what older deployments of the frontend repo set.
func mongoURI() string {
	if v := os.Getenv("MONGO_URI"); v != "" {
		return v
	}

	return getEnv("NEXT_PUBLIC_MONGO_URI", "mongodb://127.0.0.1:27017")
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// getEnvInt returns fallback with an error when the value is not a number.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	num, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s=%q is not a number, using %d", key, v, fallback)
	}

	return num, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0, 4)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}
