package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                 string
	DatabaseURL          string
	AdminToken           string
	SessionWindowSeconds int // clustering window for session grouping
	UploadTTLMinutes     int // how long upload batches stay fetchable
	MaxUploadBytes       int64
}

func Load() Config {
	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		AdminToken:           os.Getenv("ADMIN_TOKEN"),
		SessionWindowSeconds: getEnvInt("SESSION_WINDOW_SECONDS", 20),
		UploadTTLMinutes:     getEnvInt("UPLOAD_TTL_MINUTES", 30),
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_BYTES", 16<<20)),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
