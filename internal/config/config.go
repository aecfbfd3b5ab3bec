package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabasePath      string
	AllowedOrigins    []string
	AutosaveSchedule  string
	SeedReferenceData bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	// Missing .env is fine, plain env vars still apply
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8081"),
		DatabasePath:      getEnv("DATABASE_PATH", "padrino.db"),
		AllowedOrigins:    []string{getEnv("UI_ORIGIN", "http://localhost:5173")},
		AutosaveSchedule:  getEnv("AUTOSAVE_SCHEDULE", "@every 30s"),
		SeedReferenceData: getBoolEnv("SEED_REFERENCE_DATA", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
