package config

import (
	"os"
)

type Config struct {
	SettingsPath string
	LogLevel     string
}

func Load() *Config {
	return &Config{
		SettingsPath: getEnv("MODELKIT_SETTINGS", ""),
		LogLevel:     getEnv("MODELKIT_LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
