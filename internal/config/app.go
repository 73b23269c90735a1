package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

type AppConfig struct {
	Name          string
	Env           string
	Port          string
	BaseURL       string
	MaxUploadSize int
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		name := os.Getenv("APP_NAME")
		if name == "" {
			name = "cert-verifier"
		}
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = ":8080"
		}
		appConfig = &AppConfig{
			Name:          name,
			Env:           env,
			Port:          port,
			BaseURL:       os.Getenv("APP_URL"),
			MaxUploadSize: envInt("APP_MAX_UPLOAD_MB", 50) * 1024 * 1024,
		}
	})
	return appConfig
}

// IsProduction reports whether stack traces and pprof must stay hidden.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
