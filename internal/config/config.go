package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	EngineBundleURL   string
	EngineFetchTime   time.Duration
	ArchiveTTL        time.Duration
	MaxTemplateSizeMB int
	SeedEnabled       bool
	SeedToken         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLASSREPORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ClassReport API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("engine.fetch_timeout", "10s")
	v.SetDefault("archive.ttl", "30m")
	v.SetDefault("template.max_size_mb", 10)

	fetchTimeout, err := time.ParseDuration(v.GetString("engine.fetch_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid engine fetch timeout: %w", err)
	}

	archiveTTL, err := time.ParseDuration(v.GetString("archive.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid archive ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		EngineBundleURL:   v.GetString("engine.bundle_url"),
		EngineFetchTime:   fetchTimeout,
		ArchiveTTL:        archiveTTL,
		MaxTemplateSizeMB: v.GetInt("template.max_size_mb"),
		SeedEnabled:       v.GetBool("seed.enabled"),
		SeedToken:         v.GetString("seed.token"),
	}

	if cfg.MaxTemplateSizeMB <= 0 {
		cfg.MaxTemplateSizeMB = 10
	}

	return cfg, nil
}
