package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"libris-backend/internal/platform/db"
)

const envPrefix = "LIBRIS"

type ServerConfig struct {
	Addr     string `yaml:"addr" envconfig:"LIBRIS_SERVER_ADDR"`
	CertFile string `yaml:"cert_file" envconfig:"LIBRIS_SERVER_CERT_FILE"`
	KeyFile  string `yaml:"key_file" envconfig:"LIBRIS_SERVER_KEY_FILE"`
}

type Config struct {
	Mode       string            `yaml:"mode" envconfig:"LIBRIS_MODE"`
	LogLevel   string            `yaml:"log_level" envconfig:"LIBRIS_LOG_LEVEL"`
	JWTSecret  string            `yaml:"jwt_secret" envconfig:"LIBRIS_JWT_SECRET"`
	SeedOnBoot bool              `yaml:"seed_on_boot" envconfig:"LIBRIS_SEED_ON_BOOT"`
	Server     ServerConfig      `yaml:"server"`
	DB         db.DatabaseConfig `yaml:"database"`
}

// Load reads the yaml config file, then applies environment overrides.
// A missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{
		Mode:     "dev",
		LogLevel: "info",
		Server:   ServerConfig{Addr: ":8080"},
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		return nil, fmt.Errorf("mode must be dev or release, got %q", cfg.Mode)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	return cfg, nil
}
