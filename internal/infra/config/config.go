// Package config loads and validates the store configuration from YAML
// and NESTKV_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config selects and parameterizes the storage media behind the facade.
type Config struct {
	Local   LocalConfig   `mapstructure:"local"`
	Session SessionConfig `mapstructure:"session"`
}

// LocalConfig configures the persistent medium behind the local adapter.
type LocalConfig struct {
	Backend  string         `mapstructure:"backend" validate:"required,oneof=file postgres s3"`
	File     FileConfig     `mapstructure:"file"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	S3       S3Config       `mapstructure:"s3"`
}

// FileConfig configures the file-backed medium.
type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

// PostgresConfig configures the Postgres-backed medium.
type PostgresConfig struct {
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns int32  `mapstructure:"min_conns" validate:"gte=0"`
	Migrate  bool   `mapstructure:"migrate"`
}

// S3Config configures the S3-backed medium.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// SessionConfig configures the session-scoped medium.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

// Load reads configuration from path, or from nestkv.yaml in ./configs
// or the working directory when path is empty. A missing file is not an
// error; defaults and environment variables apply either way.
func Load(path string) (*Config, error) {
	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("nestkv")
		vip.AddConfigPath("./configs")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.SetEnvPrefix("NESTKV")
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	vip.SetDefault("local.backend", "file")
	vip.SetDefault("local.file.dir", defaultDir())
	vip.SetDefault("local.postgres.migrate", true)
	vip.SetDefault("session.ttl", "30m")
	vip.SetDefault("session.cleanup_interval", "5m")

	if err := vip.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.checkBackend(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults returns the configuration used when no file and no environment
// overrides are present.
func Defaults() *Config {
	return &Config{
		Local: LocalConfig{
			Backend:  "file",
			File:     FileConfig{Dir: defaultDir()},
			Postgres: PostgresConfig{Migrate: true},
		},
		Session: SessionConfig{
			TTL:             30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// checkBackend enforces the settings the selected backend cannot run
// without. Cross-field required_if tags cannot reach into sibling
// structs, so this stays in code.
func (c *Config) checkBackend() error {
	switch c.Local.Backend {
	case "file":
		if c.Local.File.Dir == "" {
			return fmt.Errorf("local.file.dir is required for the file backend")
		}
	case "postgres":
		if c.Local.Postgres.URL == "" {
			return fmt.Errorf("local.postgres.url is required for the postgres backend")
		}
	case "s3":
		if c.Local.S3.Bucket == "" {
			return fmt.Errorf("local.s3.bucket is required for the s3 backend")
		}
	}
	return nil
}

func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nestkv")
	}
	return filepath.Join(base, "nestkv")
}
