// Package config loads service settings from an optional YAML file, a .env
// file and JOBKONNECT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "JOBKONNECT"

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Storage   StorageConfig   `mapstructure:"storage"`
	S3        S3Config        `mapstructure:"s3" validate:"-"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	// TrustedProxies lists the CIDRs or addresses whose X-Forwarded-For
	// header is believed when resolving the client address.
	TrustedProxies []string `mapstructure:"trusted_proxies" validate:"dive,cidr|ip"`
}

type GRPCConfig struct {
	// Addr is optional; an empty value disables the gRPC health endpoint.
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN            string `mapstructure:"dsn"`
	MaxOpenConns   int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret" validate:"required"`
	Issuer string `mapstructure:"issuer" validate:"required"`
}

type UploadConfig struct {
	Dir           string `mapstructure:"dir" validate:"required"`
	MaxBytes      int64  `mapstructure:"max_bytes" validate:"gte=1024"`
	PublicBaseURL string `mapstructure:"public_base_url" validate:"omitempty,url"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=local s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket" validate:"required"`
	Region    string `mapstructure:"region" validate:"required"`
	Endpoint  string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey string `mapstructure:"access_key" validate:"required"`
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	Prefix    string `mapstructure:"prefix"`
	Presign   bool   `mapstructure:"presign"`
}

type RateLimitConfig struct {
	Burst     int `mapstructure:"burst" validate:"gte=1"`
	PerSecond int `mapstructure:"per_second" validate:"gte=1"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
}

var defaults = map[string]any{
	"http.addr":                 ":8080",
	"http.trusted_proxies":      []string{},
	"grpc.addr":                 ":9090",
	"database.dsn":              "",
	"database.max_open_conns":   20,
	"database.max_idle_conns":   10,
	"database.migrate_on_start": false,
	"auth.secret":               "",
	"auth.issuer":               "jobkonnect",
	"upload.dir":                "uploads",
	"upload.max_bytes":          10 << 20,
	"upload.public_base_url":    "",
	"storage.driver":            "local",
	"s3.bucket":                 "",
	"s3.region":                 "us-east-1",
	"s3.endpoint":               "",
	"s3.access_key":             "",
	"s3.secret_key":             "",
	"s3.prefix":                 "uploads/",
	"s3.presign":                true,
	"rate_limit.burst":          100,
	"rate_limit.per_second":     50,
	"log.level":                 "info",
}

// Load reads configuration. file may be empty; dotenv files that do not
// exist are skipped.
func Load(file string, dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	validate := validator.New()

	var errs []error
	if err := validate.Struct(c); err != nil {
		errs = append(errs, err)
	}
	if c.Storage.Driver == "s3" {
		if err := validate.Struct(c.S3); err != nil {
			errs = append(errs, fmt.Errorf("s3: %w", err))
		}
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, errors.New("database.max_idle_conns must not exceed database.max_open_conns"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
