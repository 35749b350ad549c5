// Package config loads application settings from .env, an optional
// config.yaml and the process environment.
// File: config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
)

// DefaultAdminPassword is the compiled-in results password used when
// neither ADMIN_PASSWORD nor ADMIN_PASSWORD_HASH is set.
const DefaultAdminPassword = "admin" // #nosec G101

// Config holds every setting the server needs.
type Config struct {
	Env            string `mapstructure:"app_env"`
	Port           int    `mapstructure:"port"`
	ApplicationURL string `mapstructure:"application_url"`
	TemplatesDir   string `mapstructure:"templates_dir"`
	LogDir         string `mapstructure:"log_dir"`

	SessionSecret string `mapstructure:"session_secret"`
	SessionMaxAge int    `mapstructure:"session_max_age"`

	EmailDomain       string `mapstructure:"email_domain"`
	AdminPassword     string `mapstructure:"admin_password"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`

	StoreDriver    string `mapstructure:"store_driver"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	DynamoTable    string `mapstructure:"dynamo_table"`
	DynamoEndpoint string `mapstructure:"dynamo_endpoint"`
	AWSRegion      string `mapstructure:"aws_region"`

	MetricsEnabled   bool   `mapstructure:"metrics_enabled"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`
	TracingEnabled   bool   `mapstructure:"tracing_enabled"`
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("application_url", "http://localhost:8080")
	v.SetDefault("templates_dir", "templates")
	v.SetDefault("log_dir", "")
	v.SetDefault("session_secret", "school-vote-dev-secret")
	v.SetDefault("session_max_age", 3600*8)
	v.SetDefault("email_domain", "@escola.pr.gov.br")
	v.SetDefault("admin_password", DefaultAdminPassword)
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("store_driver", DriverSQLite)
	v.SetDefault("sqlite_path", "./data/votes.db")
	v.SetDefault("dynamo_table", "votes")
	v.SetDefault("dynamo_endpoint", "")
	v.SetDefault("aws_region", "sa-east-1")
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("metrics_namespace", "SchoolVote")
	v.SetDefault("tracing_enabled", false)
}

// Load reads .env (if present), then config.yaml from ./config or the
// given search paths, then environment variables. Environment wins.
func Load(searchPaths ...string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"./config", "."}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverDynamoDB:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if !strings.HasPrefix(c.EmailDomain, "@") {
		return fmt.Errorf("email domain %q must start with @", c.EmailDomain)
	}
	if c.SessionSecret == "" {
		return errors.New("session secret must not be empty")
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}
