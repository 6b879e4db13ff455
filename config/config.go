/*
Package config loads the server configuration.

SOURCES (later wins):
  1. Built-in defaults
  2. An optional config file (DAYBOOK_CONFIG, or ./daybook.yaml)
  3. A .env file in the working directory, if present
  4. Environment variables prefixed DAYBOOK_ (DAYBOOK_PORT, DAYBOOK_DB, ...)
  5. Command-line flags, applied by the caller through the Set* helpers

KEYS:
  port             HTTP port (8080)
  db               SQLite path (daybook.db), ":memory:" for a throwaway store
  database_url     PostgreSQL URL; when set it replaces SQLite
  mode             "debug" or "release"
  scan_interval    how often due-date notifications are rescanned (1h)
  allowed_origins  CORS origins, comma separated
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DAYBOOK"

// Config is the resolved server configuration.
type Config struct {
	Port           int
	DBPath         string
	DatabaseURL    string
	Mode           string
	ScanInterval   time.Duration
	AllowedOrigins []string
}

// UsePostgres reports whether the PostgreSQL store is configured.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("db", "daybook.db")
	v.SetDefault("database_url", "")
	v.SetDefault("mode", "release")
	v.SetDefault("scan_interval", time.Hour)
	v.SetDefault("allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
}

// Load reads the configuration. envFiles are passed to godotenv; with none
// given, ./.env is tried. Missing env and config files are not errors.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("daybook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		Port:           v.GetInt("port"),
		DBPath:         v.GetString("db"),
		DatabaseURL:    v.GetString("database_url"),
		Mode:           v.GetString("mode"),
		ScanInterval:   v.GetDuration("scan_interval"),
		AllowedOrigins: splitList(v.GetStringSlice("allowed_origins")),
	}
	return cfg, cfg.Validate()
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" && c.DBPath == "" {
		return errors.New("either db or database_url must be set")
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan_interval must be positive, got %s", c.ScanInterval)
	}
	return nil
}

// splitList accepts both list values and one comma-separated string.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
