// Package config loads service configuration from command-line flags,
// environment variables and a .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/listenup-flags/internal/routing"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Store     StoreConfig
	Auth      AuthConfig
	Flags     FlagsConfig
	Routing   RoutingConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// IsProduction reports whether the service runs in production.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds the on-disk location of databases and keys.
type DataConfig struct {
	Path string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default: 8080
	ReadTimeout  time.Duration // default: 15s
	WriteTimeout time.Duration // default: 15s
	IdleTimeout  time.Duration // default: 60s
	CORSOrigins  []string      // default: *
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string // sqlite (default) or badger
}

// AuthConfig holds token configuration. The key itself lives in the data
// directory and is loaded by auth.LoadOrGenerateKey.
type AuthConfig struct {
	AccessTokenDuration time.Duration // default: 24h
}

// FlagsConfig points at the optional YAML flag definitions file.
type FlagsConfig struct {
	DefinitionsFile string
	Watch           bool // re-sync when the file changes (default: true)
	Prune           bool // delete flags missing from the file (default: false)
}

// RoutingConfig overrides canonical route templates.
type RoutingConfig struct {
	CanonicalRoutes map[string]string
}

// RateLimitConfig limits the flag/unflag link routes per client IP.
type RateLimitConfig struct {
	LinkPerMinute int // default: 60, 0 disables
}

// Load reads configuration with precedence:
// 1. Command-line flags in args (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("listenup-flags", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for databases and keys")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed CORS origins (default: *)")

	storeDriver := fs.String("store", "", "Store driver: sqlite or badger (default: sqlite)")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 24h)")

	flagsFile := fs.String("flags-file", "", "YAML file with flag definitions")
	flagsWatch := fs.String("flags-watch", "", "Re-sync flag definitions when the file changes (default: true)")
	flagsPrune := fs.String("flags-prune", "", "Delete flags missing from the definitions file (default: false)")

	canonicalRoutes := fs.String("canonical-routes", "", "Route overrides: name=/path/{param};...")
	linkRateLimit := fs.String("link-rate-limit", "", "Flag link requests per minute per client (default: 60)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env file is fine; a malformed one is not.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Path: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getConfigValue(*storeDriver, "STORE_DRIVER", DriverSQLite)),
		},
		Flags: FlagsConfig{
			DefinitionsFile: getConfigValue(*flagsFile, "FLAGS_FILE", ""),
			Watch:           getBoolConfigValue(*flagsWatch, "FLAGS_WATCH", true),
			Prune:           getBoolConfigValue(*flagsPrune, "FLAGS_PRUNE", false),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Auth.AccessTokenDuration, err = getDurationConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.LinkPerMinute, err = getIntConfigValue(*linkRateLimit, "LINK_RATE_LIMIT", 60); err != nil {
		return nil, err
	}

	routes, err := routing.ParseTemplates(getConfigValue(*canonicalRoutes, "CANONICAL_ROUTES", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid CANONICAL_ROUTES: %w", err)
	}
	cfg.Routing.CanonicalRoutes = routes

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverBadger:
	default:
		return fmt.Errorf("invalid store driver: %s (must be %s or %s)", c.Store.Driver, DriverSQLite, DriverBadger)
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}
	if c.RateLimit.LinkPerMinute < 0 {
		return errors.New("link rate limit cannot be negative")
	}

	return nil
}

// expandPaths resolves ~ and relative paths, defaulting the data path to
// ~/ListenUp/flags.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.Path, err = expandPath(c.Data.Path, filepath.Join(homeDir, "ListenUp", "flags")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Flags.DefinitionsFile, err = expandPath(c.Flags.DefinitionsFile, ""); err != nil {
		return fmt.Errorf("invalid flags file: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, rest)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

// getDurationConfigValue returns a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments). Non-empty environment
// variables win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
