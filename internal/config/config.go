// Package config provides application configuration from command-line flags,
// environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage paths.
type DataConfig struct {
	// BasePath is the root data directory. The document store, the search
	// index and the audit log all live under it.
	BasePath string
}

// DocumentPath returns the directory for the document store.
func (d DataConfig) DocumentPath() string {
	return filepath.Join(d.BasePath, "documents")
}

// SearchPath returns the directory for the search index.
func (d DataConfig) SearchPath() string {
	return filepath.Join(d.BasePath, "search")
}

// AuditPath returns the path of the audit log database.
func (d DataConfig) AuditPath() string {
	return filepath.Join(d.BasePath, "audit.db")
}

// BackupPath returns the directory backup archives are written to.
func (d DataConfig) BackupPath() string {
	return filepath.Join(d.BasePath, "backups")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RateLimitConfig holds per-client write throttling configuration.
type RateLimitConfig struct {
	Enabled bool
	// PerSecond is the sustained request rate allowed per client.
	PerSecond float64
	// Burst is the number of requests a client may send above the
	// sustained rate before being throttled.
	Burst int
}

// SearchConfig holds search index configuration.
type SearchConfig struct {
	Enabled bool
}

// Load reads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	rateLimitEnabled := flag.String("rate-limit", "", "Throttle write requests per client (default: true)")
	rateLimitPerSecond := flag.String("rate-limit-per-second", "", "Sustained write rate per client (default: 10)")
	rateLimitBurst := flag.String("rate-limit-burst", "", "Write burst allowance per client (default: 20)")
	searchEnabled := flag.String("search", "", "Maintain the full-text search index (default: true)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Missing .env files are fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name: getValue(*serverName, "SERVER_NAME", "Storefront Server"),
			Port: getValue(*serverPort, "SERVER_PORT", "8080"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getBool(*rateLimitEnabled, "RATE_LIMIT", true),
			PerSecond: float64(getInt(*rateLimitPerSecond, "RATE_LIMIT_PER_SECOND", 10)),
			Burst:     getInt(*rateLimitBurst, "RATE_LIMIT_BURST", 20),
		},
		Search: SearchConfig{
			Enabled: getBool(*searchEnabled, "SEARCH", true),
		},
	}

	var err error
	cfg.Server.ReadTimeout, err = getDuration(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = getDuration(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = getDuration(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.PerSecond <= 0 {
			return fmt.Errorf("rate limit per-second must be positive, got %v", c.RateLimit.PerSecond)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimit.Burst)
		}
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute, defaulting to
// ~/storefront/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "storefront", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, uses defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getValue returns the first non-empty value from flag, env var, or default.
func getValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBool reads a bool from flag, env var, or default.
// "true", "1", "yes" (case-insensitive) count as true; anything else is false.
func getBool(flagValue, envKey string, defaultValue bool) bool {
	strValue := getValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getInt reads an int from flag, env var, or default.
func getInt(flagValue, envKey string, defaultValue int) int {
	strValue := getValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDuration reads a duration from flag, env var, or default.
func getDuration(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
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

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Real environment variables win over .env entries.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
