// Package config loads and validates application configuration from
// environment variables. All problems found while loading are collected and
// reported together so that a misconfigured deployment fails once, with the
// full list of what is wrong.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DatabaseConfig holds settings for the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int
	// MigrationsPath is the directory golang-migrate reads SQL files from.
	MigrationsPath string
}

// AuthConfig holds authentication-related settings.
type AuthConfig struct {
	// BcryptCost is the work factor used when hashing passwords.
	BcryptCost int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration for the application.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// LoadConfig reads all environment variables and returns the assembled
// AppConfig, or a single error aggregating everything that was missing or
// malformed.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbCfg := &DatabaseConfig{
		Host:           getOptionalEnv("DB_HOST", "localhost"),
		Port:           getOptionalEnvInt("DB_PORT", 5432, &errs),
		User:           getRequiredEnv("DB_USER", &errs),
		Password:       getRequiredEnv("DB_PASSWORD", &errs),
		DBName:         getRequiredEnv("DB_NAME", &errs),
		MaxConns:       getOptionalEnvInt("DB_MAX_CONNS", 10, &errs),
		MigrationsPath: getOptionalEnv("MIGRATIONS_PATH", "./migrations"),
	}
	if dbCfg.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be at least 1, got %d", dbCfg.MaxConns))
	}

	authCfg := &AuthConfig{
		BcryptCost: getOptionalEnvInt("BCRYPT_COST", bcrypt.DefaultCost, &errs),
	}
	if authCfg.BcryptCost < bcrypt.MinCost || authCfg.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Sprintf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, authCfg.BcryptCost))
	}

	serverCfg := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		Database: dbCfg,
		Auth:     authCfg,
		Server:   serverCfg,
	}, nil
}
