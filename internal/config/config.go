// Package config provides configuration management for the wallet backend.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Chains    ChainsConfig
	Subscan   SubscanConfig
	Cache     CacheConfig
	Worker    WorkerConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Fiat      FiatConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// ChainsConfig holds chain configuration
type ChainsConfig struct {
	Enabled []string
	Chains  map[string]ChainConfig
}

// ChainConfig holds configuration for a specific chain
type ChainConfig struct {
	RPCURL   string
	Decimals int
	Token    string
}

// SubscanConfig holds block indexer configuration
type SubscanConfig struct {
	Endpoints         map[string]string
	APIKey            string
	RequestsPerSecond float64
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	BalanceTTL   time.Duration
	ConstantsTTL time.Duration
	RewardsTTL   time.Duration
}

// WorkerConfig holds reward refresh worker configuration
type WorkerConfig struct {
	WatchAccounts   []string
	RefreshInterval time.Duration
	Concurrency     int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// FiatConfig holds fiat price lookup configuration
type FiatConfig struct {
	BaseURL string
	TTL     time.Duration
}

// chainDecimalDefaults maps known chains to their token decimals
var chainDecimalDefaults = map[string]int{
	"polkadot": 10,
	"kusama":   12,
	"westend":  12,
}

// chainTokenDefaults maps known chains to their token symbols
var chainTokenDefaults = map[string]string{
	"polkadot": "DOT",
	"kusama":   "KSM",
	"westend":  "WND",
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional, environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "wallet_core"),
				User:           getEnv("POSTGRES_USER", "wallet"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
			},
		},
		Subscan: SubscanConfig{
			APIKey:            getEnv("SUBSCAN_API_KEY", ""),
			RequestsPerSecond: getEnvAsFloat("SUBSCAN_RPS", 4),
		},
		Cache: CacheConfig{
			BalanceTTL:   getEnvAsDuration("CACHE_BALANCE_TTL", 30*time.Second),
			ConstantsTTL: getEnvAsDuration("CACHE_CONSTANTS_TTL", 1*time.Hour),
			RewardsTTL:   getEnvAsDuration("CACHE_REWARDS_TTL", 5*time.Minute),
		},
		Worker: WorkerConfig{
			WatchAccounts:   splitList(getEnv("WORKER_WATCH_ACCOUNTS", "")),
			RefreshInterval: getEnvAsDuration("WORKER_REFRESH_INTERVAL", 10*time.Minute),
			Concurrency:     getEnvAsInt("WORKER_CONCURRENCY", 4),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 600),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 30),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Fiat: FiatConfig{
			BaseURL: getEnv("FIAT_API_BASE_URL", "https://api.coingecko.com/api/v3"),
			TTL:     getEnvAsDuration("FIAT_CACHE_TTL", 1*time.Minute),
		},
	}

	config.Chains = loadChainConfigs()
	config.Subscan.Endpoints = loadSubscanEndpoints(config.Chains.Enabled)

	return config, nil
}

// loadChainConfigs loads chain-specific configurations
func loadChainConfigs() ChainsConfig {
	enabled := splitList(getEnv("ENABLED_CHAINS", "polkadot,kusama"))

	chains := make(map[string]ChainConfig)
	for _, chain := range enabled {
		prefix := strings.ToUpper(chain)
		chains[chain] = ChainConfig{
			RPCURL:   getEnv(prefix+"_RPC_URL", fmt.Sprintf("wss://%s-rpc.polkadot.io", chain)),
			Decimals: getEnvAsInt(prefix+"_DECIMALS", chainDecimalDefaults[chain]),
			Token:    getEnv(prefix+"_TOKEN", chainTokenDefaults[chain]),
		}
	}

	return ChainsConfig{
		Enabled: enabled,
		Chains:  chains,
	}
}

// loadSubscanEndpoints loads per-chain indexer endpoints
func loadSubscanEndpoints(enabled []string) map[string]string {
	endpoints := make(map[string]string)
	for _, chain := range enabled {
		prefix := strings.ToUpper(chain)
		endpoints[chain] = getEnv(prefix+"_SUBSCAN_URL", fmt.Sprintf("https://%s.api.subscan.io", chain))
	}
	return endpoints
}

// splitList splits a comma separated list, trimming blanks
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
