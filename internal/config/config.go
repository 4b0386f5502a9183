package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tokamak-network/pages-deployer/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	HostBackendGitHub = "github"
	HostBackendMemory = "memory"

	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
)

type GitHubConfig struct {
	Token   string `yaml:"token"`
	Owner   string `yaml:"owner"`
	APIURL  string `yaml:"api_url"`
	Private bool   `yaml:"private"`
}

type PostgresConfig struct {
	User     string `yaml:"user"`
	Host     string `yaml:"host"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Port     string `yaml:"port"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type VaultConfig struct {
	Address    string `yaml:"address"`
	Token      string `yaml:"token"`
	SecretPath string `yaml:"secret_path"`
}

// Config is loaded once at startup and treated as read-only afterwards.
type Config struct {
	Port            string         `yaml:"port"`
	Secret          string         `yaml:"secret"`
	HostBackend     string         `yaml:"host_backend"`
	StoreBackend    string         `yaml:"store_backend"`
	Workers         int            `yaml:"workers"`
	QueueSize       int            `yaml:"queue_size"`
	NotifyOnFailure bool           `yaml:"notify_on_failure"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	GitHub          GitHubConfig   `yaml:"github"`
	Postgres        PostgresConfig `yaml:"postgres"`
	Redis           RedisConfig    `yaml:"redis"`
	Vault           VaultConfig    `yaml:"vault"`
}

func Default() *Config {
	return &Config{
		Port:            "8000",
		HostBackend:     HostBackendGitHub,
		StoreBackend:    StoreBackendMemory,
		Workers:         5,
		QueueSize:       100,
		NotifyOnFailure: true,
		ShutdownTimeout: 30 * time.Second,
		Postgres: PostgresConfig{
			Host: "localhost",
			Port: "5432",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Vault: VaultConfig{
			SecretPath: "secret/data/pages-deployer",
		},
	}
}

// Load resolves configuration from defaults, the optional CONFIG_FILE, the
// environment and finally Vault for secrets that are still unset.
func Load(ctx context.Context) (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.Vault.Address != "" && (cfg.Secret == "" || cfg.GitHub.Token == "") {
		if err := cfg.loadVaultSecrets(ctx); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getString("PORT", c.Port)
	c.Secret = getString("SECRET", c.Secret)
	c.HostBackend = strings.ToLower(getString("HOST_BACKEND", c.HostBackend))
	c.StoreBackend = strings.ToLower(getString("STORE_BACKEND", c.StoreBackend))
	c.Workers = getInt("WORKERS", c.Workers)
	c.QueueSize = getInt("QUEUE_SIZE", c.QueueSize)
	c.NotifyOnFailure = getBool("NOTIFY_ON_FAILURE", c.NotifyOnFailure)
	c.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.GitHub.Token = getString("GITHUB_TOKEN", c.GitHub.Token)
	c.GitHub.Owner = getString("GITHUB_OWNER", c.GitHub.Owner)
	c.GitHub.APIURL = getString("GITHUB_API_URL", c.GitHub.APIURL)
	c.GitHub.Private = getBool("GITHUB_PRIVATE_REPOS", c.GitHub.Private)

	c.Postgres.User = getString("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Host = getString("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Password = getString("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.Database = getString("POSTGRES_DB", c.Postgres.Database)
	c.Postgres.Port = getString("POSTGRES_PORT", c.Postgres.Port)

	c.Redis.Addr = getString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getString("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getInt("REDIS_DB", c.Redis.DB)

	c.Vault.Address = getString("VAULT_ADDR", c.Vault.Address)
	c.Vault.Token = getString("VAULT_TOKEN", c.Vault.Token)
	c.Vault.SecretPath = getString("VAULT_SECRET_PATH", c.Vault.SecretPath)
}

func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("SECRET is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	switch c.HostBackend {
	case HostBackendGitHub:
		if c.GitHub.Token == "" {
			return fmt.Errorf("GITHUB_TOKEN is required when HOST_BACKEND=%s", HostBackendGitHub)
		}
	case HostBackendMemory:
	default:
		return fmt.Errorf("unsupported HOST_BACKEND %q", c.HostBackend)
	}
	switch c.StoreBackend {
	case StoreBackendMemory, StoreBackendPostgres, StoreBackendRedis:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	return nil
}

func getString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			logger.Warn("invalid integer in environment", zap.String("key", key), zap.Error(err))
			return fallback
		}
		return parsed
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			logger.Warn("invalid boolean in environment", zap.String("key", key), zap.Error(err))
			return fallback
		}
		return parsed
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			logger.Warn("invalid duration in environment", zap.String("key", key), zap.Error(err))
			return fallback
		}
		return parsed
	}
	return fallback
}
