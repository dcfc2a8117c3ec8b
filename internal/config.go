package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// StorageBackends lists the accepted storage.backend values
var StorageBackends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path is the state file (file) or database (sqlite). "~" is expanded.
	Path          string `yaml:"path,omitempty"`
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
	KeyPrefix     string `yaml:"key_prefix,omitempty"`
}

const (
	ProviderAuto   = "auto"
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// ExtractionProviders lists the accepted extraction.provider values
var ExtractionProviders = []string{ProviderAuto, ProviderGemini, ProviderLocal}

type ExtractionConfig struct {
	// Provider picks the extractor. auto uses Gemini when an API key is
	// set and local detection otherwise.
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	// APIKeyEnv names the environment variable holding the API key. The key
	// itself is never stored in the config file.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	// Tolerance is the price drift local detection accepts between charges.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Extraction ExtractionConfig `yaml:"extraction"`

	// Currency is used for totals. Empty means detect from the system locale, then USD.
	Currency      string `yaml:"currency,omitempty"`
	UpcomingLimit int    `yaml:"upcoming_limit,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
}

// DefaultConfigDir returns ~/.subtrack
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subtrack"
	}
	return filepath.Join(home, ".subtrack")
}

// DefaultConfigPath returns the default config file path (~/.subtrack/config.yaml)
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// NewDefaultConfig returns the config used when no file exists.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:   BackendFile,
			Path:      filepath.Join(DefaultConfigDir(), "state.json"),
			RedisAddr: "localhost:6379",
			KeyPrefix: DefaultKeyPrefix,
		},
		Extraction: ExtractionConfig{
			Provider:  ProviderAuto,
			Model:     DefaultModel,
			APIKeyEnv: "GEMINI_API_KEY",
			Tolerance: DefaultTolerance,
		},
		UpcomingLimit: DefaultUpcomingLimit,
		LogLevel:      "warn",
	}
}

// LoadConfig reads the YAML file at path on top of the defaults. A missing
// file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	defaults := NewDefaultConfig()

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if !slices.Contains(StorageBackends, c.Storage.Backend) {
		return fmt.Errorf("invalid storage backend %q (available: %v)", c.Storage.Backend, StorageBackends)
	}

	if c.Storage.Path == "" {
		c.Storage.Path = defaults.Storage.Path
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Path == defaults.Storage.Path {
		c.Storage.Path = filepath.Join(DefaultConfigDir(), "state.db")
	}
	c.Storage.Path = ExpandHome(c.Storage.Path)
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = DefaultKeyPrefix
	}

	c.Extraction.Provider = strings.ToLower(strings.TrimSpace(c.Extraction.Provider))
	if c.Extraction.Provider == "" {
		c.Extraction.Provider = ProviderAuto
	}
	if !slices.Contains(ExtractionProviders, c.Extraction.Provider) {
		return fmt.Errorf("invalid extraction provider %q (available: %v)", c.Extraction.Provider, ExtractionProviders)
	}
	if c.Extraction.Tolerance <= 0 {
		c.Extraction.Tolerance = DefaultTolerance
	}
	if c.Extraction.Model == "" {
		c.Extraction.Model = DefaultModel
	}
	if c.Extraction.APIKeyEnv == "" {
		c.Extraction.APIKeyEnv = defaults.Extraction.APIKeyEnv
	}
	if c.UpcomingLimit <= 0 {
		c.UpcomingLimit = DefaultUpcomingLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	return nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// APIKey loads .env from the working directory (if present) and returns
// the extraction API key from the configured variable.
func (c *Config) APIKey() string {
	_ = godotenv.Load()
	return strings.TrimSpace(os.Getenv(c.Extraction.APIKeyEnv))
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
