package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mcncl/credscrub/internal/discovery"
	"github.com/mcncl/credscrub/internal/errors"
	"github.com/mcncl/credscrub/internal/logging"
	"github.com/mcncl/credscrub/internal/strategy"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for a scrub run
type Config struct {
	Root        string         `yaml:"root" toml:"root"`
	FilePattern string         `yaml:"file_pattern" toml:"file_pattern"`
	ExcludeDirs []string       `yaml:"exclude_dirs" toml:"exclude_dirs"`
	ReplaceFor  ReplaceFor     `yaml:"replace_for" toml:"replace_for"`
	Workers     int            `yaml:"workers" toml:"workers"`
	DryRun      bool           `yaml:"dry_run" toml:"dry_run"`
	Log         logging.Config `yaml:"log" toml:"log"`
}

// ReplaceFor holds one switch per replacement strategy. At most one of them
// may be on; ActiveStrategy enforces that.
type ReplaceFor struct {
	Secret bool `yaml:"secret" toml:"secret"`
	Hash   bool `yaml:"hash" toml:"hash"`
	Blank  bool `yaml:"blank" toml:"blank"`
}

// ForStrategy returns the switches with only s turned on
func ForStrategy(s strategy.Strategy) ReplaceFor {
	return ReplaceFor{
		Secret: s == strategy.PlaceholderStrategy,
		Hash:   s == strategy.HashStrategy,
		Blank:  s == strategy.BlankStrategy,
	}
}

// ActiveStrategy returns the single enabled strategy. Zero or several
// enabled switches are a configuration error.
func (r ReplaceFor) ActiveStrategy() (strategy.Strategy, error) {
	count := 0
	active := strategy.None
	if r.Secret {
		count++
		active = strategy.PlaceholderStrategy
	}
	if r.Hash {
		count++
		active = strategy.HashStrategy
	}
	if r.Blank {
		count++
		active = strategy.BlankStrategy
	}

	switch count {
	case 0:
		return strategy.None, errors.NewConfigurationError("enable one of secret, hash or blank", errors.ErrNoStrategy)
	case 1:
		return active, nil
	default:
		return strategy.None, errors.NewConfigurationError(
			fmt.Sprintf("%d replacement strategies enabled, only one is allowed", count),
			errors.ErrMultipleStrategies,
		)
	}
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Root:        ".",
		FilePattern: "appsettings.json",
		ExcludeDirs: append([]string(nil), discovery.DefaultExcludeDirs...),
		Workers:     1,
		DryRun:      false,
		Log:         logging.NewDefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML or TOML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	cfg := NewConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.NewConfigurationError(fmt.Sprintf("failed to parse config file '%s'", path), err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewConfigurationError(fmt.Sprintf("failed to parse config file '%s'", path), err)
		}
	}

	return cfg, nil
}

// configNames are looked up, in order, by FindConfigFile
var configNames = []string{".credscrub.yml", ".credscrub.yaml", ".credscrub.toml", "credscrub.yml", "credscrub.yaml", "credscrub.toml"}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFrom(currentDir)
}

func findConfigFrom(dir string) string {
	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			// Reached root directory
			return ""
		}
		dir = parentDir
	}
}

// Environment variables read by ApplyEnv
const (
	EnvRoot        = "CREDSCRUB_ROOT"
	EnvFilePattern = "CREDSCRUB_FILE_PATTERN"
	EnvStrategy    = "CREDSCRUB_STRATEGY"
	EnvWorkers     = "CREDSCRUB_WORKERS"
	EnvDryRun      = "CREDSCRUB_DRY_RUN"
	EnvLogLevel    = "CREDSCRUB_LOG_LEVEL"
	EnvLogDir      = "CREDSCRUB_LOG_DIR"
)

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set in the environment. Missing
// files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides c with CREDSCRUB_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvFilePattern); v != "" {
		c.FilePattern = v
	}
	if v := os.Getenv(EnvStrategy); v != "" {
		s, err := strategy.Parse(v)
		if err != nil {
			return err
		}
		c.ReplaceFor = ForStrategy(s)
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewConfigurationError(fmt.Sprintf("%s must be an integer, got '%s'", EnvWorkers, v), err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvDryRun); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewConfigurationError(fmt.Sprintf("%s must be a boolean, got '%s'", EnvDryRun, v), err)
		}
		c.DryRun = b
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		c.Log.Dir = v
	}
	return nil
}

// Validate checks the whole configuration and returns the strategy to use.
// It runs before any file is touched.
func (c *Config) Validate() (strategy.Strategy, error) {
	s, err := c.ReplaceFor.ActiveStrategy()
	if err != nil {
		return strategy.None, err
	}
	if err := discovery.ValidatePattern(c.FilePattern); err != nil {
		return strategy.None, err
	}
	if c.Workers < 1 {
		return strategy.None, errors.NewConfigurationError(fmt.Sprintf("workers must be at least 1, got %d", c.Workers), nil)
	}
	if err := c.Log.Validate(); err != nil {
		return strategy.None, errors.NewConfigurationError("invalid log settings", err)
	}
	return s, nil
}
