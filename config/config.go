// Package config loads the shopfront client configuration from YAML with
// first-match discovery: an explicit path, then ./shopfront.yaml, then
// ~/.shopfront/config.yaml. Environment variables override file values for
// the settings automation most often needs to pin.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "shopfront.yaml"
	homeConfigDir     = ".shopfront"
	homeConfigName    = "config.yaml"

	// Environment overrides.
	envAPIURL    = "SHOPFRONT_API_URL"
	envStorePath = "SHOPFRONT_STORE_PATH"
)

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"
	StoreBackendMemory = "memory"
)

// Config is the client configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Store  StoreConfig  `yaml:"store"`
	Notice NoticeConfig `yaml:"notice"`
}

// APIConfig configures the backend collaborator.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:3000/api".
	BaseURL string `yaml:"base_url"`

	// Timeout is the whole-request timeout handed to the HTTP client, as a
	// Go duration string ("30s", "1m").
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration returns the parsed request timeout. Call validate (via
// Load) first; an unparseable value degrades to the default here.
func (c APIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// StoreConfig configures the persistent credential store.
type StoreConfig struct {
	// Backend is one of "file", "sqlite", or "memory".
	Backend string `yaml:"backend"`

	// Path overrides the default store location.
	Path string `yaml:"path"`
}

// NoticeConfig configures the notification channel.
type NoticeConfig struct {
	// TTL is the auto-dismiss delay for notices, as a Go duration string.
	TTL string `yaml:"ttl"`
}

// TTLDuration returns the parsed auto-dismiss delay, defaulting to three
// seconds.
func (c NoticeConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000/api",
			Timeout: "30s",
		},
		Store: StoreConfig{
			Backend: StoreBackendFile,
		},
		Notice: NoticeConfig{
			TTL: "3s",
		},
	}
}

// Discover resolves the config file location with first-match semantics.
func Discover(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverFrom(explicitPath, cwd, homeDir)
}

// DiscoverFrom is a testable variant of Discover.
func DiscoverFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// If explicit path is set, not found is an error.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load reads and validates the config file at path, layered over Default.
// Unknown keys are rejected so typos surface instead of silently applying
// defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	clean := strings.TrimSpace(path)
	if clean != "" {
		// #nosec G304 -- path resolved from explicit local config discovery.
		data, err := os.ReadFile(clean)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %q: %w", clean, err)
		}

		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %q: %w", clean, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envAPIURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envStorePath)); v != "" {
		cfg.Store.Path = v
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("config: api.base_url is required")
	}
	switch c.Store.Backend {
	case StoreBackendFile, StoreBackendSQLite, StoreBackendMemory, "":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("config: invalid api.timeout: %w", err)
		}
	}
	if c.Notice.TTL != "" {
		if d, err := time.ParseDuration(c.Notice.TTL); err != nil {
			return fmt.Errorf("config: invalid notice.ttl: %w", err)
		} else if d < 0 {
			return errors.New("config: notice.ttl cannot be negative")
		}
	}
	return nil
}
