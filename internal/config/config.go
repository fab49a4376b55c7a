// Package config resolves runtime configuration for mcp-docs: the database
// location and the embedding provider settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration, resolved once at startup in
// order of increasing precedence: hardcoded defaults, the YAML config file,
// then environment variables.
type Config struct {
	// DatabaseURL is the resolved store location: a filesystem path,
	// "file:..." DSN, or ":memory:".
	DatabaseURL string

	Embedding EmbeddingConfig
	Crawl     CrawlConfig

	LogLevel  string
	LogFormat string
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string
	Model      string
	Dimensions int
	BaseURL    string
	APIKey     string
}

// CrawlConfig points the web-crawl fetcher at its provider.
type CrawlConfig struct {
	BaseURL string
	APIKey  string
}

const (
	defaultProvider   = "openai"
	defaultModel      = "text-embedding-3-small"
	defaultDimensions = 1536
)

// fileConfig mirrors Config for YAML unmarshaling. Fields are plain values:
// only non-zero fields override the defaults, so a field the file sets to
// its zero value is treated the same as one the file leaves out.
type fileConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Embedding   struct {
		Provider   string `yaml:"provider"`
		Model      string `yaml:"model"`
		Dimensions int    `yaml:"dimensions"`
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
	} `yaml:"embedding"`
	Crawl struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"crawl"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load resolves configuration from the YAML config file and the
// environment, applying environment variables as the final override.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: resolveDatabaseURL(),
		Embedding: EmbeddingConfig{
			Provider:   defaultProvider,
			Model:      defaultModel,
			Dimensions: defaultDimensions,
		},
		Crawl: CrawlConfig{
			BaseURL: "https://api.firecrawl.dev",
		},
		LogLevel:  "info",
		LogFormat: "json",
	}

	if err := mergeConfigFile(cfg, configFilePath()); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		dims, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EMBEDDING_DIMENSIONS %q: %w", v, err)
		}
		if dims <= 0 {
			return nil, fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", dims)
		}
		cfg.Embedding.Dimensions = dims
	}

	return cfg, nil
}

// mergeConfigFile reads the YAML config file at path, if present, and
// overlays any fields it sets onto cfg. A missing file is not an error.
func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if parsed.DatabaseURL != "" {
		cfg.DatabaseURL = parsed.DatabaseURL
	}
	if parsed.Embedding.Provider != "" {
		cfg.Embedding.Provider = parsed.Embedding.Provider
	}
	if parsed.Embedding.Model != "" {
		cfg.Embedding.Model = parsed.Embedding.Model
	}
	if parsed.Embedding.Dimensions != 0 {
		cfg.Embedding.Dimensions = parsed.Embedding.Dimensions
	}
	if parsed.Embedding.BaseURL != "" {
		cfg.Embedding.BaseURL = parsed.Embedding.BaseURL
	}
	if parsed.Embedding.APIKey != "" {
		cfg.Embedding.APIKey = parsed.Embedding.APIKey
	}
	if parsed.Crawl.BaseURL != "" {
		cfg.Crawl.BaseURL = parsed.Crawl.BaseURL
	}
	if parsed.Crawl.APIKey != "" {
		cfg.Crawl.APIKey = parsed.Crawl.APIKey
	}
	if parsed.LogLevel != "" {
		cfg.LogLevel = parsed.LogLevel
	}
	if parsed.LogFormat != "" {
		cfg.LogFormat = parsed.LogFormat
	}
	return nil
}

// applyEnvOverrides overlays environment variables onto cfg, taking
// precedence over both defaults and the YAML config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	cfg.Embedding.Provider = envOr("EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.Model = envOr("EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.BaseURL = envOr("EMBEDDING_BASE_URL", cfg.Embedding.BaseURL)
	cfg.Embedding.APIKey = envOr("EMBEDDING_API_KEY", cfg.Embedding.APIKey)
	cfg.Crawl.BaseURL = envOr("CRAWL_BASE_URL", cfg.Crawl.BaseURL)
	cfg.Crawl.APIKey = envOr("CRAWL_API_KEY", cfg.Crawl.APIKey)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
}

// configFilePath resolves the YAML config file location: MCP_DOCS_CONFIG,
// then $XDG_CONFIG_HOME/mcp-docs/config.yaml, then
// ~/.config/mcp-docs/config.yaml.
func configFilePath() string {
	if v := os.Getenv("MCP_DOCS_CONFIG"); v != "" {
		return v
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mcp-docs", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mcp-docs", "config.yaml")
	}
	return filepath.Join(home, ".config", "mcp-docs", "config.yaml")
}

// resolveDatabaseURL implements the on-disk database path rule:
// $XDG_DATA_HOME/mcp-docs/docs.db, or ~/.local/share/mcp-docs/docs.db,
// overridable via DATABASE_URL (which may be a "file:..." DSN or ":memory:").
func resolveDatabaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mcp-docs", "docs.db")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mcp-docs", "docs.db")
	}
	return filepath.Join(home, ".local", "share", "mcp-docs", "docs.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
