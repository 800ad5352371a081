// Package config provides configuration loading for the noteai CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Vault     VaultConfig     `yaml:"vault"`
	Storage   StorageConfig   `yaml:"storage"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Chat      ChatConfig      `yaml:"chat"`
}

// VaultConfig describes the document tree to index.
type VaultConfig struct {
	// Path is the vault root directory.
	Path string `yaml:"path"`
	// Extensions lists the file extensions eligible for indexing.
	Extensions []string `yaml:"extensions"`
	// ExcludeDirs lists directory names pruned from traversal at any depth.
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// StorageConfig holds the vector store location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// OpenAIConfig holds provider settings. The API key itself comes from the
// environment (APIKeyEnv), never from this file.
type OpenAIConfig struct {
	APIKeyEnv           string `yaml:"api_key_env"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	ChatModel           string `yaml:"chat_model"`
	EmbeddingCacheSize  int    `yaml:"embedding_cache_size"`
}

// RetrievalConfig holds similarity search settings.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
}

// ChatConfig holds conversation settings.
type ChatConfig struct {
	HistorySize int `yaml:"history_size"`
}

// APIKey reads the provider key from the configured environment variable.
func (c *OpenAIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// Load reads and parses the config file at path, applies defaults, and
// expands relative paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Vault.Path = expandPath(cfg.Vault.Path, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
