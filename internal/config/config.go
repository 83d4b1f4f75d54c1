// Package config handles global configuration and data paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docquery/docquery/internal/answer"
	"github.com/docquery/docquery/internal/chunker"
	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in
// $XDG_CONFIG_HOME/docquery/config.yml.
type Config struct {
	DataDir         string  `yaml:"data_dir,omitempty"`         // Where index.gob and chunks.db live
	Provider        string  `yaml:"provider,omitempty"`         // ollama or openai
	EmbedModel      string  `yaml:"embed_model,omitempty"`      // Embedding model name
	EmbedDimensions int     `yaml:"embed_dimensions,omitempty"` // Vector dimensionality of the model
	OllamaURL       string  `yaml:"ollama_url,omitempty"`       // Ollama base URL
	QAEndpoint      string  `yaml:"qa_endpoint,omitempty"`      // Extractive QA endpoint; empty uses the lexical extractor
	ChunkSize       int     `yaml:"chunk_size,omitempty"`       // Chunk width in characters
	ChunkOverlap    int     `yaml:"chunk_overlap,omitempty"`    // Characters shared between consecutive chunks
	MinConfidence   float64 `yaml:"min_confidence,omitempty"`   // Floor below which no answer is reported
	AdminTokenHash  string  `yaml:"admin_token_hash,omitempty"` // bcrypt hash gating destructive commands
}

const (
	// ConfigDirName is the directory name under XDG_CONFIG_HOME.
	ConfigDirName = "docquery"
	// ConfigFileName is the config file name.
	ConfigFileName = "config.yml"
	// DataDirName is the directory name under XDG_DATA_HOME.
	DataDirName = "docquery"

	// ProviderOllama selects the Ollama embedding provider.
	ProviderOllama = "ollama"
	// ProviderOpenAI selects the OpenAI embedding provider.
	ProviderOpenAI = "openai"

	// EnvDataDir overrides the data directory.
	EnvDataDir = "DOCQUERY_DATA_DIR"
	// EnvConfig overrides the config file path.
	EnvConfig = "DOCQUERY_CONFIG"
)

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the config file. Respects DOCQUERY_CONFIG,
// then XDG_CONFIG_HOME, defaulting to ~/.config/docquery/config.yml.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDirName, ConfigFileName)
}

// DefaultDataDir returns the default data directory. Respects
// DOCQUERY_DATA_DIR, then XDG_DATA_HOME, defaulting to
// ~/.local/share/docquery.
func DefaultDataDir() string {
	if p := os.Getenv(EnvDataDir); p != "" {
		return p
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DataDirName
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, DataDirName)
}

// Load reads the configuration file, filling unset fields with
// defaults. A missing file yields the default configuration, not an
// error.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	cfg := &Config{}

	path := Path()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyDefaults(cfg)

	configCache = cfg
	return cfg, nil
}

// Save writes the configuration file, creating its directory if needed.
func Save(cfg *Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	configCache = nil
	return nil
}

// ResetCache clears the config cache (for tests).
func ResetCache() {
	configCache = nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	} else {
		cfg.DataDir = ExpandTilde(cfg.DataDir)
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOllama
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunker.DefaultSize
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = chunker.DefaultOverlap
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = answer.DefaultMinConfidence
	}
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || len(path) >= 2 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
