package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.docrag.yaml",               // Project-specific config (highest priority)
	"~/.config/docrag/config.yaml", // User config
	"/etc/docrag/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.docrag.yaml
// 4. ~/.config/docrag/config.yaml
// 5. /etc/docrag/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := ExpandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML or TOML file over config. Keys absent from the
// file keep their current value; keys present win, including zero values and
// empty lists.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	fileConfig := config.Clone()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), fileConfig); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, fileConfig); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	*config = *fileConfig
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"DOCRAG_SOURCES_DIR": func(v string) error { config.Sources.Dir = v; return nil },

		"DOCRAG_CHUNKING_SIZE":    func(v string) error { return parseInt(v, &config.Chunking.Size) },
		"DOCRAG_CHUNKING_OVERLAP": func(v string) error { return parseInt(v, &config.Chunking.Overlap) },

		"DOCRAG_EMBEDDING_PROVIDER":    func(v string) error { config.Embedding.Provider = v; return nil },
		"DOCRAG_EMBEDDING_MODEL":       func(v string) error { config.Embedding.Model = v; return nil },
		"DOCRAG_EMBEDDING_ENDPOINT":    func(v string) error { config.Embedding.Endpoint = v; return nil },
		"DOCRAG_EMBEDDING_API_KEY":     func(v string) error { config.Embedding.APIKey = v; return nil },
		"DOCRAG_EMBEDDING_DIMENSIONS":  func(v string) error { return parseInt(v, &config.Embedding.Dimensions) },
		"DOCRAG_EMBEDDING_BATCH_SIZE":  func(v string) error { return parseInt(v, &config.Embedding.BatchSize) },
		"DOCRAG_EMBEDDING_CONCURRENCY": func(v string) error { return parseInt(v, &config.Embedding.Concurrency) },
		"DOCRAG_EMBEDDING_TIMEOUT":     func(v string) error { return parseDuration(v, &config.Embedding.Timeout) },

		"DOCRAG_INDEX_DIR":        func(v string) error { config.Index.Dir = v; return nil },
		"DOCRAG_INDEX_COLLECTION": func(v string) error { config.Index.Collection = v; return nil },
		"DOCRAG_INDEX_COMPRESS":   func(v string) error { return parseBool(v, &config.Index.Compress) },

		"DOCRAG_QUERY_TOP_K":        func(v string) error { return parseInt(v, &config.Query.TopK) },
		"DOCRAG_QUERY_HISTORY_FILE": func(v string) error { config.Query.HistoryFile = v; return nil },

		"DOCRAG_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"DOCRAG_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"DOCRAG_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"DOCRAG_OUTPUT_NO_EMOJI":       func(v string) error { return parseBool(v, &config.Output.NoEmoji) },
	}

	for envVar, setter := range envMappings {
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// comma-separated lists
	if exts := l.getenv("DOCRAG_SOURCES_EXTENSIONS"); exts != "" {
		config.Sources.Extensions = splitList(exts)
	}
	if excl := l.getenv("DOCRAG_SOURCES_EXCLUDE"); excl != "" {
		config.Sources.Exclude = splitList(excl)
	}

	// the OpenAI SDK convention
	if config.Embedding.Provider == "openai" && config.Embedding.APIKey == "" {
		config.Embedding.APIKey = l.getenv("OPENAI_API_KEY")
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, ExpandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := ExpandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" && ext != ".toml" {
		return fmt.Errorf("config file must have .yaml, .yml or .toml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
