package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.pcapview.yaml",               // Project-specific config (highest priority)
	"~/.config/pcapview/config.yaml", // User config
	"/etc/pcapview/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.pcapview.yaml
// 4. ~/.config/pcapview/config.yaml
// 5. /etc/pcapview/config.yaml
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
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
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

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Booleans cannot be told apart from "unset" after unmarshaling into a struct,
	// so probe the raw document for the keys that carry them.
	var raw map[string]interface{}
	_ = yaml.Unmarshal(data, &raw)

	mergeConfigs(config, &fileConfig, raw)

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Server Config
		"PCAPVIEW_SERVER_BASE_URL":    func(v string) error { config.Server.BaseURL = v; return nil },
		"PCAPVIEW_SERVER_ENDPOINT":    func(v string) error { config.Server.Endpoint = v; return nil },
		"PCAPVIEW_SERVER_HEALTH_PATH": func(v string) error { config.Server.HealthPath = v; return nil },
		"PCAPVIEW_SERVER_TIMEOUT":     func(v string) error { return parseDuration(v, &config.Server.Timeout) },

		// Intake Config
		"PCAPVIEW_INTAKE_EXTENSION":      func(v string) error { config.Intake.Extension = v; return nil },
		"PCAPVIEW_INTAKE_MAX_FILE_SIZE":  func(v string) error { return parseInt64(v, &config.Intake.MaxFileSize) },
		"PCAPVIEW_INTAKE_INSPECT_HEADER": func(v string) error { return parseBool(v, &config.Intake.InspectHeader) },

		// Output Config
		"PCAPVIEW_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"PCAPVIEW_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"PCAPVIEW_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"PCAPVIEW_OUTPUT_THEME":          func(v string) error { config.Output.Theme = v; return nil },
		"PCAPVIEW_OUTPUT_LOG_FILE":       func(v string) error { config.Output.LogFile = v; return nil },

		// Drop zone
		"PCAPVIEW_DROP_ZONE_DIR":    func(v string) error { config.DropZone.Dir = v; return nil },
		"PCAPVIEW_DROP_ZONE_SETTLE": func(v string) error { return parseDuration(v, &config.DropZone.Settle) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config.
// Only non-zero values from source overwrite destination; booleans are
// merged when their key is present in raw.
func mergeConfigs(dst, src *Config, raw map[string]interface{}) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeServerConfig(&dst.Server, &src.Server)
	mergeIntakeConfig(&dst.Intake, &src.Intake, section(raw, "intake"))
	mergeMessageConfig(&dst.Messages, &src.Messages)
	mergeOutputConfig(&dst.Output, &src.Output, section(raw, "output"))
	if src.DropZone.Dir != "" {
		dst.DropZone.Dir = src.DropZone.Dir
	}
	if src.DropZone.Settle > 0 {
		dst.DropZone.Settle = src.DropZone.Settle
	}
}

func mergeServerConfig(dst, src *ServerConfig) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.HealthPath != "" {
		dst.HealthPath = src.HealthPath
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
}

func mergeIntakeConfig(dst, src *IntakeConfig, raw map[string]interface{}) {
	if src.Extension != "" {
		dst.Extension = src.Extension
	}
	if src.MaxFileSize != 0 {
		dst.MaxFileSize = src.MaxFileSize
	}
	mergeIfSet(&dst.InspectHeader, src.InspectHeader, raw, "inspect_header")
}

func mergeMessageConfig(dst, src *MessageConfig) {
	mergeString(&dst.MissingFile, src.MissingFile)
	mergeString(&dst.WrongExtension, src.WrongExtension)
	mergeString(&dst.TooLarge, src.TooLarge)
	mergeString(&dst.RequestFailed, src.RequestFailed)
	mergeString(&dst.TransportFailure, src.TransportFailure)
	mergeString(&dst.Loading, src.Loading)
	mergeString(&dst.DetailLabel, src.DetailLabel)
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig, raw map[string]interface{}) {
	mergeString(&dst.DefaultFormat, src.DefaultFormat)
	mergeString(&dst.ColorMode, src.ColorMode)
	mergeString(&dst.Theme, src.Theme)
	mergeString(&dst.LogFile, src.LogFile)
	mergeIfSet(&dst.Verbose, src.Verbose, raw, "verbose")
}

// section returns a nested YAML mapping, or nil when absent
func section(raw map[string]interface{}, key string) map[string]interface{} {
	if m, ok := raw[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeIfSet merges a boolean only when its key appears in the section
func mergeIfSet(dst *bool, src bool, section map[string]interface{}, key string) {
	if _, ok := section[key]; ok {
		*dst = src
	}
}

// Type conversion helpers

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
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
