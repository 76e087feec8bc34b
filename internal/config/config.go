package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultMaxFileSize is the upload cap applied when none is configured (1 GiB).
const DefaultMaxFileSize int64 = 1024 * 1024 * 1024

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Intake   IntakeConfig   `yaml:"intake" json:"intake"`
	Messages MessageConfig  `yaml:"messages" json:"messages"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	DropZone DropZoneConfig `yaml:"drop_zone" json:"drop_zone"`
}

// ServerConfig configures the analysis backend
type ServerConfig struct {
	BaseURL    string        `yaml:"base_url" json:"base_url"`       // scheme://host:port of the backend
	Endpoint   string        `yaml:"endpoint" json:"endpoint"`       // upload path
	HealthPath string        `yaml:"health_path" json:"health_path"` // health probe path
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`         // 0 leaves the transport defaults
}

// IntakeConfig configures file validation
type IntakeConfig struct {
	Extension     string `yaml:"extension" json:"extension"`
	MaxFileSize   int64  `yaml:"max_file_size" json:"max_file_size"`
	InspectHeader bool   `yaml:"inspect_header" json:"inspect_header"`
}

// MessageConfig holds every user-facing message so deployments can localize them
type MessageConfig struct {
	MissingFile      string `yaml:"missing_file" json:"missing_file"`
	WrongExtension   string `yaml:"wrong_extension" json:"wrong_extension"`
	TooLarge         string `yaml:"too_large" json:"too_large"`
	RequestFailed    string `yaml:"request_failed" json:"request_failed"`
	TransportFailure string `yaml:"transport_failure" json:"transport_failure"`
	Loading          string `yaml:"loading" json:"loading"`
	DetailLabel      string `yaml:"detail_label" json:"detail_label"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	Theme         string `yaml:"theme" json:"theme"`       // default|high-contrast|minimal
	LogFile       string `yaml:"log_file" json:"log_file"` // TUI log destination
}

// DropZoneConfig configures the watched drop directory
type DropZoneConfig struct {
	Dir string `yaml:"dir" json:"dir"`
	// Settle is how long a new file must stay unchanged before it is submitted
	Settle time.Duration `yaml:"settle" json:"settle"`
}

// DefaultMessages returns the built-in English message set
func DefaultMessages() MessageConfig {
	return MessageConfig{
		MissingFile:      "Please select a file",
		WrongExtension:   "Please select a PCAP file",
		TooLarge:         "File size exceeds 1GB limit",
		RequestFailed:    "Error analyzing file",
		TransportFailure: "Error occurred while analyzing the file",
		Loading:          "Loading...",
		DetailLabel:      "Detailed report",
	}
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			BaseURL:    "http://localhost:8000",
			Endpoint:   "/analyze-network",
			HealthPath: "/health",
			Timeout:    0,
		},
		Intake: IntakeConfig{
			Extension:     ".pcap",
			MaxFileSize:   DefaultMaxFileSize,
			InspectHeader: false,
		},
		Messages: DefaultMessages(),
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			Theme:         "default",
			LogFile:       "",
		},
		DropZone: DropZoneConfig{
			Settle: 500 * time.Millisecond,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateIntakeConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if c.DropZone.Settle < 0 {
		return fmt.Errorf("drop_zone.settle must be non-negative")
	}
	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server.base_url scheme: %s (must be http or https)", u.Scheme)
	}
	if !strings.HasPrefix(c.Server.Endpoint, "/") {
		return fmt.Errorf("server.endpoint must start with /")
	}
	if c.Server.HealthPath != "" && !strings.HasPrefix(c.Server.HealthPath, "/") {
		return fmt.Errorf("server.health_path must start with /")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateIntakeConfig() error {
	if c.Intake.Extension == "" {
		return fmt.Errorf("intake.extension is required")
	}
	if c.Intake.MaxFileSize < 1 {
		return fmt.Errorf("intake.max_file_size must be greater than 0")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Output.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Output.Theme)
		}
	}
	return nil
}

// UploadURL joins the base URL and the upload endpoint
func (s ServerConfig) UploadURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.Endpoint
}

// HealthURL joins the base URL and the health path
func (s ServerConfig) HealthURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.HealthPath
}
