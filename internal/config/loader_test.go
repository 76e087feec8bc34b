package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := &Loader{configPaths: []string{filepath.Join(t.TempDir(), "absent.yaml")}}

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected default base url, got %s", cfg.Server.BaseURL)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	configContent := `version: "1.0"
server:
  base_url: "http://analyzer:9000"
  timeout: 45s
intake:
  max_file_size: 1048576
  inspect_header: true
messages:
  wrong_extension: "Выберите PCAP файл"
output:
  default_format: "json"
  verbose: true
drop_zone:
  dir: "/tmp/drops"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Server.BaseURL != "http://analyzer:9000" {
		t.Errorf("Expected base url http://analyzer:9000, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Endpoint != "/analyze-network" {
		t.Errorf("Expected endpoint default to survive merge, got %s", cfg.Server.Endpoint)
	}
	if cfg.Server.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %v", cfg.Server.Timeout)
	}
	if cfg.Intake.MaxFileSize != 1048576 {
		t.Errorf("Expected max file size 1048576, got %d", cfg.Intake.MaxFileSize)
	}
	if !cfg.Intake.InspectHeader {
		t.Errorf("Expected inspect_header to be true")
	}
	if cfg.Messages.WrongExtension != "Выберите PCAP файл" {
		t.Errorf("Expected localized message, got %q", cfg.Messages.WrongExtension)
	}
	if cfg.Messages.TooLarge != DefaultMessages().TooLarge {
		t.Errorf("Expected untouched message to keep default, got %q", cfg.Messages.TooLarge)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.DropZone.Dir != "/tmp/drops" {
		t.Errorf("Expected drop zone dir /tmp/drops, got %s", cfg.DropZone.Dir)
	}
}

func TestLoadConfigKeepsUnsetBooleans(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  theme: minimal\n"), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := &Loader{configPaths: []string{configPath}}
	base := DefaultConfig()
	base.Output.Verbose = true

	var fileConfig Config
	fileConfig.Output.Theme = "minimal"
	mergeConfigs(base, &fileConfig, map[string]interface{}{"output": map[string]interface{}{"theme": "minimal"}})

	if !base.Output.Verbose {
		t.Errorf("verbose should not be reset by a file that does not mention it")
	}
	if base.Output.Theme != "minimal" {
		t.Errorf("Expected theme minimal, got %s", base.Output.Theme)
	}

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Output.Theme != "minimal" {
		t.Errorf("Expected theme from search path, got %s", cfg.Output.Theme)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid-config.yaml")

	invalidConfigContent := `version: "1.0"
server:
  base_url: "http://localhost:8000
  timeout: 60s
`

	if err := os.WriteFile(configPath, []byte(invalidConfigContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	if _, err := loader.LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("intake:\n  max_file_size: -5\n"), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	_, err := loader.LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected validation error, got none")
	}
	if !strings.Contains(err.Error(), "max_file_size") {
		t.Errorf("Expected max_file_size in error, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PCAPVIEW_SERVER_BASE_URL", "https://pcap.example.com")
	t.Setenv("PCAPVIEW_SERVER_TIMEOUT", "2m")
	t.Setenv("PCAPVIEW_INTAKE_MAX_FILE_SIZE", "2048")
	t.Setenv("PCAPVIEW_INTAKE_INSPECT_HEADER", "true")
	t.Setenv("PCAPVIEW_OUTPUT_VERBOSE", "true")
	t.Setenv("PCAPVIEW_DROP_ZONE_DIR", "/srv/drops")

	loader := NewLoader()
	cfg := DefaultConfig()

	if err := loader.applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.Server.BaseURL != "https://pcap.example.com" {
		t.Errorf("Expected base url override, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 2*time.Minute {
		t.Errorf("Expected timeout 2m, got %v", cfg.Server.Timeout)
	}
	if cfg.Intake.MaxFileSize != 2048 {
		t.Errorf("Expected max file size 2048, got %d", cfg.Intake.MaxFileSize)
	}
	if !cfg.Intake.InspectHeader {
		t.Errorf("Expected inspect header to be true")
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.DropZone.Dir != "/srv/drops" {
		t.Errorf("Expected drop dir /srv/drops, got %s", cfg.DropZone.Dir)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "PCAPVIEW_INTAKE_MAX_FILE_SIZE", "not-a-number"},
		{"invalid bool", "PCAPVIEW_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "PCAPVIEW_SERVER_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			loader := NewLoader()
			cfg := DefaultConfig()

			if err := loader.applyEnvOverrides(cfg); err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	var duration time.Duration

	if err := parseDuration("30s", &duration); err != nil {
		t.Errorf("Failed to parse duration: %v", err)
	}
	if duration != 30*time.Second {
		t.Errorf("Expected 30s, got %v", duration)
	}

	if err := parseDuration("invalid", &duration); err == nil {
		t.Error("Expected error for invalid duration, but got none")
	}
}

func TestParseInt64(t *testing.T) {
	var value int64

	if err := parseInt64("1073741824", &value); err != nil {
		t.Errorf("Failed to parse int: %v", err)
	}
	if value != 1073741824 {
		t.Errorf("Expected 1073741824, got %d", value)
	}

	if err := parseInt64("not-a-number", &value); err == nil {
		t.Error("Expected error for invalid int, but got none")
	}
}

func TestParseBool(t *testing.T) {
	var value bool

	if err := parseBool("true", &value); err != nil {
		t.Errorf("Failed to parse bool: %v", err)
	}
	if !value {
		t.Errorf("Expected true, got %v", value)
	}

	if err := parseBool("not-a-bool", &value); err == nil {
		t.Error("Expected error for invalid bool, but got none")
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	tempFile := filepath.Join(t.TempDir(), "test-file")
	if err := os.WriteFile(tempFile, []byte("test"), 0o600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "valid yaml file", path: "config.yaml"},
		{name: "valid yml file", path: "config.yml"},
		{name: "path traversal attempt", path: "../../../etc/pcapview.yaml", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "non-yaml file", path: "config.txt", wantErr: true, errMsg: "config file must have .yaml or .yml extension"},
		{name: "proc filesystem access", path: "/proc/version.yaml", wantErr: true, errMsg: "access to system files not allowed"},
		{name: "relative path with valid extension", path: "./configs/app.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
