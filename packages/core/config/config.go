package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the arduinotap configuration
type Config struct {
	Output          string `json:"output,omitempty" yaml:"output,omitempty"`         // console, json, junit, tap
	OutputFile      string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"` // default: stdout
	NoColor         *bool  `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	Strict          *bool  `json:"strict,omitempty" yaml:"strict,omitempty"` // plan mismatch fails the run
	AllowTodoPass   *bool  `json:"allowTodoPass,omitempty" yaml:"allowTodoPass,omitempty"`
	Baud            int    `json:"baud,omitempty" yaml:"baud,omitempty"`     // serial emulation, 0 = unthrottled
	TAPVersion      *bool  `json:"tapVersion,omitempty" yaml:"tapVersion,omitempty"`
	YAMLDiagnostics *bool  `json:"yamlDiagnostics,omitempty" yaml:"yamlDiagnostics,omitempty"`
	WatchDebounce   int    `json:"watchDebounce,omitempty" yaml:"watchDebounce,omitempty"` // milliseconds
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// BoolPtr is exported version of boolPtr for external use
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetStrict returns the strict setting, defaulting to false
func (c *Config) GetStrict() bool {
	return getBool(c.Strict, false)
}

// GetAllowTodoPass returns whether a TODO test that passes is accepted,
// defaulting to true
func (c *Config) GetAllowTodoPass() bool {
	return getBool(c.AllowTodoPass, true)
}

// GetTAPVersion returns whether to emit the TAP version header, defaulting to true
func (c *Config) GetTAPVersion() bool {
	return getBool(c.TAPVersion, true)
}

// GetYAMLDiagnostics returns whether to emit YAML blocks, defaulting to false
func (c *Config) GetYAMLDiagnostics() bool {
	return getBool(c.YAMLDiagnostics, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".arduinotap.json",
	"arduinotap.json",
	".arduinotap.yaml",
	"arduinotap.yaml",
	".arduinotap.yml",
	"arduinotap.yml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. JSON and
// YAML files are both checked against the schema before decoding.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	// Round-trip through JSON so both formats share the struct tags.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	if err := json.Unmarshal(normalized, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Output != "" {
		result.Output = other.Output
	}
	if other.OutputFile != "" {
		result.OutputFile = other.OutputFile
	}
	if other.Baud > 0 {
		result.Baud = other.Baud
	}
	if other.WatchDebounce > 0 {
		result.WatchDebounce = other.WatchDebounce
	}

	// Boolean flags - only override if explicitly set in other config
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Strict != nil {
		result.Strict = other.Strict
	}
	if other.AllowTodoPass != nil {
		result.AllowTodoPass = other.AllowTodoPass
	}
	if other.TAPVersion != nil {
		result.TAPVersion = other.TAPVersion
	}
	if other.YAMLDiagnostics != nil {
		result.YAMLDiagnostics = other.YAMLDiagnostics
	}

	return &result
}

// SaveConfig saves the configuration to a file, as YAML when the name
// ends in .yaml or .yml and as JSON otherwise
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
