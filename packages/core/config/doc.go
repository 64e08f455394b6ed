// Package config handles configuration loading and management for arduinotap.
//
// It provides functionality for:
//   - Loading configuration from arduinotap.json or arduinotap.yaml files
//   - Validating files against the embedded JSON schema
//   - Default configuration values and merging command-line overrides
package config
