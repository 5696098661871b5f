// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by [loadConfig].
const (
	// EnvConfigFile names the configuration file when --config is not given.
	EnvConfigFile = "MCP_DEMO_CONFIG_FILE"
	// EnvHTTPAddr overrides http.address from the configuration file.
	EnvHTTPAddr = "MCP_DEMO_HTTP_ADDR"
)

// Default configuration values.
const (
	defaultName            = "mcp-demo-server"
	defaultDisplayName     = "MCP Demo Server"
	defaultVersion         = "1.0.0"
	defaultIdentity        = "MCP Demo Server v1.0"
	defaultProtocolVersion = "2024-11-05"
	defaultHTTPAddress     = ":8080"
	defaultHTTPPath        = "/mcp"
	defaultAllowedOrigin   = "*"
	defaultMaxBodyBytes    = 1 << 20
	defaultReadTimeout     = 10
	defaultShutdownTimeout = 5
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
	// configFormatTOML represents TOML configuration format (.toml)
	configFormatTOML
)

// Config represents the MCP server configuration structure.
//
// The configuration can be loaded from a JSON, YAML or TOML file specified by
// the --config flag or the MCP_DEMO_CONFIG_FILE environment variable, with
// defaults applied for any missing values.
// Supported file extensions: .json, .yaml, .yml, .toml
type Config struct {
	// Server: Identity reported by ping, initialize and the metadata resource
	Server struct {
		// Name: Machine name sent in serverInfo.name
		Name string `json:"name" yaml:"name" toml:"name"`
		// DisplayName: Human name used in the metadata resource and instructions
		DisplayName string `json:"displayName" yaml:"displayName" toml:"displayName"`
		// Version: Server version sent in serverInfo.version
		Version string `json:"version" yaml:"version" toml:"version"`
		// Identity: Server string returned by ping
		Identity string `json:"identity" yaml:"identity" toml:"identity"`
		// ProtocolVersion: MCP protocol revision announced by initialize
		ProtocolVersion string `json:"protocolVersion" yaml:"protocolVersion" toml:"protocolVersion"`
	} `json:"server" yaml:"server" toml:"server"`

	// HTTP: Settings for the serve subcommand
	HTTP struct {
		// Address: Listen address (can also be set via MCP_DEMO_HTTP_ADDR env var)
		Address string `json:"address" yaml:"address" toml:"address"`
		// Path: Route the JSON-RPC endpoint is mounted on
		Path string `json:"path" yaml:"path" toml:"path"`
		// AllowedOrigin: Value of Access-Control-Allow-Origin
		AllowedOrigin string `json:"allowedOrigin" yaml:"allowedOrigin" toml:"allowedOrigin"`
		// MaxBodyBytes: Largest accepted request body (and stdio line)
		MaxBodyBytes int64 `json:"maxBodyBytes" yaml:"maxBodyBytes" toml:"maxBodyBytes"`
		// ReadTimeout: Seconds allowed to read a request
		ReadTimeout int `json:"readTimeoutSeconds" yaml:"readTimeoutSeconds" toml:"readTimeoutSeconds"`
		// ShutdownTimeout: Seconds allowed for in-flight requests on shutdown
		ShutdownTimeout int `json:"shutdownTimeoutSeconds" yaml:"shutdownTimeoutSeconds" toml:"shutdownTimeoutSeconds"`
	} `json:"http" yaml:"http" toml:"http"`

	// Tools: Tool execution policy
	Tools struct {
		// StrictArguments: Validate arguments against each tool's input schema
		StrictArguments bool `json:"strictArguments" yaml:"strictArguments" toml:"strictArguments"`
	} `json:"tools" yaml:"tools" toml:"tools"`

	// Log: Logging settings
	Log struct {
		// Silent: Suppress all server log output
		Silent bool `json:"silent" yaml:"silent" toml:"silent"`
	} `json:"log" yaml:"log" toml:"log"`
}

// DefaultConfig returns a configuration populated with default values.
func DefaultConfig() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

// applyDefaults fills every empty or invalid field with its default.
func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = defaultName
	}
	if c.Server.DisplayName == "" {
		c.Server.DisplayName = defaultDisplayName
	}
	if c.Server.Version == "" {
		c.Server.Version = defaultVersion
	}
	if c.Server.Identity == "" {
		c.Server.Identity = defaultIdentity
	}
	if c.Server.ProtocolVersion == "" {
		c.Server.ProtocolVersion = defaultProtocolVersion
	}

	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.HTTP.Path == "" {
		c.HTTP.Path = defaultHTTPPath
	}
	if !strings.HasPrefix(c.HTTP.Path, "/") {
		c.HTTP.Path = "/" + c.HTTP.Path
	}
	if c.HTTP.AllowedOrigin == "" {
		c.HTTP.AllowedOrigin = defaultAllowedOrigin
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = defaultReadTimeout
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = defaultShutdownTimeout
	}
}

// ReadTimeout returns the HTTP read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.HTTP.ReadTimeout) * time.Second
}

// ShutdownTimeout returns the HTTP shutdown grace period as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.HTTP.ShutdownTimeout) * time.Second
}

// detectConfigFormat determines the configuration file format based on file extension.
// Unknown extensions are treated as JSON.
//
// The function uses case-insensitive extension matching for cross-platform compatibility.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	case ".toml":
		return configFormatTOML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
//
// Parameters:
//   - data: Raw configuration file contents
//   - config: Pointer to Config struct to populate
//   - format: The configuration format
//
// Returns:
//   - error: Any parsing error encountered during unmarshaling
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	case configFormatTOML:
		if err := toml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse TOML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// loadConfig loads MCP server configuration from a JSON, YAML or TOML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml, .toml
//
// Returns:
//   - A pointer to the loaded Config struct with defaults applied
//   - An error if the configuration file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. MCP_DEMO_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults (if file exists and is valid)
//  4. Environment variables override config file values (MCP_DEMO_HTTP_ADDR)
func loadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		format := detectConfigFormat(configPath)
		if err := unmarshalConfig(data, config, format); err != nil {
			return nil, err
		}
	}

	if addr := os.Getenv(EnvHTTPAddr); addr != "" {
		config.HTTP.Address = addr
	}

	config.applyDefaults()
	return config, nil
}
