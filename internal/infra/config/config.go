// Package config provides application-wide configuration. Values come from
// an optional YAML file overridden by environment variables; every field has
// a safe default so the binary runs locally with no setup at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for toolbridge.
type Config struct {
	// HTTP listener
	Host string // TOOLBRIDGE_HOST — default "0.0.0.0"
	Port int    // TOOLBRIDGE_PORT — default 8080

	// Upstream OpenAI-compatible model server
	LLMBaseURL string // LLM_BASE_URL — default "http://localhost:8000"
	LLMModel   string // LLM_MODEL — default "openai/gpt-oss-20b"
	LLMAPIKey  string // LLM_API_KEY — default "" (no auth, local server)

	// Timeouts
	ToolTimeout    time.Duration // TOOL_TIMEOUT — default 30s
	RoutingTimeout time.Duration // ROUTING_TIMEOUT — default 10s

	// Invocation audit log; empty disables persistence.
	DBPath string // TOOLBRIDGE_DB — default "toolbridge.db"

	// Root directory file tools are confined to; empty disables file tools.
	FileRoot string // TOOLBRIDGE_FILE_ROOT — default ""

	// MCP server spec ("stdio://cmd" or an http(s) URL); empty disables the bridge.
	MCPServer string // MCP_SERVER — default ""
}

// fileConfig mirrors Config for YAML decoding. Durations are Go duration
// strings ("30s"); pointers distinguish "absent" from zero values.
type fileConfig struct {
	Host           *string `yaml:"host"`
	Port           *int    `yaml:"port"`
	LLMBaseURL     *string `yaml:"llm_base_url"`
	LLMModel       *string `yaml:"llm_model"`
	LLMAPIKey      *string `yaml:"llm_api_key"`
	ToolTimeout    *string `yaml:"tool_timeout"`
	RoutingTimeout *string `yaml:"routing_timeout"`
	DBPath         *string `yaml:"db_path"`
	FileRoot       *string `yaml:"file_root"`
	MCPServer      *string `yaml:"mcp_server"`
}

const (
	envKeyConfigFile     = "TOOLBRIDGE_CONFIG"
	envKeyHost           = "TOOLBRIDGE_HOST"
	envKeyPort           = "TOOLBRIDGE_PORT"
	envKeyLLMBaseURL     = "LLM_BASE_URL"
	envKeyLLMModel       = "LLM_MODEL"
	envKeyLLMAPIKey      = "LLM_API_KEY"
	envKeyToolTimeout    = "TOOL_TIMEOUT"
	envKeyRoutingTimeout = "ROUTING_TIMEOUT"
	envKeyDBPath         = "TOOLBRIDGE_DB"
	envKeyFileRoot       = "TOOLBRIDGE_FILE_ROOT"
	envKeyMCPServer      = "MCP_SERVER"
)

func defaults() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		LLMBaseURL:     "http://localhost:8000",
		LLMModel:       "openai/gpt-oss-20b",
		ToolTimeout:    30 * time.Second,
		RoutingTimeout: 10 * time.Second,
		DBPath:         "toolbridge.db",
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// TOOLBRIDGE_CONFIG (if set), then environment variables on top.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv(envKeyConfigFile); path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.Host = envOr(envKeyHost, cfg.Host)
	cfg.LLMBaseURL = envOr(envKeyLLMBaseURL, cfg.LLMBaseURL)
	cfg.LLMModel = envOr(envKeyLLMModel, cfg.LLMModel)
	cfg.LLMAPIKey = envOr(envKeyLLMAPIKey, cfg.LLMAPIKey)
	cfg.DBPath = envOr(envKeyDBPath, cfg.DBPath)
	cfg.FileRoot = envOr(envKeyFileRoot, cfg.FileRoot)
	cfg.MCPServer = envOr(envKeyMCPServer, cfg.MCPServer)

	var err error
	if cfg.Port, err = envIntOr(envKeyPort, cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.ToolTimeout, err = envDurationOr(envKeyToolTimeout, cfg.ToolTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RoutingTimeout, err = envDurationOr(envKeyRoutingTimeout, cfg.RoutingTimeout); err != nil {
		return Config{}, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: port %d out of range", cfg.Port)
	}
	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&cfg.Host, fc.Host)
	setString(&cfg.LLMBaseURL, fc.LLMBaseURL)
	setString(&cfg.LLMModel, fc.LLMModel)
	setString(&cfg.LLMAPIKey, fc.LLMAPIKey)
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.FileRoot, fc.FileRoot)
	setString(&cfg.MCPServer, fc.MCPServer)
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.ToolTimeout != nil {
		d, parseErr := time.ParseDuration(*fc.ToolTimeout)
		if parseErr != nil {
			return fmt.Errorf("config: tool_timeout %q: %w", *fc.ToolTimeout, parseErr)
		}
		cfg.ToolTimeout = d
	}
	if fc.RoutingTimeout != nil {
		d, parseErr := time.ParseDuration(*fc.RoutingTimeout)
		if parseErr != nil {
			return fmt.Errorf("config: routing_timeout %q: %w", *fc.RoutingTimeout, parseErr)
		}
		cfg.RoutingTimeout = d
	}
	return nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}

func envDurationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration", key, v)
	}
	return d, nil
}
