// Package config provides YAML-based configuration loading for FishBuddy.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level FishBuddy configuration, loaded from fishbuddy.yaml.
type Config struct {
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Server  ServerConfig  `yaml:"server"`
	Poll    PollConfig    `yaml:"poll"`
	Rules   RulesConfig   `yaml:"rules"`
	Hydro   HydroConfig   `yaml:"hydro"`
	Uploads UploadsConfig `yaml:"uploads"`
}

// OpenAIConfig holds credentials for the remote assistant. Both fields can be
// supplied via environment (OPENAI_API_KEY, FISHBUDDY_ASSISTANT_ID), which
// takes precedence over the file so secrets stay out of config.
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key"`
	AssistantID string `yaml:"assistant_id"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// PollConfig holds the run-driver tunables: fixed poll interval, the two
// budgets (polls and tool-retry rounds), and the message page size used by
// the response extractor.
type PollConfig struct {
	IntervalMS   int `yaml:"interval_ms"`
	StreamBudget int `yaml:"stream_budget"`
	CLIBudget    int `yaml:"cli_budget"`
	ToolRetryMax int `yaml:"tool_retry_max"`
	MessagePage  int `yaml:"message_page"`
}

// RulesConfig locates the canton rules dataset.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// HydroConfig holds the FOEN hydrology proxy base URL. FOEN_PROXY_BASE in the
// environment overrides the file.
type HydroConfig struct {
	ProxyBase string `yaml:"proxy_base"`
}

// UploadsConfig controls the process-local upload registry.
type UploadsConfig struct {
	TTLHours int `yaml:"ttl_hours"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("FISHBUDDY_ASSISTANT_ID"); v != "" {
		c.OpenAI.AssistantID = v
	}
	if v := os.Getenv("FOEN_PROXY_BASE"); v != "" {
		c.Hydro.ProxyBase = v
	}
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "http://localhost:5173"
	}
	if c.Poll.IntervalMS == 0 {
		c.Poll.IntervalMS = 500
	}
	if c.Poll.StreamBudget == 0 {
		c.Poll.StreamBudget = 50
	}
	if c.Poll.CLIBudget == 0 {
		c.Poll.CLIBudget = 600
	}
	if c.Poll.ToolRetryMax == 0 {
		c.Poll.ToolRetryMax = 5
	}
	if c.Poll.MessagePage == 0 {
		c.Poll.MessagePage = 20
	}
	if c.Rules.Path == "" {
		c.Rules.Path = "data/rules.json"
	}
	if c.Hydro.ProxyBase == "" {
		c.Hydro.ProxyBase = "https://api.existenz.ch/hydro"
	}
	if c.Uploads.TTLHours == 0 {
		c.Uploads.TTLHours = 24
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.OpenAI.APIKey == "" {
		errs = append(errs, "openai.api_key is required (or set OPENAI_API_KEY)")
	}
	if c.OpenAI.AssistantID == "" {
		errs = append(errs, "openai.assistant_id is required (or set FISHBUDDY_ASSISTANT_ID)")
	}
	if c.Poll.IntervalMS < 0 {
		errs = append(errs, "poll.interval_ms must not be negative")
	}
	if c.Poll.StreamBudget < 1 {
		errs = append(errs, "poll.stream_budget must be at least 1")
	}
	if c.Poll.CLIBudget < 1 {
		errs = append(errs, "poll.cli_budget must be at least 1")
	}
	if c.Poll.ToolRetryMax < 1 {
		errs = append(errs, "poll.tool_retry_max must be at least 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// PollInterval returns the driver poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// UploadTTL returns the upload registry entry lifetime.
func (c *Config) UploadTTL() time.Duration {
	return time.Duration(c.Uploads.TTLHours) * time.Hour
}
