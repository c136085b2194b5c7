package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullYAML = `
openai:
  api_key: sk-test-123
  assistant_id: asst_abc

server:
  port: 8090
  allowed_origin: https://fishbuddy.example

poll:
  interval_ms: 250
  stream_budget: 30
  cli_budget: 400
  tool_retry_max: 3
  message_page: 10

rules:
  path: /etc/fishbuddy/rules.json

hydro:
  proxy_base: https://hydro.example/api

uploads:
  ttl_hours: 6
`

const minimalYAML = `
openai:
  api_key: sk-min
  assistant_id: asst_min
`

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FISHBUDDY_ASSISTANT_ID", "")
	t.Setenv("FOEN_PROXY_BASE", "")
}

func TestParse_FullConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-test-123" {
		t.Errorf("OpenAI.APIKey = %q, want %q", cfg.OpenAI.APIKey, "sk-test-123")
	}
	if cfg.OpenAI.AssistantID != "asst_abc" {
		t.Errorf("OpenAI.AssistantID = %q, want %q", cfg.OpenAI.AssistantID, "asst_abc")
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Server.AllowedOrigin != "https://fishbuddy.example" {
		t.Errorf("Server.AllowedOrigin = %q, want https://fishbuddy.example", cfg.Server.AllowedOrigin)
	}
	if cfg.Poll.IntervalMS != 250 {
		t.Errorf("Poll.IntervalMS = %d, want 250", cfg.Poll.IntervalMS)
	}
	if cfg.Poll.StreamBudget != 30 {
		t.Errorf("Poll.StreamBudget = %d, want 30", cfg.Poll.StreamBudget)
	}
	if cfg.Poll.CLIBudget != 400 {
		t.Errorf("Poll.CLIBudget = %d, want 400", cfg.Poll.CLIBudget)
	}
	if cfg.Poll.ToolRetryMax != 3 {
		t.Errorf("Poll.ToolRetryMax = %d, want 3", cfg.Poll.ToolRetryMax)
	}
	if cfg.Poll.MessagePage != 10 {
		t.Errorf("Poll.MessagePage = %d, want 10", cfg.Poll.MessagePage)
	}
	if cfg.Rules.Path != "/etc/fishbuddy/rules.json" {
		t.Errorf("Rules.Path = %q, want /etc/fishbuddy/rules.json", cfg.Rules.Path)
	}
	if cfg.Hydro.ProxyBase != "https://hydro.example/api" {
		t.Errorf("Hydro.ProxyBase = %q, want https://hydro.example/api", cfg.Hydro.ProxyBase)
	}
	if cfg.Uploads.TTLHours != 6 {
		t.Errorf("Uploads.TTLHours = %d, want 6", cfg.Uploads.TTLHours)
	}
}

func TestParse_MinimalDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want default 5000", cfg.Server.Port)
	}
	if cfg.Server.AllowedOrigin != "http://localhost:5173" {
		t.Errorf("Server.AllowedOrigin = %q, want default", cfg.Server.AllowedOrigin)
	}
	if cfg.Poll.IntervalMS != 500 {
		t.Errorf("Poll.IntervalMS = %d, want default 500", cfg.Poll.IntervalMS)
	}
	if cfg.Poll.StreamBudget != 50 {
		t.Errorf("Poll.StreamBudget = %d, want default 50", cfg.Poll.StreamBudget)
	}
	if cfg.Poll.CLIBudget != 600 {
		t.Errorf("Poll.CLIBudget = %d, want default 600", cfg.Poll.CLIBudget)
	}
	if cfg.Poll.ToolRetryMax != 5 {
		t.Errorf("Poll.ToolRetryMax = %d, want default 5", cfg.Poll.ToolRetryMax)
	}
	if cfg.Poll.MessagePage != 20 {
		t.Errorf("Poll.MessagePage = %d, want default 20", cfg.Poll.MessagePage)
	}
	if cfg.Rules.Path != "data/rules.json" {
		t.Errorf("Rules.Path = %q, want default data/rules.json", cfg.Rules.Path)
	}
	if cfg.Hydro.ProxyBase != "https://api.existenz.ch/hydro" {
		t.Errorf("Hydro.ProxyBase = %q, want default", cfg.Hydro.ProxyBase)
	}
	if cfg.Uploads.TTLHours != 24 {
		t.Errorf("Uploads.TTLHours = %d, want default 24", cfg.Uploads.TTLHours)
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 500ms", cfg.PollInterval())
	}
	if cfg.UploadTTL() != 24*time.Hour {
		t.Errorf("UploadTTL() = %v, want 24h", cfg.UploadTTL())
	}
}

func TestParse_MissingCredentials(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]byte("server:\n  port: 9000\n"))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "openai.api_key") {
		t.Errorf("error %q does not mention openai.api_key", err)
	}
	if !strings.Contains(err.Error(), "openai.assistant_id") {
		t.Errorf("error %q does not mention openai.assistant_id", err)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("FISHBUDDY_ASSISTANT_ID", "asst_env")
	t.Setenv("FOEN_PROXY_BASE", "https://proxy.env")

	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("OpenAI.APIKey = %q, want env override sk-env", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.AssistantID != "asst_env" {
		t.Errorf("OpenAI.AssistantID = %q, want env override asst_env", cfg.OpenAI.AssistantID)
	}
	if cfg.Hydro.ProxyBase != "https://proxy.env" {
		t.Errorf("Hydro.ProxyBase = %q, want env override", cfg.Hydro.ProxyBase)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Parse([]byte("openai: [not a map")); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestLoad_FileAndMissing(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "fishbuddy.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-min" {
		t.Errorf("OpenAI.APIKey = %q, want sk-min", cfg.OpenAI.APIKey)
	}

	if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
