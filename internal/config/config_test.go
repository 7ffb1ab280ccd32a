package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
anthropic:
  api_key: sk-ant-test-key-0123456789
defaults:
  fund: Halstead Credit Opportunities II
timeouts:
  fast: 10s
  balanced: 45s
watch:
  dir: /tmp/requests
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-test-key-0123456789" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Defaults.Fund != "Halstead Credit Opportunities II" {
		t.Errorf("default fund = %q", cfg.Defaults.Fund)
	}
	if cfg.Timeouts.Fast != 10*time.Second {
		t.Errorf("fast timeout = %s, want 10s", cfg.Timeouts.Fast)
	}
	if cfg.Timeouts.Capable != 0 {
		t.Errorf("capable timeout = %s, want 0 (registry default)", cfg.Timeouts.Capable)
	}
	if cfg.Watch.Dir != "/tmp/requests" {
		t.Errorf("watch dir = %q", cfg.Watch.Dir)
	}
}

func TestLoadFromPathExpandsEnv(t *testing.T) {
	t.Setenv("FUNDSCRIBE_TEST_KEY", "sk-ant-from-env-0123456789")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: ${FUNDSCRIBE_TEST_KEY}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-env-0123456789" {
		t.Errorf("api key = %q, want the expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestGetAPIKey(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
		key, err := GetAPIKey(&Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-config"}})
		if err != nil {
			t.Fatal(err)
		}
		if key != "sk-ant-env" {
			t.Errorf("key = %q, want the env value", key)
		}
	})

	t.Run("config fallback", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		key, err := GetAPIKey(&Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-config"}})
		if err != nil {
			t.Fatal(err)
		}
		if key != "sk-ant-config" {
			t.Errorf("key = %q, want the config value", key)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		if _, err := GetAPIKey(&Config{}); err != ErrNoAPIKey {
			t.Errorf("err = %v, want ErrNoAPIKey", err)
		}
	})
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", "sk-ant-abcdefghijklmnop", false},
		{"empty", "", true},
		{"wrong prefix", "sk-openai-abcdefghijklmnop", true},
		{"too short", "sk-ant-x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateAPIKey(tt.key); (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty key mask = %q", got)
	}
	if got := MaskAPIKey("short"); got != "***" {
		t.Errorf("short key mask = %q", got)
	}
	masked := MaskAPIKey("sk-ant-REDACTED")
	if masked != "sk-ant-...1234" {
		t.Errorf("mask = %q, want sk-ant-...1234", masked)
	}
}
