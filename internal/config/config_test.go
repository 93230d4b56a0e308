package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
api:
  base_url: "https://treinos.example.com/api"
  timeout_seconds: 30
data:
  dir: "/var/lib/treinocli"
mcp:
  read_only: true
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://treinos.example.com/api" {
		t.Errorf("api.base_url = %q, want %q", cfg.API.BaseURL, "https://treinos.example.com/api")
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("api.timeout_seconds = %d, want 30", cfg.API.TimeoutSeconds)
	}
	if cfg.Data.Dir != "/var/lib/treinocli" {
		t.Errorf("data.dir = %q, want %q", cfg.Data.Dir, "/var/lib/treinocli")
	}
	if !cfg.MCP.ReadOnly {
		t.Error("mcp.read_only = false, want true")
	}
}

// TestEnvOverride verifies that TREINO_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("TREINO_API_BASE_URL", "http://localhost:5000/api")
	t.Setenv("TREINO_API_TIMEOUT_SECONDS", "5")
	t.Setenv("TREINO_MCP_READ_ONLY", "false")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Errorf("api.base_url = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Errorf("api.timeout_seconds = %d, want 5", cfg.API.TimeoutSeconds)
	}
	if cfg.MCP.ReadOnly {
		t.Error("mcp.read_only = true, want env override to false")
	}
	// Unchanged fields should keep YAML values
	if cfg.Data.Dir != "/var/lib/treinocli" {
		t.Errorf("data.dir = %q, want YAML value", cfg.Data.Dir)
	}
}

// TestLoadMissingFileUsesDefaults verifies that a client with no config file
// still starts: defaults plus env overrides must suffice.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TREINO_API_BASE_URL", "http://localhost:5000/api")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Errorf("api.base_url = %q, want env value", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 15 {
		t.Errorf("api.timeout_seconds = %d, want default 15", cfg.API.TimeoutSeconds)
	}
	if cfg.Data.Dir == "" {
		t.Error("data.dir is empty, want a default under the home directory")
	}
}

// TestValidationMissingBaseURL verifies that without a base URL anywhere the
// load fails with a clear error.
func TestValidationMissingBaseURL(t *testing.T) {
	_, err := Load(writeTemp(t, `data: {dir: "/tmp/x"}`))
	if err == nil {
		t.Fatal("expected validation error for missing base_url")
	}
}

// TestValidationBadTimeout verifies that a non-positive timeout is rejected.
func TestValidationBadTimeout(t *testing.T) {
	yaml := `
api:
  base_url: "http://localhost:5000/api"
  timeout_seconds: -3
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for negative timeout")
	}
}

// TestTimeout verifies the seconds field converts to a duration.
func TestTimeout(t *testing.T) {
	a := APIConfig{TimeoutSeconds: 30}
	if got := a.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
}
