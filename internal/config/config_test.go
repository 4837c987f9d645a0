package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Panel.Width != 36 {
		t.Errorf("expected panel width=36, got %d", cfg.Panel.Width)
	}
	if cfg.Panel.OpenOnLaunch {
		t.Error("expected panel closed by default")
	}
	if cfg.Assistant.Model == "" {
		t.Error("expected a default assistant model")
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[client]
display_name = "alice"

[panel]
width = 48
open_on_launch = true

[assistant]
endpoint = "http://localhost:11434/v1"
model = "mistral"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Client.DisplayName != "alice" {
		t.Errorf("expected display_name=alice, got %s", cfg.Client.DisplayName)
	}
	if cfg.Panel.Width != 48 {
		t.Errorf("expected panel width=48, got %d", cfg.Panel.Width)
	}
	if !cfg.Panel.OpenOnLaunch {
		t.Error("expected open_on_launch=true")
	}
	if cfg.Assistant.Endpoint != "http://localhost:11434/v1" {
		t.Errorf("expected custom assistant endpoint, got %s", cfg.Assistant.Endpoint)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	os.Setenv("PARLEY_PANEL_WIDTH", "50")
	os.Setenv("PARLEY_ASSISTANT_MODEL", "env-model")
	defer func() {
		os.Unsetenv("PARLEY_PANEL_WIDTH")
		os.Unsetenv("PARLEY_ASSISTANT_MODEL")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Panel.Width != 50 {
		t.Errorf("expected env override panel width=50, got %d", cfg.Panel.Width)
	}
	if cfg.Assistant.Model != "env-model" {
		t.Errorf("expected env override model=env-model, got %s", cfg.Assistant.Model)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("Load() should not error for non-existent file: %v", err)
	}

	// Should return defaults
	if cfg.Panel.Width != 36 {
		t.Errorf("expected panel width=36, got %d", cfg.Panel.Width)
	}
}

func TestCredentials(t *testing.T) {
	creds := &Credentials{
		Providers: make(map[string]ProviderCredentials),
	}

	if key := creds.GetAPIKey("assistant"); key != "" {
		t.Errorf("expected empty key, got %s", key)
	}

	creds.SetAPIKey("assistant", "test-api-key")
	if key := creds.GetAPIKey("assistant"); key != "test-api-key" {
		t.Errorf("expected test-api-key, got %s", key)
	}
}

func TestCredentialsSaveLoad(t *testing.T) {
	// Override home dir for test
	tmpDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", originalHome)

	creds := &Credentials{}
	creds.SetAPIKey("assistant", "secret-key-123")

	if err := SaveCredentials(creds); err != nil {
		t.Fatalf("SaveCredentials() error: %v", err)
	}

	// Verify file permissions
	path := filepath.Join(tmpDir, ".parley", "credentials.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("credentials file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected permissions 0600, got %o", info.Mode().Perm())
	}

	loaded, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if key := loaded.GetAPIKey("assistant"); key != "secret-key-123" {
		t.Errorf("expected secret-key-123, got %s", key)
	}
}

func TestLoadCredentialsNonExistent(t *testing.T) {
	tmpDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", originalHome)

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials() should not error for non-existent file: %v", err)
	}
	if creds == nil {
		t.Fatal("expected non-nil credentials")
	}
}
