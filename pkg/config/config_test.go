package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Endpoint != "https://api.nft.storage" {
		t.Errorf("expected default Endpoint='https://api.nft.storage', got %q", cfg.Endpoint)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected default Server.Port=3000, got %d", cfg.Server.Port)
	}

	if len(cfg.Authors) != 1 || cfg.Authors[0] != "Team G" {
		t.Errorf("expected default Authors=[Team G], got %v", cfg.Authors)
	}

	if cfg.MaxRetries != 3 {
		t.Errorf("expected default MaxRetries=3, got %d", cfg.MaxRetries)
	}

	if cfg.Timeout() != 60*time.Second {
		t.Errorf("expected default Timeout()=60s, got %v", cfg.Timeout())
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/config.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.GatewayHost != "nftstorage.link" {
		t.Errorf("expected default GatewayHost='nftstorage.link', got %q", cfg.GatewayHost)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Endpoint = "http://localhost:3000"
	cfg.Authors = []string{"Alice", "Bob"}
	cfg.Server.Port = 8080

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loadedCfg.Endpoint != cfg.Endpoint {
		t.Errorf("Endpoint: expected %q, got %q", cfg.Endpoint, loadedCfg.Endpoint)
	}

	if len(loadedCfg.Authors) != 2 || loadedCfg.Authors[1] != "Bob" {
		t.Errorf("Authors: expected %v, got %v", cfg.Authors, loadedCfg.Authors)
	}

	if loadedCfg.Server.Port != 8080 {
		t.Errorf("Server.Port: expected 8080, got %d", loadedCfg.Server.Port)
	}
}

func TestSave_DoesNotWriteToken(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, _, _ := strings.Cut(strings.TrimSpace(line), ":")
		if key == "token" || key == "api_key" {
			t.Errorf("config file must not contain %q:\n%s", key, data)
		}
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	// Partial config: endpoint only, server block without port
	yamlContent := `endpoint: http://localhost:3000
timeout_seconds: 0
max_retries: -2
log_level: chatty
server:
  cors: false
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Endpoint != "http://localhost:3000" {
		t.Errorf("expected Endpoint='http://localhost:3000', got %q", cfg.Endpoint)
	}

	if cfg.TimeoutSeconds != 60 {
		t.Errorf("expected default TimeoutSeconds=60 for zero value, got %d", cfg.TimeoutSeconds)
	}

	if cfg.MaxRetries != 0 {
		t.Errorf("expected MaxRetries clamped to 0, got %d", cfg.MaxRetries)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("expected invalid LogLevel to fall back to 'warn', got %q", cfg.LogLevel)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected default Server.Port=3000, got %d", cfg.Server.Port)
	}

	if cfg.Server.CORS {
		t.Error("expected Server.CORS=false to be preserved")
	}
}

func TestLoad_EmptyAuthors(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(configPath, []byte("authors: []\n"), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Authors) != 1 || cfg.Authors[0] != "Team G" {
		t.Errorf("expected default Authors for empty list, got %v", cfg.Authors)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `endpoint: http://localhost
authors: [invalid yaml structure
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error loading invalid YAML, got nil")
	}
}
