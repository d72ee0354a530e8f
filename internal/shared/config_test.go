package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.URL != "http://127.0.0.1:7860" {
			t.Errorf("expected server url http://127.0.0.1:7860, got %s", config.Server.URL)
		}

		if config.Server.TimeoutSeconds != 30 {
			t.Errorf("expected timeout 30, got %d", config.Server.TimeoutSeconds)
		}

		if config.Database.Path != "./drpanel.db" {
			t.Errorf("expected database path ./drpanel.db, got %s", config.Database.Path)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Server.URL != defaultConfig.Server.URL {
			t.Errorf("created config server url doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		content := `
[server]
url = "http://panel.local:9000"
timeout_seconds = 5

[database]
path = ":memory:"
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.URL != "http://panel.local:9000" {
			t.Errorf("expected url http://panel.local:9000, got %s", config.Server.URL)
		}
		if config.Server.TimeoutSeconds != 5 {
			t.Errorf("expected timeout 5, got %d", config.Server.TimeoutSeconds)
		}
		if config.Database.Path != ":memory:" {
			t.Errorf("expected database path :memory:, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nurl = "), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for invalid TOML")
		}
	})
}
