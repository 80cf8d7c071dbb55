package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.RedirectURI != "http://localhost:3000/callback" {
			t.Errorf("expected default redirect URI, got %s", config.Credentials.Spotify.RedirectURI)
		}

		if config.Client.BrokerURL != "http://localhost:3000" {
			t.Errorf("expected broker URL http://localhost:3000, got %s", config.Client.BrokerURL)
		}

		if config.Storage.Path != "./soundcheck.db" {
			t.Errorf("expected storage path ./soundcheck.db, got %s", config.Storage.Path)
		}

		if config.Credentials.Spotify.Valid() {
			t.Error("placeholder credentials should not be valid")
		}
	})

	t.Run("Addr", func(t *testing.T) {
		s := ServerConfig{Host: "127.0.0.1", Port: 3000}
		if got := s.Addr(); got != "127.0.0.1:3000" {
			t.Errorf("expected 127.0.0.1:3000, got %s", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Storage.Path != DefaultConfig().Storage.Path {
			t.Errorf("created config storage path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.RedirectURI != "http://localhost:3000/callback" {
			t.Errorf("expected redirect URI to keep its default, got %s", config.Credentials.Spotify.RedirectURI)
		}

		if !config.Credentials.Spotify.Valid() {
			t.Error("expected credentials to be valid")
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvClientID, "env_id")
		t.Setenv(EnvClientSecret, "env_secret")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("expected env client id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected env client secret, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("ResolveConfig Missing File", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "")

		config, err := ResolveConfig("does-not-exist.toml")
		if err != nil {
			t.Fatalf("expected defaults, got %v", err)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})
}
